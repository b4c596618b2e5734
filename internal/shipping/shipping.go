package shipping

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidMethod is returned when the requested method does not resolve to
// an active shipping option.
var ErrInvalidMethod = errors.New("invalid shipping method")

// Option is a single configured shipping service.
type Option struct {
	CarrierName   string  `mapstructure:"carrier_name" json:"carrierName"`
	ServiceName   string  `mapstructure:"service_name" json:"serviceName"`
	Cost          float64 `mapstructure:"cost" json:"cost"`
	FreeEligible  bool    `mapstructure:"free_eligible" json:"freeEligible"`
	EstimatedDays int     `mapstructure:"estimated_days" json:"estimatedDays"`
	IsActive      bool    `mapstructure:"is_active" json:"isActive"`
	DisplayOrder  int     `mapstructure:"display_order" json:"displayOrder"`
}

// Method is the identifier customers select an option by ("Carrier - Service").
func (o Option) Method() string {
	return o.CarrierName + " - " + o.ServiceName
}

// Config is the shipping configuration singleton. It is read-only from the
// order workflow's perspective; back-office changes arrive via redeploy or
// config reload.
type Config struct {
	FreeShippingThreshold    float64  `mapstructure:"free_shipping_threshold"`
	Options                  []Option `mapstructure:"options"`
	AllowedCountries         []string `mapstructure:"allowed_countries"`
	ExcludedPostcodePrefixes []string `mapstructure:"excluded_postcode_prefixes"`
	ProcessingDays           int      `mapstructure:"processing_days"`
	ExcludeWeekends          bool     `mapstructure:"exclude_weekends"`
	ExcludeBankHolidays      bool     `mapstructure:"exclude_bank_holidays"`
}

// ActiveOptions returns the active options sorted by display order.
func (c Config) ActiveOptions() []Option {
	active := make([]Option, 0, len(c.Options))
	for _, opt := range c.Options {
		if opt.IsActive {
			active = append(active, opt)
		}
	}
	for i := 1; i < len(active); i++ {
		for j := i; j > 0 && active[j].DisplayOrder < active[j-1].DisplayOrder; j-- {
			active[j], active[j-1] = active[j-1], active[j]
		}
	}
	return active
}

// findActive looks a method up among active options only.
func (c Config) findActive(method string) (Option, bool) {
	for _, opt := range c.Options {
		if opt.IsActive && strings.EqualFold(opt.Method(), method) {
			return opt, true
		}
	}
	return Option{}, false
}

// ResolveRate computes the shipping cost for a cart subtotal and a selected
// method. Free-eligible options cost nothing once the subtotal reaches the
// free-shipping threshold; otherwise the option's flat cost applies.
func (c Config) ResolveRate(subtotal float64, method string) (float64, error) {
	opt, ok := c.findActive(method)
	if !ok {
		return 0, ErrInvalidMethod
	}
	if opt.FreeEligible && subtotal >= c.FreeShippingThreshold {
		return 0, nil
	}
	return opt.Cost, nil
}

// DeliveryEstimate returns the estimated delivery date for a method: order
// processing days plus the option's transit days, counted as business days
// when weekends are excluded. Returns the zero time if the method is unknown.
func (c Config) DeliveryEstimate(method string, from time.Time) time.Time {
	opt, ok := c.findActive(method)
	if !ok {
		return time.Time{}
	}
	days := c.ProcessingDays + opt.EstimatedDays
	estimate := from
	for days > 0 {
		estimate = estimate.AddDate(0, 0, 1)
		if c.ExcludeWeekends && (estimate.Weekday() == time.Saturday || estimate.Weekday() == time.Sunday) {
			continue
		}
		days--
	}
	return estimate
}

// CountryAllowed reports whether orders can be delivered to a country code.
// An empty allow-list means no restriction.
func (c Config) CountryAllowed(country string) bool {
	if len(c.AllowedCountries) == 0 {
		return true
	}
	for _, allowed := range c.AllowedCountries {
		if strings.EqualFold(allowed, country) {
			return true
		}
	}
	return false
}

// Default is the mainland-UK configuration used when nothing is provided.
func Default() Config {
	return Config{
		FreeShippingThreshold: 50,
		Options: []Option{
			{CarrierName: "Royal Mail", ServiceName: "Tracked 48", Cost: 3.95, FreeEligible: true, EstimatedDays: 2, IsActive: true, DisplayOrder: 1},
			{CarrierName: "Royal Mail", ServiceName: "Tracked 24", Cost: 4.95, FreeEligible: false, EstimatedDays: 1, IsActive: true, DisplayOrder: 2},
			{CarrierName: "DPD", ServiceName: "Next Day", Cost: 7.95, FreeEligible: false, EstimatedDays: 1, IsActive: true, DisplayOrder: 3},
		},
		AllowedCountries:         []string{"GB"},
		ExcludedPostcodePrefixes: []string{"BT", "GY", "JE", "IM"},
		ProcessingDays:           2,
		ExcludeWeekends:          true,
		ExcludeBankHolidays:      true,
	}
}
