package validation

import (
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/carafecoffee/orderflow/internal/shipping"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// UK numbers: optional +44 country code or leading zero, 9-10 digits after.
	phoneRegex = regexp.MustCompile(`^(\+44\d{9,10}|0\d{9,10})$`)
	// UK postcode, outward + inward, spaces already stripped.
	postcodeRegex = regexp.MustCompile(`^[A-Za-z]{1,2}\d{1,2}[A-Za-z]?\d[A-Za-z]{2}$`)
)

// Validator rejects malformed checkout submissions before anything is
// persisted. Checks run in a fixed order and stop at the first failure so
// the reported code is unambiguous.
type Validator struct {
	validate *validatorv10.Validate
	shipping shipping.Config
}

// New returns a Validator bound to the shipping configuration (the only
// external input the checks read).
func New(cfg shipping.Config) *Validator {
	return &Validator{
		validate: validatorv10.New(),
		shipping: cfg,
	}
}

// ValidateCheckout runs the ordered checkout checks. A nil return means the
// request is safe to persist.
func (v *Validator) ValidateCheckout(req *CheckoutRequest) *Error {
	if req.CustomerEmail == "" || !emailRegex.MatchString(req.CustomerEmail) {
		return NewError(CodeEmailInvalid, "please enter a valid email address")
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return NewError(CodeNameRequired, "name is required")
	}

	if req.CustomerPhone != "" {
		phone := strings.ReplaceAll(strings.ReplaceAll(req.CustomerPhone, " ", ""), "-", "")
		if !phoneRegex.MatchString(phone) {
			return NewError(CodePhoneInvalid, "please enter a valid UK phone number")
		}
	}

	addr := req.ShippingAddress
	if addr == nil || addr.Street == "" || addr.City == "" || addr.Postcode == "" || addr.Country == "" {
		return NewError(CodeAddressIncomplete, "shipping address must include street, city, postcode and country")
	}

	postcode := strings.ToUpper(strings.ReplaceAll(addr.Postcode, " ", ""))
	if !postcodeRegex.MatchString(postcode) {
		return NewError(CodePostcodeInvalid, "please enter a valid UK postcode")
	}

	if err := v.checkRegion(postcode, addr.Country); err != nil {
		return err
	}

	if len(req.Items) == 0 {
		return NewError(CodeEmptyOrInvalidItems, "order must contain at least one item")
	}
	for _, item := range req.Items {
		if err := v.validate.Struct(item); err != nil {
			return NewError(CodeEmptyOrInvalidItems, "every item needs a product, a quantity of at least 1 and a price")
		}
	}

	if req.ShippingMethod == "" {
		return NewError(CodeShippingMethodRequired, "please select a shipping method")
	}
	if _, err := v.shipping.ResolveRate(0, req.ShippingMethod); err != nil {
		return NewError(CodeShippingMethodRequired, "selected shipping method is not available")
	}

	return nil
}

// checkRegion enforces the delivery-zone restriction. The message is
// deliberately distinct from the generic invalid-address error.
func (v *Validator) checkRegion(postcode, country string) *Error {
	if !v.shipping.CountryAllowed(country) {
		return NewError(CodeRegionNotServiceable,
			"sorry, we only deliver to mainland UK addresses")
	}
	for _, prefix := range v.shipping.ExcludedPostcodePrefixes {
		if strings.HasPrefix(postcode, strings.ToUpper(prefix)) {
			return NewError(CodeRegionNotServiceable,
				"sorry, we only deliver to mainland UK addresses; orders to Northern Ireland, the Channel Islands and the Isle of Man are not currently supported")
		}
	}
	return nil
}
