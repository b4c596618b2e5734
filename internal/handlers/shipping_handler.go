package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterShippingRoutes registers the public shipping options endpoint the
// storefront renders the checkout delivery picker from.
func RegisterShippingRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.GET("/shipping/options", func(c *gin.Context) {
		// Optional subtotal so the storefront can show "FREE" instead of the
		// flat rate once the threshold is reached.
		subtotal, _ := strconv.ParseFloat(c.Query("subtotal"), 64)
		now := time.Now()

		type optionView struct {
			Method        string  `json:"method"`
			CarrierName   string  `json:"carrierName"`
			ServiceName   string  `json:"serviceName"`
			Cost          float64 `json:"cost"`
			Free          bool    `json:"free"`
			EstimatedDays int     `json:"estimatedDays"`
			EstimatedDate string  `json:"estimatedDate,omitempty"`
		}

		active := cfg.Shipping.ActiveOptions()
		views := make([]optionView, 0, len(active))
		for _, opt := range active {
			cost, err := cfg.Shipping.ResolveRate(subtotal, opt.Method())
			if err != nil {
				continue
			}
			view := optionView{
				Method:        opt.Method(),
				CarrierName:   opt.CarrierName,
				ServiceName:   opt.ServiceName,
				Cost:          cost,
				Free:          cost == 0,
				EstimatedDays: opt.EstimatedDays,
			}
			if estimate := cfg.Shipping.DeliveryEstimate(opt.Method(), now); !estimate.IsZero() {
				view.EstimatedDate = estimate.Format("2006-01-02")
			}
			views = append(views, view)
		}

		c.JSON(http.StatusOK, gin.H{
			"data":                  views,
			"freeShippingThreshold": cfg.Shipping.FreeShippingThreshold,
		})
	})
}
