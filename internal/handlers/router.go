package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/orders"
	"github.com/carafecoffee/orderflow/internal/payment"
	"github.com/carafecoffee/orderflow/internal/shipping"
	"github.com/carafecoffee/orderflow/internal/webhook"
)

// HandlerConfig groups the dependencies the route handlers need.
type HandlerConfig struct {
	Orders     *orders.Service
	Initiator  *payment.Initiator
	Reconciler *webhook.Reconciler
	Shipping   shipping.Config
	JWTSecret  string
	Logger     *zap.Logger
}

// NewRouter builds the API router with all routes registered.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterShippingRoutes(r, cfg)
	RegisterOrdersRoutes(r, cfg)
	RegisterPaymentRoutes(r, cfg)

	return r
}
