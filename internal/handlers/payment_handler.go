package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/orders"
	"github.com/carafecoffee/orderflow/internal/payment"
	"github.com/carafecoffee/orderflow/internal/webhook"
)

// RegisterPaymentRoutes registers payment initiation and the gateway webhook.
func RegisterPaymentRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.POST("/payment/initiate", func(c *gin.Context) {
		var req struct {
			OrderID string `json:"orderId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_order_id"})
			return
		}

		session, err := cfg.Initiator.Initiate(c.Request.Context(), req.OrderID)
		if err != nil {
			writePaymentError(c, cfg.Logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":              true,
			"redirectUrl":          session.RedirectURL,
			"orderId":              req.OrderID,
			"transactionReference": session.TransactionReference,
		})
	})

	r.POST("/payment/webhook", func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
			return
		}

		sig := webhook.Signature{
			OrderKey:      c.Query("orderKey"),
			PaymentStatus: c.Query("paymentStatus"),
			MAC:           c.Query("mac"),
		}

		ack, err := cfg.Reconciler.Process(c.Request.Context(), body, sig)
		switch {
		case errors.Is(err, webhook.ErrBadPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		case errors.Is(err, webhook.ErrInvalidMAC):
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid_signature"})
		case err != nil:
			// Process only returns the two sentinel errors above; anything
			// else would be a programming error, but never make the gateway retry.
			cfg.Logger.Error("unexpected webhook processing error", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
		default:
			c.JSON(http.StatusOK, ack)
		}
	})
}

func writePaymentError(c *gin.Context, logger *zap.Logger, err error) {
	var gerr *payment.GatewayError
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
	case errors.Is(err, payment.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "order_already_paid"})
	case errors.Is(err, payment.ErrNotConfigured):
		logger.Error("payment initiation with unconfigured gateway")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment_not_configured"})
	case errors.Is(err, payment.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment_provider_unreachable"})
	case errors.As(err, &gerr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "payment_initiation_failed",
			"errorName": gerr.ErrorName,
			"message":   gerr.Message,
		})
	default:
		logger.Error("payment initiation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
