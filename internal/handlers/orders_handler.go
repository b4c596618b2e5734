package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carafecoffee/orderflow/internal/orders"
	"github.com/carafecoffee/orderflow/internal/validation"
)

// RegisterOrdersRoutes registers the order intake, tracking and account
// endpoints.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.POST("/orders", OptionalAuth(cfg.JWTSecret), func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   validation.CodeEmptyOrInvalidItems,
				"message": "request body is not valid JSON",
			})
			return
		}

		customerID := ""
		if id, ok := currentIdentity(c); ok {
			customerID = id.CustomerID
		}

		order, trackingToken, err := cfg.Orders.CreateOrder(ctx, &req, customerID)
		if err != nil {
			writeOrderError(c, err)
			return
		}

		resp := gin.H{
			"data":    order,
			"message": "Order created successfully",
		}
		// The one and only time the guest credential leaves the system.
		if trackingToken != "" {
			resp["trackingToken"] = trackingToken
		}
		c.JSON(http.StatusCreated, resp)
	})

	r.GET("/orders/track", func(c *gin.Context) {
		view, err := cfg.Orders.TrackOrder(
			c.Request.Context(),
			c.Query("orderNumber"),
			c.Query("token"),
			c.Query("email"),
		)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": view})
	})

	r.GET("/orders/my-orders", RequireAuth(cfg.JWTSecret), func(c *gin.Context) {
		id, _ := currentIdentity(c)
		list, err := cfg.Orders.ListOrders(c.Request.Context(), id.CustomerID)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list})
	})

	r.GET("/orders/check-purchase/:productId", RequireAuth(cfg.JWTSecret), func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
			return
		}
		id, _ := currentIdentity(c)
		purchased, err := cfg.Orders.CheckPurchase(c.Request.Context(), id.CustomerID, productID)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"purchased": purchased})
	})

	r.GET("/orders/:id", RequireAuth(cfg.JWTSecret), func(c *gin.Context) {
		id, _ := currentIdentity(c)
		order, err := cfg.Orders.GetOwnedOrder(c.Request.Context(), c.Param("id"), id)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	})

	r.PUT("/orders/:id/status", RequireAuth(cfg.JWTSecret), RequireAdmin(), func(c *gin.Context) {
		var req struct {
			Status         string `json:"status" binding:"required"`
			Carrier        string `json:"carrier"`
			TrackingNumber string `json:"trackingNumber"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}

		order, err := cfg.Orders.UpdateStatus(
			c.Request.Context(),
			c.Param("id"),
			orders.OrderStatus(req.Status),
			req.Carrier,
			req.TrackingNumber,
		)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	})
}

// writeOrderError maps service errors onto HTTP responses.
func writeOrderError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Code, "message": verr.Message})
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
	case errors.Is(err, orders.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not_your_order"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
