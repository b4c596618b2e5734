package orders

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/notify"
	"github.com/carafecoffee/orderflow/internal/shipping"
	"github.com/carafecoffee/orderflow/internal/validation"
)

var (
	// ErrNotFound covers both "no such order" and, for tracking, "credentials
	// didn't match". The two are deliberately indistinguishable.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is an ownership mismatch on an authenticated read.
	ErrForbidden = errors.New("order belongs to another account")
)

// Identity is the requesting caller, as established by the auth middleware.
type Identity struct {
	CustomerID string
	Admin      bool
}

// Service implements the order workflows on top of the store.
type Service struct {
	store     *Store
	shipping  shipping.Config
	validator *validation.Validator
	publisher notify.Publisher
	logger    *zap.Logger
	siteURL   string
	nowFunc   func() time.Time
}

// NewService wires an order Service.
func NewService(store *Store, cfg shipping.Config, publisher notify.Publisher, logger *zap.Logger, siteURL string) *Service {
	return &Service{
		store:     store,
		shipping:  cfg,
		validator: validation.New(cfg),
		publisher: publisher,
		logger:    logger,
		siteURL:   siteURL,
		nowFunc:   time.Now,
	}
}

// CreateOrder validates a checkout submission, computes totals and persists a
// pending order. For guest checkouts (empty customerID) the returned tracking
// token is the caller's only chance to capture it; generic reads never echo it.
func (s *Service) CreateOrder(ctx context.Context, req *validation.CheckoutRequest, customerID string) (*Order, string, error) {
	if verr := s.validator.ValidateCheckout(req); verr != nil {
		return nil, "", verr
	}

	items := make([]Item, len(req.Items))
	var subtotal float64
	for i, line := range req.Items {
		lineTotal := float64(line.Quantity) * line.UnitPrice
		items[i] = Item{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			VariantLabel: line.VariantLabel,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineTotal:    lineTotal,
		}
		subtotal += lineTotal
	}

	shippingCost, err := s.shipping.ResolveRate(subtotal, req.ShippingMethod)
	if err != nil {
		return nil, "", validation.NewError(validation.CodeShippingMethodRequired, "selected shipping method is not available")
	}

	// VAT is included in product prices; discounts are not taken at checkout.
	tax := 0.0
	discount := 0.0
	total := subtotal + shippingCost + tax - discount

	now := s.nowFunc().UTC()
	currency := req.Currency
	if currency == "" {
		currency = "GBP"
	}

	shippingAddr := toAddress(req.ShippingAddress)
	billingAddr := shippingAddr
	if req.BillingAddress != nil {
		billingAddr = toAddress(req.BillingAddress)
	}

	order := &Order{
		OrderID:         uuid.NewString(),
		OrderNumber:     NewOrderNumber(now),
		CustomerID:      customerID,
		IsGuestOrder:    customerID == "",
		CustomerEmail:   req.CustomerEmail,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
		Items:           items,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		Tax:             tax,
		Discount:        discount,
		Total:           total,
		Currency:        currency,
		Status:          OrderStatusReceived,
		PaymentStatus:   PaymentStatusPending,
		PaymentMethod:   "worldpay",
		ShippingMethod:  req.ShippingMethod,
		Notes:           req.Notes,
		CreatedAt:       now,
	}

	trackingToken := ""
	if order.IsGuestOrder {
		trackingToken = NewTrackingToken()
		order.TrackingToken = trackingToken
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, "", fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Bool("guest", order.IsGuestOrder),
		zap.Float64("total", order.Total),
	)
	return order, trackingToken, nil
}

// TrackOrder is the public, unauthenticated read path. It requires the order
// number plus exactly one of tracking token or email; any mismatch yields the
// same ErrNotFound so callers cannot enumerate orders.
func (s *Service) TrackOrder(ctx context.Context, orderNumber, token, email string) (*PublicOrderView, error) {
	if orderNumber == "" || (token == "") == (email == "") {
		return nil, ErrNotFound
	}

	order, err := s.store.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("track order: %w", err)
	}
	if order == nil {
		return nil, ErrNotFound
	}

	switch {
	case token != "":
		if order.TrackingToken == "" ||
			subtle.ConstantTimeCompare([]byte(order.TrackingToken), []byte(token)) != 1 {
			return nil, ErrNotFound
		}
	case email != "":
		if !strings.EqualFold(order.CustomerEmail, email) {
			return nil, ErrNotFound
		}
	}

	return PublicView(order), nil
}

// GetOwnedOrder fetches an order for an authenticated caller, enforcing
// ownership. Admin identities bypass the ownership check.
func (s *Service) GetOwnedOrder(ctx context.Context, orderID string, requester Identity) (*Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if !requester.Admin && (order.CustomerID == "" || order.CustomerID != requester.CustomerID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns the caller's own orders, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID string) ([]*Order, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// CheckPurchase reports whether the customer has a delivered order containing
// the product. Used to gate product reviews.
func (s *Service) CheckPurchase(ctx context.Context, customerID string, productID int) (bool, error) {
	list, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return false, err
	}
	for _, order := range list {
		if order.Status != OrderStatusDelivered {
			continue
		}
		for _, item := range order.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// UpdateStatus applies a back-office fulfilment transition. Moving into
// shipped or in_transit requires carrier and tracking number together; the
// dispatch timestamp is set on the first shipped transition and the delivery
// timestamp on delivered. A dispatch notification goes out when the order
// ships.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus OrderStatus, carrier, trackingNumber string) (*Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrNotFound
	}

	if newStatus == OrderStatusShipped || newStatus == OrderStatusInTransit {
		if (carrier == "" || trackingNumber == "") && (order.Carrier == "" || order.TrackingNumber == "") {
			return nil, validation.NewError(validation.CodeTrackingRequired,
				"carrier and tracking number are required to mark an order as shipped")
		}
	}

	update := FulfilmentUpdate{
		Status:         newStatus,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
	}

	now := s.nowFunc().UTC()
	firstDispatch := newStatus == OrderStatusShipped && order.DispatchedAt == nil
	if firstDispatch {
		update.DispatchedAt = &now
	}
	if newStatus == OrderStatusDelivered && order.DeliveredAt == nil {
		update.DeliveredAt = &now
	}

	if err := s.store.UpdateFulfilment(ctx, orderID, update); err != nil {
		return nil, err
	}

	order.Status = newStatus
	if carrier != "" {
		order.Carrier = carrier
	}
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	if update.DispatchedAt != nil {
		order.DispatchedAt = update.DispatchedAt
	}
	if update.DeliveredAt != nil {
		order.DeliveredAt = update.DeliveredAt
	}

	if firstDispatch {
		notification := notify.Notification{
			Type:           notify.TypeOrderDispatched,
			OrderID:        order.OrderID,
			OrderNumber:    order.OrderNumber,
			Email:          order.CustomerEmail,
			CustomerName:   order.CustomerName,
			Total:          order.Total,
			Currency:       order.Currency,
			Carrier:        order.Carrier,
			TrackingNumber: order.TrackingNumber,
			DispatchedAt:   order.DispatchedAt,
			TrackingURL:    TrackingURL(s.siteURL, order),
		}
		if err := s.publisher.Publish(ctx, notification); err != nil {
			// Notification failures never roll back the status change.
			s.logger.Error("dispatch notification failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

// TrackingURL builds the customer-facing link for an order: the tokenised
// public tracking page for guest orders, the account page otherwise.
func TrackingURL(siteURL string, o *Order) string {
	if o.IsGuestOrder {
		return fmt.Sprintf("%s/track-order?orderNumber=%s&token=%s", siteURL, o.OrderNumber, o.TrackingToken)
	}
	return fmt.Sprintf("%s/account/orders/%s", siteURL, o.OrderNumber)
}

func toAddress(a *validation.Address) Address {
	return Address{
		Street:   a.Street,
		City:     a.City,
		Postcode: a.Postcode,
		Country:  a.Country,
		Lat:      a.Lat,
		Lng:      a.Lng,
	}
}
