package notify

import "time"

// Notification types sent through the queue.
const (
	TypeOrderConfirmation = "order_confirmation"
	TypePaymentFailed     = "payment_failed"
	TypeOrderDispatched   = "order_dispatched"
)

// Notification is the payload sent from the API/reconciler to the worker.
// It carries everything the worker needs to render an email without reading
// the order back.
type Notification struct {
	Type           string     `json:"type"`
	OrderID        string     `json:"order_id"`
	OrderNumber    string     `json:"order_number"`
	Email          string     `json:"email"`
	CustomerName   string     `json:"customer_name"`
	Total          float64    `json:"total"`
	Currency       string     `json:"currency"`
	ShippingMethod string     `json:"shipping_method,omitempty"`
	TrackingURL    string     `json:"tracking_url,omitempty"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	DispatchedAt   *time.Time `json:"dispatched_at,omitempty"`
	CorrelationID  string     `json:"correlation_id,omitempty"`
}
