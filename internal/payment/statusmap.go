package payment

import "github.com/carafecoffee/orderflow/internal/orders"

// Outcome pairs the payment and order statuses a gateway event maps to.
type Outcome struct {
	PaymentStatus orders.PaymentStatus
	OrderStatus   orders.OrderStatus
}

var eventOutcomes = map[string]Outcome{
	"payment.authorized": {orders.PaymentStatusAuthorized, orders.OrderStatusProcessing},
	"payment.captured":   {orders.PaymentStatusCaptured, orders.OrderStatusPaid},
	"payment.settled":    {orders.PaymentStatusSettled, orders.OrderStatusCompleted},
	"payment.failed":     {orders.PaymentStatusFailed, orders.OrderStatusPaymentFailed},
	"payment.cancelled":  {orders.PaymentStatusCancelled, orders.OrderStatusCancelled},
	"payment.refunded":   {orders.PaymentStatusRefunded, orders.OrderStatusRefunded},
}

// MapEvent translates a gateway event type into the statuses to record.
// Unknown event types return ok=false and are acknowledged without effect.
func MapEvent(eventType string) (Outcome, bool) {
	outcome, ok := eventOutcomes[eventType]
	return outcome, ok
}

// SuccessEvent reports whether the event type represents money secured, the
// trigger for the order confirmation notification.
func SuccessEvent(eventType string) bool {
	return eventType == "payment.captured" || eventType == "payment.settled"
}
