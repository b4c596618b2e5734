package orders

import "time"

// PublicItem is the reduced line-item view exposed to unauthenticated
// tracking: names and quantities only, no prices.
type PublicItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// PublicAddress exposes only enough of the address to recognise the order.
type PublicAddress struct {
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// PublicOrderView is what the public tracking endpoint returns. It never
// carries the tracking token, payment identifiers or the street address.
type PublicOrderView struct {
	OrderNumber    string         `json:"orderNumber"`
	Status         OrderStatus    `json:"status"`
	CustomerName   string         `json:"customerName"`
	Items          []PublicItem   `json:"items"`
	ShippingAddr   PublicAddress  `json:"shippingAddress"`
	ShippingMethod string         `json:"shippingMethod,omitempty"`
	Carrier        string         `json:"carrier,omitempty"`
	TrackingNumber string         `json:"trackingNumber,omitempty"`
	DispatchedAt   *time.Time     `json:"dispatchedAt,omitempty"`
	DeliveredAt    *time.Time     `json:"deliveredAt,omitempty"`
	Total          float64        `json:"total"`
	Currency       string         `json:"currency"`
	CreatedAt      time.Time      `json:"createdAt"`
	Timeline       []TimelineStep `json:"timeline"`
}

// TimelineStep is one stage of the five-stage fulfilment progress view.
type TimelineStep struct {
	Key       OrderStatus `json:"key"`
	Label     string      `json:"label"`
	Completed bool        `json:"completed"`
	Current   bool        `json:"current"`
}

var timelineStages = []struct {
	key   OrderStatus
	label string
}{
	{OrderStatusReceived, "Order Received"},
	{OrderStatusPacked, "Packed"},
	{OrderStatusShipped, "Shipped"},
	{OrderStatusInTransit, "In Transit"},
	{OrderStatusDelivered, "Delivered"},
}

// BuildTimeline locates the order's status in the fixed stage sequence and
// marks every stage up to and including it as complete. Cancelled and
// refunded orders are a non-linear terminal state: no stage is current.
func BuildTimeline(status OrderStatus) []TimelineStep {
	current := -1
	for i, stage := range timelineStages {
		if stage.key == status {
			current = i
			break
		}
	}
	steps := make([]TimelineStep, len(timelineStages))
	for i, stage := range timelineStages {
		steps[i] = TimelineStep{
			Key:       stage.key,
			Label:     stage.label,
			Completed: current >= 0 && i <= current,
			Current:   current >= 0 && i == current,
		}
	}
	return steps
}

// PublicView reduces an order to its tracking representation.
func PublicView(o *Order) *PublicOrderView {
	items := make([]PublicItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = PublicItem{Name: item.ProductName, Quantity: item.Quantity}
	}
	return &PublicOrderView{
		OrderNumber:  o.OrderNumber,
		Status:       o.Status,
		CustomerName: o.CustomerName,
		Items:        items,
		ShippingAddr: PublicAddress{
			City:     o.ShippingAddress.City,
			Postcode: o.ShippingAddress.Postcode,
		},
		ShippingMethod: o.ShippingMethod,
		Carrier:        o.Carrier,
		TrackingNumber: o.TrackingNumber,
		DispatchedAt:   o.DispatchedAt,
		DeliveredAt:    o.DeliveredAt,
		Total:          o.Total,
		Currency:       o.Currency,
		CreatedAt:      o.CreatedAt,
		Timeline:       BuildTimeline(o.Status),
	}
}
