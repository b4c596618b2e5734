package orders

import "time"

// OrderStatus is the fulfilment lifecycle. It is deliberately a separate
// type from PaymentStatus: a payment can be captured while the order is
// still being packed.
type OrderStatus string

const (
	OrderStatusReceived      OrderStatus = "order_received"
	OrderStatusProcessing    OrderStatus = "processing"
	OrderStatusPaid          OrderStatus = "paid"
	OrderStatusPacked        OrderStatus = "packed"
	OrderStatusShipped       OrderStatus = "shipped"
	OrderStatusInTransit     OrderStatus = "in_transit"
	OrderStatusDelivered     OrderStatus = "delivered"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusCancelled     OrderStatus = "cancelled"
	OrderStatusRefunded      OrderStatus = "refunded"
)

// PaymentStatus is the gateway reconciliation lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusInitiated  PaymentStatus = "initiated"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusSettled    PaymentStatus = "settled"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Address is a stored order address.
type Address struct {
	Street   string  `dynamodbav:"street" json:"street"`
	City     string  `dynamodbav:"city" json:"city"`
	Postcode string  `dynamodbav:"postcode" json:"postcode"`
	Country  string  `dynamodbav:"country" json:"country"`
	Lat      float64 `dynamodbav:"lat,omitempty" json:"lat,omitempty"`
	Lng      float64 `dynamodbav:"lng,omitempty" json:"lng,omitempty"`
}

// Item is an order line. Name and unit price are snapshotted at order time
// and never recomputed from the live catalog: historical orders must show
// what the customer actually bought and paid.
type Item struct {
	ProductID    int     `dynamodbav:"product_id" json:"productId"`
	ProductName  string  `dynamodbav:"product_name" json:"productName"`
	VariantLabel string  `dynamodbav:"variant_label,omitempty" json:"variantLabel,omitempty"`
	Quantity     int     `dynamodbav:"quantity" json:"quantity"`
	UnitPrice    float64 `dynamodbav:"unit_price" json:"price"`
	LineTotal    float64 `dynamodbav:"line_total" json:"total"`
}

// Order is the central entity, stored in the orders table.
type Order struct {
	OrderID     string `dynamodbav:"order_id" json:"id"` // PK
	OrderNumber string `dynamodbav:"order_number" json:"orderNumber"`

	// Guest orders carry a tracking token instead of a customer link. The
	// token is an access credential: it is returned once at creation and
	// stripped from every generic read.
	CustomerID    string `dynamodbav:"customer_id,omitempty" json:"-"`
	IsGuestOrder  bool   `dynamodbav:"is_guest_order" json:"isGuestOrder"`
	TrackingToken string `dynamodbav:"tracking_token,omitempty" json:"-"`

	CustomerEmail string `dynamodbav:"customer_email" json:"customerEmail"`
	CustomerName  string `dynamodbav:"customer_name" json:"customerName"`
	CustomerPhone string `dynamodbav:"customer_phone,omitempty" json:"customerPhone,omitempty"`

	ShippingAddress Address `dynamodbav:"shipping_address" json:"shippingAddress"`
	BillingAddress  Address `dynamodbav:"billing_address" json:"billingAddress"`

	Items []Item `dynamodbav:"items" json:"items"`

	Subtotal     float64 `dynamodbav:"subtotal" json:"subtotal"`
	ShippingCost float64 `dynamodbav:"shipping_cost" json:"shippingCost"`
	Tax          float64 `dynamodbav:"tax" json:"tax"`
	Discount     float64 `dynamodbav:"discount" json:"discount"`
	Total        float64 `dynamodbav:"total" json:"total"`
	Currency     string  `dynamodbav:"currency" json:"currency"`

	Status        OrderStatus   `dynamodbav:"status" json:"status"`
	PaymentStatus PaymentStatus `dynamodbav:"payment_status" json:"paymentStatus"`

	PaymentMethod        string `dynamodbav:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	TransactionReference string `dynamodbav:"transaction_reference,omitempty" json:"-"`
	GatewayOrderCode     string `dynamodbav:"gateway_order_code,omitempty" json:"-"`
	AuthorizationCode    string `dynamodbav:"authorization_code,omitempty" json:"-"`
	SchemeReference      string `dynamodbav:"scheme_reference,omitempty" json:"-"`
	CardLast4            string `dynamodbav:"card_last4,omitempty" json:"cardLast4,omitempty"`

	ShippingMethod string     `dynamodbav:"shipping_method" json:"shippingMethod"`
	Carrier        string     `dynamodbav:"carrier,omitempty" json:"carrier,omitempty"`
	TrackingNumber string     `dynamodbav:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	DispatchedAt   *time.Time `dynamodbav:"dispatched_at,omitempty" json:"dispatchedAt,omitempty"`
	DeliveredAt    *time.Time `dynamodbav:"delivered_at,omitempty" json:"deliveredAt,omitempty"`

	Notes string `dynamodbav:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}
