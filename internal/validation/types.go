package validation

// Validation error codes. Each failed check carries exactly one of these so
// the storefront can render a precise message.
const (
	CodeEmailInvalid           = "EMAIL_INVALID"
	CodeNameRequired           = "NAME_REQUIRED"
	CodePhoneInvalid           = "PHONE_INVALID"
	CodeAddressIncomplete      = "ADDRESS_INCOMPLETE"
	CodePostcodeInvalid        = "POSTCODE_INVALID"
	CodeRegionNotServiceable   = "REGION_NOT_SERVICEABLE"
	CodeEmptyOrInvalidItems    = "EMPTY_OR_INVALID_ITEMS"
	CodeShippingMethodRequired = "SHIPPING_METHOD_REQUIRED"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeTrackingRequired       = "TRACKING_REQUIRED"
)

// Error is a client-caused validation failure with a machine-readable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// NewError builds a validation error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Address is a checkout address.
type Address struct {
	Street   string  `json:"street" validate:"required"`
	City     string  `json:"city" validate:"required"`
	Postcode string  `json:"postcode" validate:"required"`
	Country  string  `json:"country" validate:"required"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
}

// Item is a single checkout line item. Name and unit price are snapshots
// taken by the storefront at add-to-cart time.
type Item struct {
	ProductID    int     `json:"productId" validate:"required"`
	ProductName  string  `json:"productName" validate:"required"`
	VariantLabel string  `json:"variantLabel,omitempty"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	UnitPrice    float64 `json:"price" validate:"required,gt=0"`
}

// CheckoutRequest is the payload for POST /orders.
type CheckoutRequest struct {
	CustomerEmail   string   `json:"customerEmail"`
	CustomerName    string   `json:"customerName"`
	CustomerPhone   string   `json:"customerPhone,omitempty"`
	ShippingAddress *Address `json:"shippingAddress"`
	BillingAddress  *Address `json:"billingAddress,omitempty"`
	Items           []Item   `json:"items"`
	ShippingMethod  string   `json:"shippingMethod"`
	Currency        string   `json:"currency,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}
