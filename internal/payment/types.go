package payment

import "encoding/json"

// Media types for the hosted payment pages API and the payment detail API.
const (
	mediaTypePaymentPages = "application/vnd.worldpay.payment_pages-v1.hal+json"
	mediaTypePayments     = "application/vnd.worldpay.payments-v7.hal+json"
)

// Merchant identifies the merchant entity on a session request.
type Merchant struct {
	Entity string `json:"entity"`
}

// Narrative is the statement text shown to the cardholder. Line1 is capped at
// 24 characters by the gateway.
type Narrative struct {
	Line1 string `json:"line1"`
}

// Value is a monetary amount in minor units.
type Value struct {
	Currency string `json:"currency"`
	Amount   int    `json:"amount"`
}

// BillingAddress is the cardholder address sent with a session request.
type BillingAddress struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

// ResultURLs are the storefront pages the hosted page redirects back to.
type ResultURLs struct {
	SuccessURL string `json:"successURL"`
	FailureURL string `json:"failureURL"`
	CancelURL  string `json:"cancelURL"`
	PendingURL string `json:"pendingURL"`
}

// SessionRequest is the hosted payment page creation payload.
type SessionRequest struct {
	TransactionReference string         `json:"transactionReference"`
	Merchant             Merchant       `json:"merchant"`
	Narrative            Narrative      `json:"narrative"`
	Value                Value          `json:"value"`
	Description          string         `json:"description,omitempty"`
	BillingAddress       BillingAddress `json:"billingAddress"`
	ResultURLs           ResultURLs     `json:"resultURLs"`
}

// SessionResponse is the hosted payment page creation result. The redirect
// target comes back in the "url" field.
type SessionResponse struct {
	URL string `json:"url"`
}

// Session is the outcome of a successful session creation.
type Session struct {
	RedirectURL          string
	TransactionReference string
}

// Link is a HAL link.
type Link struct {
	Href string `json:"href"`
}

// WebhookEvent is the notification payload the gateway posts on payment state
// changes. References can appear in several places depending on the event
// source; see ExtractReference.
type WebhookEvent struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Timestamp string `json:"eventTimestamp,omitempty"`

	TransactionReference string `json:"transactionReference,omitempty"`
	PaymentReference     string `json:"paymentReference,omitempty"`

	Links map[string]Link `json:"_links,omitempty"`

	// Raw keeps the original payload for logging and forward compatibility.
	Raw json.RawMessage `json:"-"`
}

// EventDetails is the payment detail document fetched from the event's
// payments link after a webhook is authenticated. All fields are best-effort.
type EventDetails struct {
	Outcome string `json:"outcome,omitempty"`
	Issuer  *struct {
		AuthorizationCode string `json:"authorizationCode,omitempty"`
	} `json:"issuer,omitempty"`
	Scheme *struct {
		Reference string `json:"reference,omitempty"`
	} `json:"scheme,omitempty"`
	PaymentInstrument *struct {
		Type       string `json:"type,omitempty"`
		CardNumber string `json:"cardNumber,omitempty"`
	} `json:"paymentInstrument,omitempty"`
}

// CardLast4 returns the trailing four digits of the masked card number, if
// the instrument carries one.
func (d *EventDetails) CardLast4() string {
	if d == nil || d.PaymentInstrument == nil {
		return ""
	}
	n := d.PaymentInstrument.CardNumber
	if len(n) < 4 {
		return ""
	}
	return n[len(n)-4:]
}
