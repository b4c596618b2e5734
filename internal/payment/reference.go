package payment

import (
	"fmt"
	"regexp"
	"time"
)

// MintReference builds the per-attempt gateway reference. Each initiation
// gets a fresh one, so webhooks from abandoned attempts stay distinguishable
// from the attempt the order currently expects.
func MintReference(orderNumber string, now time.Time) string {
	return fmt.Sprintf("%s-%d", orderNumber, now.UnixMilli())
}

var refFromHref = regexp.MustCompile(`([A-Z0-9-]+)$`)

// ExtractReference pulls the transaction reference out of a webhook event.
// The gateway is not consistent about where it lands, so three locations are
// tried in order: the dedicated field, the payment reference, and finally the
// tail of the event's self link. The second return names the strategy that
// matched, for logging.
func ExtractReference(event *WebhookEvent) (string, string) {
	if event.TransactionReference != "" {
		return event.TransactionReference, "transactionReference"
	}
	if event.PaymentReference != "" {
		return event.PaymentReference, "paymentReference"
	}
	if self, ok := event.Links["self"]; ok {
		if m := refFromHref.FindString(self.Href); m != "" {
			return m, "self link"
		}
	}
	return "", ""
}
