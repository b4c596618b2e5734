package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/notify"
)

// Processor consumes queued notifications and sends customer emails.
type Processor struct {
	sender EmailSender
	logger *zap.Logger
}

// NewProcessor creates a worker processor.
func NewProcessor(sender EmailSender, logger *zap.Logger) *Processor {
	return &Processor{sender: sender, logger: logger}
}

// Handle processes an SQS batch. A failed message fails the batch so the
// runtime retries it; repeated failures land in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	p.logger.Info("received notification batch", zap.Int("messages", len(ev.Records)))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("notification processing failed",
				zap.String("message_id", rec.MessageId),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(_ context.Context, rec events.SQSMessage) error {
	var n notify.Notification
	if err := json.Unmarshal([]byte(rec.Body), &n); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if n.Email == "" {
		return fmt.Errorf("notification %s for order %s has no recipient", n.Type, n.OrderNumber)
	}

	email, err := renderEmail(n)
	if err != nil {
		return err
	}

	if err := p.sender.Send(email); err != nil {
		return fmt.Errorf("send %s email for order %s: %w", n.Type, n.OrderNumber, err)
	}

	p.logger.Info("notification sent",
		zap.String("type", n.Type),
		zap.String("order_number", n.OrderNumber),
	)
	return nil
}

// renderEmail builds the message for a notification type.
func renderEmail(n notify.Notification) (Email, error) {
	var b strings.Builder
	email := Email{To: n.Email}

	switch n.Type {
	case notify.TypeOrderConfirmation:
		email.Subject = fmt.Sprintf("Order confirmed: %s", n.OrderNumber)
		fmt.Fprintf(&b, "Hi %s,\n\n", n.CustomerName)
		fmt.Fprintf(&b, "Thanks for your order. We've received your payment of %.2f %s and your coffee is being prepared.\n\n", n.Total, n.Currency)
		if n.ShippingMethod != "" {
			fmt.Fprintf(&b, "Delivery: %s\n", n.ShippingMethod)
		}
		if n.TrackingURL != "" {
			fmt.Fprintf(&b, "Track your order: %s\n", n.TrackingURL)
		}

	case notify.TypePaymentFailed:
		email.Subject = fmt.Sprintf("Payment problem with order %s", n.OrderNumber)
		fmt.Fprintf(&b, "Hi %s,\n\n", n.CustomerName)
		fmt.Fprintf(&b, "Unfortunately your payment for order %s didn't go through. No money has been taken.\n\n", n.OrderNumber)
		b.WriteString("You can retry the payment from your order page, or get in touch if the problem persists.\n")

	case notify.TypeOrderDispatched:
		email.Subject = fmt.Sprintf("Your order %s is on its way", n.OrderNumber)
		fmt.Fprintf(&b, "Hi %s,\n\n", n.CustomerName)
		b.WriteString("Good news: your order has been dispatched.\n\n")
		if n.Carrier != "" {
			fmt.Fprintf(&b, "Carrier: %s\n", n.Carrier)
		}
		if n.TrackingNumber != "" {
			fmt.Fprintf(&b, "Tracking number: %s\n", n.TrackingNumber)
		}
		if n.TrackingURL != "" {
			fmt.Fprintf(&b, "Track your order: %s\n", n.TrackingURL)
		}

	default:
		return Email{}, fmt.Errorf("unknown notification type %q", n.Type)
	}

	b.WriteString("\nCarafe Coffee\n")
	email.Body = b.String()
	return email, nil
}
