package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/orders"
)

// ErrAlreadyPaid rejects initiation against an order whose payment has
// already been captured or settled.
var ErrAlreadyPaid = errors.New("order payment already completed")

// The statement narrative the gateway shows the cardholder. Capped at 24
// characters by the payment pages API.
const narrativeLine1 = "Carafe Coffee"

// Initiator drives payment session creation for an order.
type Initiator struct {
	store   *orders.Store
	client  *Client
	logger  *zap.Logger
	siteURL string
	nowFunc func() time.Time
}

// NewInitiator wires an Initiator.
func NewInitiator(store *orders.Store, client *Client, logger *zap.Logger, siteURL string) *Initiator {
	return &Initiator{
		store:   store,
		client:  client,
		logger:  logger,
		siteURL: siteURL,
		nowFunc: time.Now,
	}
}

// Initiate creates a hosted payment session for the order. A fresh
// transaction reference is minted and persisted before the gateway is
// called, so a lost response can still be reconciled from the webhook alone.
// Re-initiating an unpaid order is allowed and supersedes the prior attempt.
func (i *Initiator) Initiate(ctx context.Context, orderID string) (*Session, error) {
	order, err := i.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, orders.ErrNotFound
	}
	switch order.PaymentStatus {
	case orders.PaymentStatusCaptured, orders.PaymentStatusSettled:
		return nil, ErrAlreadyPaid
	}
	if order.Total <= 0 {
		return nil, fmt.Errorf("order %s has non-positive total", order.OrderNumber)
	}

	reference := MintReference(order.OrderNumber, i.nowFunc())
	if err := i.store.SetPaymentInitiated(ctx, orderID, reference); err != nil {
		return nil, fmt.Errorf("record payment initiation: %w", err)
	}

	session, err := i.client.CreateSession(ctx, i.buildRequest(order, reference))
	if err != nil {
		i.logger.Error("payment session creation failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("transaction_reference", reference),
			zap.Error(err),
		)
		return nil, err
	}

	i.logger.Info("payment session created",
		zap.String("order_number", order.OrderNumber),
		zap.String("transaction_reference", reference),
	)
	return session, nil
}

func (i *Initiator) buildRequest(order *orders.Order, reference string) *SessionRequest {
	firstName, lastName := splitName(order.CustomerName)

	country := strings.ToUpper(order.BillingAddress.Country)
	if len(country) >= 2 {
		country = country[:2]
	} else {
		country = "GB"
	}

	return &SessionRequest{
		TransactionReference: reference,
		Narrative:            Narrative{Line1: truncate(narrativeLine1, 24)},
		Value: Value{
			Currency: order.Currency,
			Amount:   MinorUnits(order.Total),
		},
		Description: order.CustomerName,
		BillingAddress: BillingAddress{
			FirstName:   firstName,
			LastName:    lastName,
			Address1:    order.BillingAddress.Street,
			City:        order.BillingAddress.City,
			PostalCode:  order.BillingAddress.Postcode,
			CountryCode: country,
		},
		ResultURLs: ResultURLs{
			SuccessURL: fmt.Sprintf("%s/payment/success?orderId=%s&ref=%s", i.siteURL, order.OrderID, reference),
			FailureURL: fmt.Sprintf("%s/payment/failure?orderId=%s&ref=%s", i.siteURL, order.OrderID, reference),
			CancelURL:  fmt.Sprintf("%s/payment/cancelled?orderId=%s", i.siteURL, order.OrderID),
			PendingURL: fmt.Sprintf("%s/payment/pending?orderId=%s", i.siteURL, order.OrderID),
		},
	}
}

// MinorUnits converts a major-unit amount to the gateway's integer minor
// units, rounding half away from zero. 45.99 becomes 4599.
func MinorUnits(amount float64) int {
	return int(math.Round(amount * 100))
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
