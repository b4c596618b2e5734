package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/aws"
	"github.com/carafecoffee/orderflow/internal/notify"
	"github.com/carafecoffee/orderflow/internal/orders"
	"github.com/carafecoffee/orderflow/internal/payment"
)

var (
	// ErrBadPayload rejects a webhook that cannot be parsed or lacks the
	// event id / event type. The only case that earns a 400.
	ErrBadPayload = errors.New("invalid webhook payload")
	// ErrInvalidMAC rejects a webhook whose signature check failed. The only
	// case that earns a 403.
	ErrInvalidMAC = errors.New("invalid webhook signature")
)

// Signature carries the MAC parameters the gateway sends alongside the body.
type Signature struct {
	OrderKey      string
	PaymentStatus string
	MAC           string
}

// Ack is the acknowledgement body returned for every authenticated webhook,
// applied or not. Anything other than a 200 makes the gateway retry.
type Ack struct {
	Received    bool      `json:"received"`
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	ProcessedAt time.Time `json:"processedAt"`
	Message     string    `json:"message,omitempty"`
}

// Reconciler applies gateway webhook events to orders. After a webhook is
// authenticated it is always acknowledged; internal failures are logged and
// counted instead of returned, because a retry storm from the gateway cannot
// fix a bad order lookup.
type Reconciler struct {
	store     *orders.Store
	events    EventStore
	mac       *payment.MACValidator
	client    *payment.Client
	publisher notify.Publisher
	metrics   *aws.Metrics
	logger    *zap.Logger
	siteURL   string
	nowFunc   func() time.Time
}

// NewReconciler wires a Reconciler.
func NewReconciler(
	store *orders.Store,
	events EventStore,
	mac *payment.MACValidator,
	client *payment.Client,
	publisher notify.Publisher,
	metrics *aws.Metrics,
	logger *zap.Logger,
	siteURL string,
) *Reconciler {
	return &Reconciler{
		store:     store,
		events:    events,
		mac:       mac,
		client:    client,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		siteURL:   siteURL,
		nowFunc:   time.Now,
	}
}

// Process handles one webhook delivery. It returns ErrBadPayload or
// ErrInvalidMAC for the two rejectable cases; every other path produces an
// Ack, including duplicates, unknown event types and reconciliation failures.
func (r *Reconciler) Process(ctx context.Context, body []byte, sig Signature) (*Ack, error) {
	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		r.logger.Warn("webhook payload unparseable", zap.Error(err))
		return nil, ErrBadPayload
	}
	if event.EventID == "" || event.EventType == "" {
		r.logger.Warn("webhook payload missing event id or type")
		return nil, ErrBadPayload
	}
	event.Raw = body

	if !r.mac.Valid(sig.OrderKey, sig.PaymentStatus, sig.MAC) {
		r.logger.Warn("webhook signature rejected",
			zap.String("event_id", event.EventID),
			zap.String("order_key", sig.OrderKey),
		)
		r.count(ctx, "invalid_mac")
		return nil, ErrInvalidMAC
	}

	ack := &Ack{
		Received:    true,
		EventID:     event.EventID,
		EventType:   event.EventType,
		ProcessedAt: r.nowFunc().UTC(),
	}

	first, err := r.events.MarkProcessed(ctx, event.EventID)
	if err != nil {
		// A broken dedup store must not drop webhooks. Duplicate application
		// is still caught by the transaction reference guard on the order.
		r.logger.Error("event store unavailable, processing without dedup",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	} else if !first {
		r.logger.Info("duplicate webhook acknowledged", zap.String("event_id", event.EventID))
		ack.Message = "event already processed"
		return ack, nil
	}

	r.reconcile(ctx, &event)
	return ack, nil
}

// reconcile performs the post-authenticity work. Failures are terminal for
// this delivery: logged, counted, never returned.
func (r *Reconciler) reconcile(ctx context.Context, event *payment.WebhookEvent) {
	log := r.logger.With(
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)

	outcome, known := payment.MapEvent(event.EventType)
	if !known {
		log.Info("ignoring unknown event type")
		if err := r.metrics.UnknownEventType(ctx, event.EventType); err != nil {
			log.Warn("metric emission failed", zap.Error(err))
		}
		return
	}

	reference, source := payment.ExtractReference(event)
	if reference == "" {
		log.Warn("no transaction reference in webhook")
		r.count(ctx, "missing_reference")
		return
	}
	log = log.With(zap.String("transaction_reference", reference))
	log.Debug("transaction reference extracted", zap.String("source", source))

	order, err := r.store.GetByTransactionReference(ctx, reference)
	if err != nil {
		log.Error("order lookup failed", zap.Error(err))
		r.count(ctx, "order_lookup_failed")
		return
	}
	if order == nil {
		// Either a reference we never issued or an attempt superseded by a
		// re-initiation. Both are acknowledged and dropped.
		log.Warn("no order carries this transaction reference")
		r.count(ctx, "order_not_found")
		return
	}

	update := orders.PaymentOutcome{
		PaymentStatus: outcome.PaymentStatus,
		OrderStatus:   outcome.OrderStatus,
	}
	if details := r.fetchDetails(ctx, event, log); details != nil {
		if details.Issuer != nil {
			update.AuthorizationCode = details.Issuer.AuthorizationCode
		}
		if details.Scheme != nil {
			update.SchemeReference = details.Scheme.Reference
		}
		if details.PaymentInstrument != nil {
			update.PaymentMethod = details.PaymentInstrument.Type
		}
		update.CardLast4 = details.CardLast4()
	}

	if err := r.store.ApplyPaymentOutcome(ctx, order.OrderID, reference, update); err != nil {
		if errors.Is(err, orders.ErrReferenceMismatch) {
			log.Warn("stale webhook, order expects a newer payment attempt")
			r.count(ctx, "stale_reference")
			return
		}
		log.Error("payment outcome write failed", zap.Error(err))
		r.count(ctx, "update_failed")
		return
	}

	log.Info("payment reconciled",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_status", string(outcome.PaymentStatus)),
		zap.String("order_status", string(outcome.OrderStatus)),
	)

	r.notifyCustomer(ctx, event.EventType, order, log)
}

// fetchDetails follows the event's payments link. Best-effort only.
func (r *Reconciler) fetchDetails(ctx context.Context, event *payment.WebhookEvent, log *zap.Logger) *payment.EventDetails {
	link, ok := event.Links["payments:events"]
	if !ok || link.Href == "" {
		return nil
	}
	details, err := r.client.FetchEventDetails(ctx, link.Href)
	if err != nil {
		log.Warn("payment detail fetch failed", zap.Error(err))
		return nil
	}
	return details
}

func (r *Reconciler) notifyCustomer(ctx context.Context, eventType string, order *orders.Order, log *zap.Logger) {
	var n notify.Notification
	switch {
	case payment.SuccessEvent(eventType):
		n = notify.Notification{Type: notify.TypeOrderConfirmation}
	case eventType == "payment.failed":
		n = notify.Notification{Type: notify.TypePaymentFailed}
	default:
		return
	}

	n.OrderID = order.OrderID
	n.OrderNumber = order.OrderNumber
	n.Email = order.CustomerEmail
	n.CustomerName = order.CustomerName
	n.Total = order.Total
	n.Currency = order.Currency
	n.ShippingMethod = order.ShippingMethod
	n.TrackingURL = orders.TrackingURL(r.siteURL, order)

	if err := r.publisher.Publish(ctx, n); err != nil {
		log.Error("notification enqueue failed",
			zap.String("type", n.Type),
			zap.Error(err),
		)
		r.count(ctx, "notification_failed")
	}
}

func (r *Reconciler) count(ctx context.Context, reason string) {
	if err := r.metrics.ReconciliationFailure(ctx, reason); err != nil {
		r.logger.Warn("metric emission failed", zap.String("reason", reason), zap.Error(err))
	}
}
