package orders

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testOrder(id, number string) *Order {
	return &Order{
		OrderID:       id,
		OrderNumber:   number,
		CustomerEmail: "jo@example.com",
		CustomerName:  "Jo Bloggs",
		Items: []Item{
			{ProductID: 1, ProductName: "Ethiopia Guji", Quantity: 1, UnitPrice: 9.50, LineTotal: 9.50},
		},
		Subtotal:      9.50,
		ShippingCost:  3.95,
		Total:         13.45,
		Currency:      "GBP",
		Status:        OrderStatusReceived,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, testOrder("o-1", "ORD-1-AAAAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetByID(ctx, "o-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.OrderNumber != "ORD-1-AAAAAA" {
		t.Fatalf("unexpected order: %+v", got)
	}

	missing, err := store.GetByID(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing order, got %+v", missing)
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, testOrder("o-1", "ORD-1-AAAAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Create(ctx, testOrder("o-1", "ORD-2-BBBBBB"))
	if !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestStoreGetByOrderNumber(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, testOrder("o-1", "ORD-1-AAAAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetByOrderNumber(ctx, "ORD-1-AAAAAA")
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if got == nil || got.OrderID != "o-1" {
		t.Fatalf("unexpected order: %+v", got)
	}

	missing, err := store.GetByOrderNumber(ctx, "ORD-9-ZZZZZZ")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", missing, err)
	}
}

func TestStorePaymentInitiationAndOutcome(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, testOrder("o-1", "ORD-1-AAAAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetPaymentInitiated(ctx, "o-1", "ORD-1-AAAAAA-1000"); err != nil {
		t.Fatalf("set initiated: %v", err)
	}

	got, _ := store.GetByID(ctx, "o-1")
	if got.PaymentStatus != PaymentStatusInitiated {
		t.Fatalf("expected initiated, got %s", got.PaymentStatus)
	}
	if got.TransactionReference != "ORD-1-AAAAAA-1000" {
		t.Fatalf("unexpected reference %q", got.TransactionReference)
	}

	byRef, err := store.GetByTransactionReference(ctx, "ORD-1-AAAAAA-1000")
	if err != nil || byRef == nil || byRef.OrderID != "o-1" {
		t.Fatalf("lookup by reference failed: %+v %v", byRef, err)
	}

	outcome := PaymentOutcome{
		PaymentStatus:     PaymentStatusCaptured,
		OrderStatus:       OrderStatusPaid,
		AuthorizationCode: "AUTH1",
		CardLast4:         "4242",
	}
	if err := store.ApplyPaymentOutcome(ctx, "o-1", "ORD-1-AAAAAA-1000", outcome); err != nil {
		t.Fatalf("apply outcome: %v", err)
	}

	got, _ = store.GetByID(ctx, "o-1")
	if got.PaymentStatus != PaymentStatusCaptured || got.Status != OrderStatusPaid {
		t.Fatalf("outcome not applied: %s / %s", got.PaymentStatus, got.Status)
	}
	if got.AuthorizationCode != "AUTH1" || got.CardLast4 != "4242" {
		t.Fatalf("enrichment not applied: %+v", got)
	}
}

func TestStoreApplyPaymentOutcomeStaleReference(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, testOrder("o-1", "ORD-1-AAAAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Second initiation supersedes the first.
	if err := store.SetPaymentInitiated(ctx, "o-1", "ORD-1-AAAAAA-1000"); err != nil {
		t.Fatalf("set initiated: %v", err)
	}
	if err := store.SetPaymentInitiated(ctx, "o-1", "ORD-1-AAAAAA-2000"); err != nil {
		t.Fatalf("set initiated: %v", err)
	}

	err := store.ApplyPaymentOutcome(ctx, "o-1", "ORD-1-AAAAAA-1000", PaymentOutcome{
		PaymentStatus: PaymentStatusFailed,
		OrderStatus:   OrderStatusPaymentFailed,
	})
	if !errors.Is(err, ErrReferenceMismatch) {
		t.Fatalf("expected ErrReferenceMismatch, got %v", err)
	}

	// The order still reflects the live attempt, untouched.
	got, _ := store.GetByID(ctx, "o-1")
	if got.PaymentStatus != PaymentStatusInitiated {
		t.Fatalf("stale webhook mutated the order: %s", got.PaymentStatus)
	}
}

func TestStoreListByCustomerNewestFirst(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	older := testOrder("o-1", "ORD-1-AAAAAA")
	older.CustomerID = "cust-1"
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testOrder("o-2", "ORD-2-BBBBBB")
	newer.CustomerID = "cust-1"
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	other := testOrder("o-3", "ORD-3-CCCCCC")
	other.CustomerID = "cust-2"

	for _, o := range []*Order{older, newer, other} {
		if err := store.Create(ctx, o); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := store.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	if list[0].OrderID != "o-2" || list[1].OrderID != "o-1" {
		t.Fatalf("expected newest first, got %s then %s", list[0].OrderID, list[1].OrderID)
	}
}

func TestStoreUpdateFulfilment(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, testOrder("o-1", "ORD-1-AAAAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}

	dispatched := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	err := store.UpdateFulfilment(ctx, "o-1", FulfilmentUpdate{
		Status:         OrderStatusShipped,
		Carrier:        "Royal Mail",
		TrackingNumber: "RM123",
		DispatchedAt:   &dispatched,
	})
	if err != nil {
		t.Fatalf("update fulfilment: %v", err)
	}

	got, _ := store.GetByID(ctx, "o-1")
	if got.Status != OrderStatusShipped || got.Carrier != "Royal Mail" || got.TrackingNumber != "RM123" {
		t.Fatalf("fulfilment not applied: %+v", got)
	}
	if got.DispatchedAt == nil || !got.DispatchedAt.Equal(dispatched) {
		t.Fatalf("dispatched_at not applied: %v", got.DispatchedAt)
	}
}
