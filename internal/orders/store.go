package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/carafecoffee/orderflow/internal/aws"
)

// Secondary index names on the orders table.
const (
	indexOrderNumber = "order_number-index"
	indexTransaction = "transaction_reference-index"
	indexCustomer    = "customer_id-created_at-index"
)

var (
	// ErrDuplicateOrder indicates a put collided with an existing order id.
	ErrDuplicateOrder = errors.New("order id already exists")
	// ErrReferenceMismatch indicates a payment outcome was rejected because
	// the order's stored transaction reference no longer matches. Stale
	// webhooks from abandoned payment attempts land here.
	ErrReferenceMismatch = errors.New("transaction reference mismatch")
)

// PaymentOutcome is the set of fields a reconciled webhook writes onto an order.
type PaymentOutcome struct {
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus

	// Best-effort enrichment from the gateway detail fetch; empty fields are
	// left untouched.
	AuthorizationCode string
	SchemeReference   string
	PaymentMethod     string
	CardLast4         string
}

// Store persists orders in DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates an orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new order. Fails with ErrDuplicateOrder if the order id
// is already taken.
func (s *Store) Create(ctx context.Context, order *Order) error {
	now := s.nowFunc().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// GetByID fetches an order by its internal id. Returns (nil, nil) if not found.
func (s *Store) GetByID(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var order Order
	if err := attributevalue.UnmarshalMap(out.Item, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &order, nil
}

// GetByOrderNumber fetches an order by its human-readable number via the
// order-number index. Returns (nil, nil) if not found.
func (s *Store) GetByOrderNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.queryOne(ctx, indexOrderNumber, "order_number", orderNumber)
}

// GetByTransactionReference locates the order a webhook belongs to.
// Returns (nil, nil) if no order carries the reference.
func (s *Store) GetByTransactionReference(ctx context.Context, reference string) (*Order, error) {
	return s.queryOne(ctx, indexTransaction, "transaction_reference", reference)
}

func (s *Store) queryOne(ctx context.Context, index, attr, value string) (*Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              &index,
		KeyConditionExpression: awsString("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var order Order
	if err := attributevalue.UnmarshalMap(out.Items[0], &order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &order, nil
}

// ListByCustomer returns a customer's orders, newest first.
func (s *Store) ListByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(indexCustomer),
		KeyConditionExpression: awsString("customer_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: customerID},
		},
		ScanIndexForward: awsBool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query customer orders: %w", err)
	}
	result := make([]*Order, 0, len(out.Items))
	for _, item := range out.Items {
		var order Order
		if err := attributevalue.UnmarshalMap(item, &order); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		result = append(result, &order)
	}
	return result, nil
}

// SetPaymentInitiated stores the transaction reference and moves the payment
// status to "initiated". Runs before the gateway call so a lost response can
// still be reconciled by the webhook alone.
func (s *Store) SetPaymentInitiated(ctx context.Context, orderID, reference string) error {
	now := s.nowFunc().UTC()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression: awsString("SET transaction_reference = :ref, payment_status = :ps, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: reference},
			":ps":  &types.AttributeValueMemberS{Value: string(PaymentStatusInitiated)},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
	})
	if err != nil {
		return fmt.Errorf("set payment initiated: %w", err)
	}
	return nil
}

// ApplyPaymentOutcome writes a reconciled webhook result onto the order. The
// conditional expression only applies the update when the stored transaction
// reference still matches, so a stale "failed" webhook from an abandoned
// attempt cannot overwrite a later result.
func (s *Store) ApplyPaymentOutcome(ctx context.Context, orderID, expectedReference string, outcome PaymentOutcome) error {
	now := s.nowFunc().UTC()

	expr := "SET payment_status = :ps, #s = :os, updated_at = :ua"
	names := map[string]string{"#s": "status"}
	values := map[string]types.AttributeValue{
		":ps":  &types.AttributeValueMemberS{Value: string(outcome.PaymentStatus)},
		":os":  &types.AttributeValueMemberS{Value: string(outcome.OrderStatus)},
		":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		":ref": &types.AttributeValueMemberS{Value: expectedReference},
	}
	if outcome.AuthorizationCode != "" {
		expr += ", authorization_code = :ac"
		values[":ac"] = &types.AttributeValueMemberS{Value: outcome.AuthorizationCode}
	}
	if outcome.SchemeReference != "" {
		expr += ", scheme_reference = :sr"
		values[":sr"] = &types.AttributeValueMemberS{Value: outcome.SchemeReference}
	}
	if outcome.PaymentMethod != "" {
		expr += ", payment_method = :pm"
		values[":pm"] = &types.AttributeValueMemberS{Value: outcome.PaymentMethod}
	}
	if outcome.CardLast4 != "" {
		expr += ", card_last4 = :c4"
		values[":c4"] = &types.AttributeValueMemberS{Value: outcome.CardLast4}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          &expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("transaction_reference = :ref"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrReferenceMismatch
		}
		return fmt.Errorf("apply payment outcome: %w", err)
	}
	return nil
}

// FulfilmentUpdate is the set of fields a back-office status change writes.
type FulfilmentUpdate struct {
	Status         OrderStatus
	Carrier        string
	TrackingNumber string
	DispatchedAt   *time.Time
	DeliveredAt    *time.Time
}

// UpdateFulfilment writes a fulfilment status change. Validation of the
// tracking requirements happens in the service layer.
func (s *Store) UpdateFulfilment(ctx context.Context, orderID string, update FulfilmentUpdate) error {
	now := s.nowFunc().UTC()

	expr := "SET #s = :os, updated_at = :ua"
	names := map[string]string{"#s": "status"}
	values := map[string]types.AttributeValue{
		":os": &types.AttributeValueMemberS{Value: string(update.Status)},
		":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
	}
	if update.Carrier != "" {
		expr += ", carrier = :ca"
		values[":ca"] = &types.AttributeValueMemberS{Value: update.Carrier}
	}
	if update.TrackingNumber != "" {
		expr += ", tracking_number = :tn"
		values[":tn"] = &types.AttributeValueMemberS{Value: update.TrackingNumber}
	}
	if update.DispatchedAt != nil {
		expr += ", dispatched_at = :da"
		values[":da"] = &types.AttributeValueMemberS{Value: update.DispatchedAt.UTC().Format(time.RFC3339)}
	}
	if update.DeliveredAt != nil {
		expr += ", delivered_at = :dl"
		values[":dl"] = &types.AttributeValueMemberS{Value: update.DeliveredAt.UTC().Format(time.RFC3339)}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          &expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("attribute_exists(order_id)"),
	})
	if err != nil {
		return fmt.Errorf("update fulfilment: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsInt32(i int32) *int32    { return &i }
func awsBool(b bool) *bool       { return &b }
