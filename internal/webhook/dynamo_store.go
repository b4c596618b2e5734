package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"

	"github.com/carafecoffee/orderflow/internal/aws"
)

// processedEvent is the shape persisted in the processed-events table.
type processedEvent struct {
	EventID     string    `dynamodbav:"event_id"` // PK
	ProcessedAt time.Time `dynamodbav:"processed_at"`
	ExpiresAt   int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}

// DynamoStore records processed events in DynamoDB. The conditional put
// makes the claim atomic across instances; TTL reaps old entries.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewDynamoStore returns a configured DynamoStore.
// ttlWindow bounds how long event ids are remembered (e.g. 48*time.Hour);
// the gateway does not retry beyond that.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func (s *DynamoStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	now := s.nowFunc()
	rec := processedEvent{
		EventID:     eventID,
		ProcessedAt: now,
		ExpiresAt:   now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal event record: %w", err)
	}

	cond := "attribute_not_exists(event_id)"
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: &cond,
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put event record: %w", err)
	}
	return true, nil
}
