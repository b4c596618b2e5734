package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/aws"
)

// Publisher enqueues notifications for the worker to deliver.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// SQSPublisher sends notifications to an SQS queue.
type SQSPublisher struct {
	client   aws.SQSAPI
	queueURL string
}

// NewSQSPublisher returns a Publisher bound to a queue URL.
func NewSQSPublisher(client aws.SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish marshals the notification and sends it with type and order number
// as message attributes so consumers can filter without parsing the body.
func (p *SQSPublisher) Publish(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	bodyStr := string(body)

	attrs := map[string]sqstypes.MessageAttributeValue{
		"type":         stringAttr(n.Type),
		"order_number": stringAttr(n.OrderNumber),
	}
	if n.CorrelationID != "" {
		attrs["correlation_id"] = stringAttr(n.CorrelationID)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          &p.queueURL,
		MessageBody:       &bodyStr,
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	dataType := "String"
	return sqstypes.MessageAttributeValue{
		DataType:    &dataType,
		StringValue: &v,
	}
}

// LogPublisher logs notifications instead of queueing them. Used when no
// queue is configured (local development).
type LogPublisher struct {
	Logger *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, n Notification) error {
	p.Logger.Info("notification (queue not configured)",
		zap.String("type", n.Type),
		zap.String("order_number", n.OrderNumber),
		zap.String("email", n.Email),
	)
	return nil
}
