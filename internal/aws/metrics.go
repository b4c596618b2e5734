package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const metricNamespace = "Orderflow"

// Metrics emits operational counters to CloudWatch. Reconciliation problems
// never surface through the webhook's HTTP response, so these counters are
// the only way stuck reconciliations become visible.
type Metrics struct {
	client CloudWatchAPI
}

// NewMetrics returns a Metrics bound to a CloudWatch client. A nil client
// disables emission.
func NewMetrics(client CloudWatchAPI) *Metrics {
	return &Metrics{client: client}
}

// Count emits a single count datum with one dimension.
func (m *Metrics) Count(ctx context.Context, name, dimension, value string) error {
	if m == nil || m.client == nil {
		return nil
	}
	datum := cwtypes.MetricDatum{
		MetricName: awsString(name),
		Unit:       cwtypes.StandardUnitCount,
		Value:      awsFloat(1),
		Timestamp:  awsTime(time.Now().UTC()),
	}
	if dimension != "" {
		datum.Dimensions = []cwtypes.Dimension{
			{Name: awsString(dimension), Value: awsString(value)},
		}
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  awsString(metricNamespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// ReconciliationFailure counts a webhook that passed authenticity but could
// not be fully applied.
func (m *Metrics) ReconciliationFailure(ctx context.Context, reason string) error {
	return m.Count(ctx, "WebhookReconciliationFailure", "Reason", reason)
}

// UnknownEventType counts a gateway event type the status table does not know.
func (m *Metrics) UnknownEventType(ctx context.Context, eventType string) error {
	return m.Count(ctx, "WebhookUnknownEventType", "EventType", eventType)
}

func awsString(s string) *string     { return &s }
func awsFloat(f float64) *float64    { return &f }
func awsTime(t time.Time) *time.Time { return &t }
