package webhook

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo backs both the orders table and the processed-events table in
// reconciler tests. Items are keyed by order_id or event_id, whichever the
// item carries.
type mockDynamo struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{table: map[string]map[string]types.AttributeValue{}}
}

func stringValue(item map[string]types.AttributeValue, attr string) string {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func itemKey(item map[string]types.AttributeValue) string {
	if id := stringValue(item, "order_id"); id != "" {
		return "order:" + id
	}
	if id := stringValue(item, "event_id"); id != "" {
		return "event:" + id
	}
	return ""
}

func (m *mockDynamo) PutItem(_ context.Context, params *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey(params.Item)
	if key == "" {
		return nil, errors.New("item has no key attribute")
	}
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists(") {
		if _, exists := m.table[key]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.table[key] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(_ context.Context, params *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.table[itemKey(params.Key)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, params *dyn.UpdateItemInput, _ ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.table[itemKey(params.Key)]
	if params.ConditionExpression != nil {
		switch cond := *params.ConditionExpression; {
		case cond == "attribute_exists(order_id)":
			if !ok {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case cond == "transaction_reference = :ref":
			expected, _ := params.ExpressionAttributeValues[":ref"].(*types.AttributeValueMemberS)
			if !ok || expected == nil || stringValue(item, "transaction_reference") != expected.Value {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported condition: " + cond)
		}
	}
	if !ok {
		return nil, errors.New("item not found")
	}

	expr := strings.TrimPrefix(*params.UpdateExpression, "SET ")
	for _, clause := range strings.Split(expr, ",") {
		parts := strings.Split(strings.TrimSpace(clause), " = ")
		if len(parts) != 2 {
			return nil, errors.New("unsupported update clause: " + clause)
		}
		attr := parts[0]
		if resolved, ok := params.ExpressionAttributeNames[attr]; ok {
			attr = resolved
		}
		value, ok := params.ExpressionAttributeValues[parts[1]]
		if !ok {
			return nil, errors.New("missing value for " + parts[1])
		}
		item[attr] = value
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(_ context.Context, params *dyn.QueryInput, _ ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var attr, want string
	switch *params.KeyConditionExpression {
	case "#k = :v":
		attr = params.ExpressionAttributeNames["#k"]
		want = params.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberS).Value
	case "customer_id = :c":
		attr = "customer_id"
		want = params.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS).Value
	default:
		return nil, errors.New("unsupported key condition: " + *params.KeyConditionExpression)
	}

	var items []map[string]types.AttributeValue
	for _, item := range m.table {
		if stringValue(item, attr) == want {
			items = append(items, item)
		}
	}
	return &dyn.QueryOutput{Items: items}, nil
}
