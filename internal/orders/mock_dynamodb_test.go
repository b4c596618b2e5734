package orders

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"context"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a minimal in-memory stand-in for the orders table, keyed by
// order_id. Supports the condition and update expressions the Store uses.
type mockDynamo struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue

	putCalls    int
	updateCalls int
	queryCalls  int
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

func (m *mockDynamo) PutItem(_ context.Context, params *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	key := stringValue(params.Item, "order_id")
	if key == "" {
		return nil, errors.New("missing order_id")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
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

	key := stringValue(params.Key, "order_id")
	item, ok := m.table[key]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, params *dyn.UpdateItemInput, _ ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	key := stringValue(params.Key, "order_id")
	item, ok := m.table[key]

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

	// Apply "SET a = :x, b = :y" expressions literally.
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
	m.table[key] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(_ context.Context, params *dyn.QueryInput, _ ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++

	var attr string
	var want string
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
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		sort.Slice(items, func(i, j int) bool {
			return stringValue(items[i], "created_at") > stringValue(items[j], "created_at")
		})
	}
	if params.Limit != nil && len(items) > int(*params.Limit) {
		items = items[:int(*params.Limit)]
	}
	return &dyn.QueryOutput{Items: items}, nil
}
