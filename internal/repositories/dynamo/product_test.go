package dynamo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

// fakeClient is a minimal in-memory DynamoDB table keyed by productId
type fakeClient struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	pageSize   int
	scanStart  []string
	err        error
	lastTable  string
	lastUpdate *dynamodb.UpdateItemInput
}

func newFakeClient(pageSize int) *fakeClient {
	return &fakeClient{
		items:    make(map[string]map[string]types.AttributeValue),
		pageSize: pageSize,
	}
}

func keyValue(key map[string]types.AttributeValue) string {
	if s, ok := key["productId"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func copyItem(in map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (f *fakeClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTable = aws.ToString(params.TableName)
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[keyValue(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := keyValue(params.ExclusiveStartKey)
	f.scanStart = append(f.scanStart, start)
	if f.err != nil {
		return nil, f.err
	}

	var keys []string
	for k := range f.items {
		if start == "" || k > start {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &dynamodb.ScanOutput{}
	for i, k := range keys {
		if i >= f.pageSize {
			break
		}
		out.Items = append(out.Items, copyItem(f.items[k]))
	}
	if len(keys) > f.pageSize {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"productId": &types.AttributeValueMemberS{Value: keys[f.pageSize-1]},
		}
	}
	return out, nil
}

func (f *fakeClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[keyValue(params.Item)] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if params.ConditionExpression == nil {
		return nil, errors.New("update without condition expression")
	}
	if params.ReturnValues != types.ReturnValueUpdatedNew {
		return nil, fmt.Errorf("unexpected ReturnValues %q", params.ReturnValues)
	}
	f.lastUpdate = params

	id := keyValue(params.Key)
	item, ok := f.items[id]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}

	var attr string
	for _, name := range params.ExpressionAttributeNames {
		if name != "productId" {
			attr = name
		}
	}
	if len(params.ExpressionAttributeValues) != 1 {
		return nil, fmt.Errorf("expected one expression value, got %d", len(params.ExpressionAttributeValues))
	}
	var value types.AttributeValue
	for _, v := range params.ExpressionAttributeValues {
		value = v
	}

	item[attr] = value
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{attr: value}}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id := keyValue(params.Key)
	item, ok := f.items[id]
	if !ok {
		return &dynamodb.DeleteItemOutput{}, nil
	}
	delete(f.items, id)
	return &dynamodb.DeleteItemOutput{Attributes: item}, nil
}

func (f *fakeClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestProductRepository_RoundTrip(t *testing.T) {
	client := newFakeClient(10)
	repo := NewProductRepository(client, "", quietLogger())
	ctx := context.Background()

	item := models.Product{
		"productId": "1",
		"price":     10,
		"ratio":     0.5,
		"active":    true,
		"tags":      []interface{}{"a", "b"},
		"dims":      map[string]interface{}{"w": 2},
	}
	if err := repo.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := repo.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := models.Product{
		"productId": "1",
		"price":     int64(10),
		"ratio":     0.5,
		"active":    true,
		"tags":      []interface{}{"a", "b"},
		"dims":      map[string]interface{}{"w": int64(2)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %#v, want %#v", got, want)
	}

	if client.lastTable != DefaultTableName {
		t.Errorf("Expected default table %q, got %q", DefaultTableName, client.lastTable)
	}
}

func TestProductRepository_GetMissing(t *testing.T) {
	repo := NewProductRepository(newFakeClient(10), "products", quietLogger())

	_, err := repo.Get(context.Background(), "999")
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestProductRepository_ScanFollowsLastEvaluatedKey(t *testing.T) {
	client := newFakeClient(2)
	repo := NewProductRepository(client, "products", quietLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Put(ctx, models.Product{"productId": fmt.Sprintf("p%d", i)}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	var ids []string
	startKey := ""
	for {
		page, err := repo.ScanPage(ctx, startKey)
		if err != nil {
			t.Fatalf("ScanPage failed: %v", err)
		}
		for _, item := range page.Items {
			ids = append(ids, item.ID())
		}
		if !page.HasMore() {
			break
		}
		startKey = page.LastEvaluatedKey
	}

	if !reflect.DeepEqual(ids, []string{"p0", "p1", "p2", "p3", "p4"}) {
		t.Errorf("Unexpected scan result: %v", ids)
	}
	if !reflect.DeepEqual(client.scanStart, []string{"", "p1", "p3"}) {
		t.Errorf("Unexpected ExclusiveStartKey sequence: %v", client.scanStart)
	}
}

func TestProductRepository_ScanRejectsNonStringContinuationKey(t *testing.T) {
	_, err := keyFrom(map[string]types.AttributeValue{
		"productId": &types.AttributeValueMemberN{Value: "1"},
	})
	if !errors.Is(err, repositories.ErrSerialization) {
		t.Errorf("Expected serialization error, got %v", err)
	}
}

func TestProductRepository_UpdateAttribute(t *testing.T) {
	client := newFakeClient(10)
	repo := NewProductRepository(client, "products", quietLogger())
	ctx := context.Background()

	_ = repo.Put(ctx, models.Product{"productId": "1", "price": 10, "name": "widget"})

	updated, err := repo.UpdateAttribute(ctx, "1", "price", 20)
	if err != nil {
		t.Fatalf("UpdateAttribute failed: %v", err)
	}
	if !reflect.DeepEqual(updated, models.Product{"price": int64(20)}) {
		t.Errorf("Unexpected updated attributes: %#v", updated)
	}

	got, _ := repo.Get(ctx, "1")
	if got["price"] != int64(20) || got["name"] != "widget" {
		t.Errorf("Unexpected item after update: %#v", got)
	}
}

func TestProductRepository_UpdateAttributeKeepsKeyLiteral(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"dotted", "dimensions.width"},
		{"bracketed", "tags[0]"},
		{"plain", "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient(10)
			repo := NewProductRepository(client, "products", quietLogger())
			ctx := context.Background()

			_ = repo.Put(ctx, models.Product{"productId": "1"})

			updated, err := repo.UpdateAttribute(ctx, "1", tt.key, 5)
			if err != nil {
				t.Fatalf("UpdateAttribute failed: %v", err)
			}
			if !reflect.DeepEqual(updated, models.Product{tt.key: int64(5)}) {
				t.Errorf("Unexpected updated attributes: %#v", updated)
			}

			input := client.lastUpdate
			if len(input.ExpressionAttributeNames) != 2 {
				t.Fatalf("Expected key and productId names only, got %v", input.ExpressionAttributeNames)
			}
			var alias string
			for a, name := range input.ExpressionAttributeNames {
				if name == tt.key {
					alias = a
				}
			}
			if alias == "" {
				t.Fatalf("Key %q not kept as one attribute name: %v", tt.key, input.ExpressionAttributeNames)
			}
			expr := aws.ToString(input.UpdateExpression)
			if !strings.Contains(expr, alias+" = ") || strings.Count(expr, "#") != 1 {
				t.Errorf("UpdateExpression = %q, want a single SET on %s", expr, alias)
			}

			got, _ := repo.Get(ctx, "1")
			if got[tt.key] != int64(5) {
				t.Errorf("Expected top-level attribute %q, got %#v", tt.key, got)
			}
		})
	}
}

func TestProductRepository_UpdateMissingIsNotFound(t *testing.T) {
	client := newFakeClient(10)
	repo := NewProductRepository(client, "products", quietLogger())

	_, err := repo.UpdateAttribute(context.Background(), "missing", "price", 1)
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if len(client.items) != 0 {
		t.Errorf("Update of missing item must not create it")
	}
}

func TestProductRepository_Delete(t *testing.T) {
	client := newFakeClient(10)
	repo := NewProductRepository(client, "products", quietLogger())
	ctx := context.Background()

	_ = repo.Put(ctx, models.Product{"productId": "1", "price": 10})

	prior, err := repo.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !reflect.DeepEqual(prior, models.Product{"productId": "1", "price": int64(10)}) {
		t.Errorf("Unexpected prior item: %#v", prior)
	}

	prior, err = repo.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("Delete of missing item failed: %v", err)
	}
	if prior != nil {
		t.Errorf("Expected nil prior item, got %#v", prior)
	}
}

func TestProductRepository_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "throttled",
			err:      &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")},
			sentinel: repositories.ErrThrottled,
		},
		{
			name:     "missing table",
			err:      &types.ResourceNotFoundException{Message: aws.String("no table")},
			sentinel: repositories.ErrRejected,
		},
		{
			name:     "network",
			err:      errors.New("dial tcp: connection refused"),
			sentinel: repositories.ErrConnection,
		},
		{
			name:     "cancelled",
			err:      context.Canceled,
			sentinel: repositories.ErrConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient(10)
			client.err = tt.err
			repo := NewProductRepository(client, "products", quietLogger())

			_, err := repo.Get(context.Background(), "1")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected %v, got %v", tt.sentinel, err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Original error lost from chain: %v", err)
			}
			if repositories.IsNotFound(err) {
				t.Errorf("Store faults must not look like not found")
			}
		})
	}
}

func TestProductRepository_Ping(t *testing.T) {
	client := newFakeClient(10)
	repo := NewProductRepository(client, "products", quietLogger())

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	client.err = errors.New("unreachable")
	if err := repo.Ping(context.Background()); !repositories.IsConnection(err) {
		t.Errorf("Expected connection error, got %v", err)
	}
}

func TestProductRepository_InvalidKey(t *testing.T) {
	repo := NewProductRepository(newFakeClient(10), "products", quietLogger())
	ctx := context.Background()

	if err := repo.Put(ctx, models.Product{"price": 1}); !repositories.IsInvalidID(err) {
		t.Errorf("Put without key: expected invalid ID, got %v", err)
	}
	if _, err := repo.Delete(ctx, ""); !repositories.IsInvalidID(err) {
		t.Errorf("Delete without key: expected invalid ID, got %v", err)
	}
}
