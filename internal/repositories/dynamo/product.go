package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

// DefaultTableName is the table used when none is configured
const DefaultTableName = "product-inventory"

// updateNamePlaceholder stands in for the updated attribute while the update
// expression is built
const updateNamePlaceholder = "updateKey"

// Client is the subset of the DynamoDB API the repository uses.
// *dynamodb.Client satisfies it; tests substitute a fake.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// ProductRepository implements repositories.ProductRepository on a DynamoDB table
// keyed by the string attribute productId.
type ProductRepository struct {
	client    Client
	tableName string
	logger    *logrus.Logger
}

// NewProductRepository creates a DynamoDB backed product repository
func NewProductRepository(client Client, tableName string, logger *logrus.Logger) *ProductRepository {
	if tableName == "" {
		tableName = DefaultTableName
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &ProductRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// TableName returns the name of the backing table
func (r *ProductRepository) TableName() string {
	return r.tableName
}

// Get implements repositories.ProductRepository.Get
func (r *ProductRepository) Get(ctx context.Context, productID string) (models.Product, error) {
	if productID == "" {
		return nil, repositories.NewRepositoryError("get", repositories.EntityProduct, productID, repositories.ErrInvalidID)
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       keyOf(productID),
	})
	if err != nil {
		return nil, r.classify("get", productID, err)
	}

	if len(out.Item) == 0 {
		return nil, repositories.NotFoundError("get", repositories.EntityProduct, productID)
	}

	item, err := decodeItem(out.Item)
	if err != nil {
		return nil, repositories.NewRepositoryError("get", repositories.EntityProduct, productID, err)
	}

	return item, nil
}

// ScanPage implements repositories.ProductRepository.ScanPage
func (r *ProductRepository) ScanPage(ctx context.Context, startKey string) (*repositories.Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}
	if startKey != "" {
		input.ExclusiveStartKey = keyOf(startKey)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, r.classify("scan", startKey, err)
	}

	page := &repositories.Page{Items: make([]models.Product, 0, len(out.Items))}
	for _, raw := range out.Items {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, repositories.NewRepositoryError("scan", repositories.EntityProduct, startKey, err)
		}
		page.Items = append(page.Items, item)
	}

	if len(out.LastEvaluatedKey) > 0 {
		next, err := keyFrom(out.LastEvaluatedKey)
		if err != nil {
			return nil, repositories.NewRepositoryError("scan", repositories.EntityProduct, startKey, err)
		}
		page.LastEvaluatedKey = next
	}

	r.logger.WithFields(logrus.Fields{
		"table":     r.tableName,
		"start_key": startKey,
		"count":     len(page.Items),
		"has_more":  page.HasMore(),
	}).Debug("Scanned product page")

	return page, nil
}

// Put implements repositories.ProductRepository.Put
func (r *ProductRepository) Put(ctx context.Context, item models.Product) error {
	id := item.ID()
	if id == "" {
		return repositories.NewRepositoryError("put", repositories.EntityProduct, id, repositories.ErrInvalidID)
	}

	av, err := attributevalue.MarshalMap(map[string]interface{}(models.NormalizeProduct(item)))
	if err != nil {
		return repositories.NewRepositoryError("put", repositories.EntityProduct, id,
			fmt.Errorf("%w: %w", repositories.ErrSerialization, err))
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return r.classify("put", id, err)
	}

	return nil
}

// UpdateAttribute implements repositories.ProductRepository.UpdateAttribute.
// The write is conditional on the item existing so a missing key is reported
// as not found instead of silently creating a partial item.
func (r *ProductRepository) UpdateAttribute(ctx context.Context, productID, key string, value interface{}) (models.Product, error) {
	if productID == "" {
		return nil, repositories.NewRepositoryError("update", repositories.EntityProduct, productID, repositories.ErrInvalidID)
	}

	// The builder parses dots and brackets as document paths. The attribute is
	// built under a placeholder and its alias then bound to the literal key.
	update := expression.Set(expression.NameNoDotSplit(updateNamePlaceholder), expression.Value(models.NormalizeValue(value)))
	cond := expression.AttributeExists(expression.Name(models.KeyAttribute))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, repositories.NewRepositoryError("update", repositories.EntityProduct, productID,
			fmt.Errorf("%w: failed to build update expression: %w", repositories.ErrSerialization, err))
	}

	names := make(map[string]string, len(expr.Names()))
	for alias, name := range expr.Names() {
		if name == updateNamePlaceholder {
			name = key
		}
		names[alias] = name
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       keyOf(productID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return nil, repositories.NotFoundError("update", repositories.EntityProduct, productID)
		}
		return nil, r.classify("update", productID, err)
	}

	updated, err := decodeItem(out.Attributes)
	if err != nil {
		return nil, repositories.NewRepositoryError("update", repositories.EntityProduct, productID, err)
	}

	return updated, nil
}

// Delete implements repositories.ProductRepository.Delete
func (r *ProductRepository) Delete(ctx context.Context, productID string) (models.Product, error) {
	if productID == "" {
		return nil, repositories.NewRepositoryError("delete", repositories.EntityProduct, productID, repositories.ErrInvalidID)
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          keyOf(productID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, r.classify("delete", productID, err)
	}

	if len(out.Attributes) == 0 {
		return nil, nil
	}

	prior, err := decodeItem(out.Attributes)
	if err != nil {
		return nil, repositories.NewRepositoryError("delete", repositories.EntityProduct, productID, err)
	}

	return prior, nil
}

// Ping implements repositories.ProductRepository.Ping
func (r *ProductRepository) Ping(ctx context.Context) error {
	out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return r.classify("ping", "", err)
	}

	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive {
		r.logger.WithFields(logrus.Fields{
			"table":  r.tableName,
			"status": out.Table.TableStatus,
		}).Warn("Product table is not active")
	}

	return nil
}

// Close implements repositories.ProductRepository.Close
func (r *ProductRepository) Close() error {
	return nil
}

// classify maps SDK errors onto repository sentinels
func (r *ProductRepository) classify(op, id string, err error) error {
	var sentinel error
	code := ""

	var apiErr smithy.APIError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		sentinel = repositories.ErrConnection
	case errors.As(err, &apiErr):
		code = apiErr.ErrorCode()
		switch code {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			sentinel = repositories.ErrThrottled
		default:
			sentinel = repositories.ErrRejected
		}
	default:
		sentinel = repositories.ErrConnection
	}

	r.logger.WithFields(logrus.Fields{
		"table":      r.tableName,
		"operation":  op,
		"product_id": id,
		"error_code": code,
	}).WithError(err).Debug("DynamoDB request failed")

	return repositories.NewRepositoryError(op, repositories.EntityProduct, id, fmt.Errorf("%w: %w", sentinel, err))
}

func keyOf(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.KeyAttribute: &types.AttributeValueMemberS{Value: productID},
	}
}

func keyFrom(key map[string]types.AttributeValue) (string, error) {
	s, ok := key[models.KeyAttribute].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("%w: continuation key has no string %s", repositories.ErrSerialization, models.KeyAttribute)
	}
	return s.Value, nil
}

func decodeItem(av map[string]types.AttributeValue) (models.Product, error) {
	item := map[string]interface{}{}
	err := attributevalue.UnmarshalMapWithOptions(av, &item, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repositories.ErrSerialization, err)
	}
	return models.NormalizeProduct(models.Product(item)), nil
}
