package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/example/items-service/internal/aws"
)

// ErrNotFound is returned when no item exists for the requested id.
var ErrNotFound = errors.New("item not found")

const tableWaitTimeout = 2 * time.Minute

// Store encapsulates operations on the items table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newID     func() string
}

// NewStore creates a new items Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// List returns every item in the table. The slice is never nil so an
// empty table serializes as [].
func (s *Store) List(ctx context.Context) ([]Item, error) {
	items := make([]Item, 0)
	paginator := dyn.NewScanPaginator(s.client, &dyn.ScanInput{
		TableName: &s.tableName,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan items: %w", err)
		}
		var batch []Item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		items = append(items, batch...)
	}
	return items, nil
}

// Get fetches an item by id. Ids that cannot possibly match a stored
// item (anything that is not a UUID) report ErrNotFound without a
// round trip.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       itemKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var it Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &it, nil
}

// Create persists a new item, assigning its id and creation time.
func (s *Store) Create(ctx context.Context, fields ItemFields) (*Item, error) {
	it := Item{
		ID:          s.newID(),
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		CreatedAt:   s.nowFunc().UTC(),
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: awsString("attribute_not_exists(item_id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("put item: %w", err)
	}
	return &it, nil
}

// Replace overwrites the caller-writable fields of an existing item and
// returns the stored result. The id and creation time are preserved.
// Returns ErrNotFound when the item does not exist.
func (s *Store) Replace(ctx context.Context, id string, fields ItemFields) (*Item, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	// "name" is a DynamoDB reserved word, so every attribute goes
	// through an expression name placeholder.
	exprVals, err := attributevalue.MarshalMap(map[string]interface{}{
		":n": fields.Name,
		":d": fields.Description,
		":p": fields.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal update values: %w", err)
	}
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       itemKey(id),
		UpdateExpression:          awsString("SET #n = :n, #d = :d, #p = :p"),
		ExpressionAttributeNames:  map[string]string{"#n": "name", "#d": "description", "#p": "price"},
		ExpressionAttributeValues: exprVals,
		ConditionExpression:       awsString("attribute_exists(item_id)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	var it Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &it, nil
}

// Delete removes an item by id. Returns ErrNotFound when the item does
// not exist, so a repeated delete reports the miss instead of silently
// succeeding.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 itemKey(id),
		ConditionExpression: awsString("attribute_exists(item_id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// EnsureTable creates the items table when it does not exist yet and
// waits until it is ready to serve requests. Safe to call on every
// startup; mainly useful against DynamoDB Local.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: &s.tableName})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if !errors.As(err, &nf) {
			return fmt.Errorf("describe table: %w", err)
		}
		if err := s.createTable(ctx); err != nil {
			return err
		}
	}

	waiter := dyn.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dyn.DescribeTableInput{TableName: &s.tableName}, tableWaitTimeout); err != nil {
		return fmt.Errorf("wait for table: %w", err)
	}
	return nil
}

func (s *Store) createTable(ctx context.Context) error {
	_, err := s.client.CreateTable(ctx, &dyn.CreateTableInput{
		TableName:   &s.tableName,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: awsString("item_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: awsString("item_id"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		// another instance may have created it between describe and create
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"item_id": &types.AttributeValueMemberS{Value: id},
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
