package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/objectctx/dynamodb/table"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type getter struct {
	awsddb AWSDynamoClientV2

	opts getOpts
}

var _ Getter = &getter{}

func NewGetter(ddb AWSDynamoClientV2, opts ...GetOption) *getter {
	g := &getter{
		awsddb: ddb,
	}
	for _, opt := range opts {
		opt(&g.opts)
	}
	return g
}

// GetItemRequest identifies an item to retrieve.
type GetItemRequest struct {
	Table table.TableDefinition
	Key   table.PrimaryKey
}

// GetItem retrieves a single item from DynamoDB using GetItem.
// A missing item is returned as nil without error.
func (g *getter) GetItem(ctx context.Context, item GetItemRequest) (Item, error) {
	key, err := item.Key.DDB()
	if err != nil {
		return nil, fmt.Errorf("primary key: %w", err)
	}
	res, err := g.awsddb.GetItem(ctx, &dynamodbv2.GetItemInput{
		TableName:      &item.Table.Name,
		Key:            key,
		ConsistentRead: ptr(!g.opts.eventuallyConsistent),
	})
	if err != nil {
		return nil, fmt.Errorf("get item failed: %w", err)
	}

	if res.Item == nil {
		return nil, nil
	}

	return res.Item, nil
}

// GetOption configures the getter behavior.
type GetOption func(*getOpts)

type getOpts struct {
	eventuallyConsistent bool
}

// WithEventualConsistency enables eventually consistent reads for lookups.
// By default, reads are strongly consistent.
func WithEventualConsistency() GetOption {
	return func(o *getOpts) {
		o.eventuallyConsistent = true
	}
}

func ptr[T any](v T) *T {
	return &v
}
