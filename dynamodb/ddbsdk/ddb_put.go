package ddbsdk

import (
	"bytes"
	"fmt"
	"maps"

	"github.com/acksell/objectctx/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func newPut(t table.TableDefinition, key table.PrimaryKey, e any) *Put {
	return &Put{
		Table:  t,
		Key:    key,
		Entity: e,
	}
}

// NewUnsafePut overwrites whatever is stored under the key.
func NewUnsafePut(t table.TableDefinition, key table.PrimaryKey, e any) *Put {
	return newPut(t, key, e)
}

// NewCreate writes the item only if no item with the same key exists.
func NewCreate(t table.TableDefinition, key table.PrimaryKey, e any) *Put {
	return newPut(t, key, e).WithCondition(
		expression2.AttributeNotExists(expression2.Name(t.KeyDefinitions.PartitionKey.Name)))
}

func (p *Put) TableName() *string {
	return &p.Table.Name
}

func (p *Put) PrimaryKey() table.PrimaryKey {
	return p.Key
}

// WithCondition adds a condition expression (AND with any existing one).
func (p *Put) WithCondition(c expression2.ConditionBuilder) *Put {
	if p.c.IsSet() {
		p.c = p.c.And(c)
		return p
	}
	p.c = c
	return p
}

func (p *Put) Build() (expression2.Expression, map[string]types.AttributeValue, error) {
	if v, ok := p.Entity.(DynamoEntity); ok {
		if err := v.IsValid(); err != nil {
			return expression2.Expression{}, nil, fmt.Errorf("invalid entity: %w", err)
		}
	}
	entity, err := p.marshalEntity()
	if err != nil {
		return expression2.Expression{}, nil, err
	}
	keyAttrs, err := p.Key.DDB()
	if err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("primary key: %w", err)
	}
	for k, v := range keyAttrs {
		if val, exists := entity[k]; exists && !sameKeyValue(val, v) {
			return expression2.Expression{}, nil, fmt.Errorf("primary key attribute %q already exists in entity with a different value, got %v vs %v", k, val, v)
		}
		entity[k] = v
	}
	if !p.c.IsSet() {
		return expression2.Expression{}, entity, nil
	}
	exp, err := expression2.NewBuilder().WithCondition(p.c).Build()
	if err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("build: %w", err)
	}
	return exp, entity, nil
}

// marshalEntity never returns the caller's map so key attributes can be added.
func (p *Put) marshalEntity() (map[string]types.AttributeValue, error) {
	if item, ok := p.Entity.(Item); ok {
		return maps.Clone(item), nil
	}
	entity, err := attributevalue.MarshalMap(p.Entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity to dynamodb map: %w", err)
	}
	return entity, nil
}

func (p *Put) ToPutItem() (*dynamodbv2.PutItemInput, error) {
	e, entity, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build put: %w", err)
	}
	return &dynamodbv2.PutItemInput{
		TableName:                 p.TableName(),
		Item:                      entity,
		ConditionExpression:       e.Condition(),
		ExpressionAttributeValues: e.Values(),
		ExpressionAttributeNames:  e.Names(),
	}, nil
}

func (p *Put) ToTransactWriteItem() (types.TransactWriteItem, error) {
	e, entity, err := p.Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to build put: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                 p.TableName(),
			Item:                      entity,
			ConditionExpression:       e.Condition(),
			ExpressionAttributeValues: e.Values(),
			ExpressionAttributeNames:  e.Names(),
		},
	}, nil
}

func sameKeyValue(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberB:
		bv, ok := b.(*types.AttributeValueMemberB)
		return ok && bytes.Equal(av.Value, bv.Value)
	}
	return false
}
