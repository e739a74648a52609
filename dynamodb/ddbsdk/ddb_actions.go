package ddbsdk

import (
	"github.com/acksell/objectctx/dynamodb/table"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Action interface {
	TableName() *string
	PrimaryKey() table.PrimaryKey
	ToTransactWriteItem() (types.TransactWriteItem, error)
}

var (
	_ Action = &Put{}
	_ Action = &Delete{}
)

// Put writes a whole item. Entity is either an Item or a struct that
// attributevalue.MarshalMap understands.
type Put struct {
	Table  table.TableDefinition
	Key    table.PrimaryKey
	Entity any

	c expression2.ConditionBuilder
}

type Delete struct {
	Table table.TableDefinition
	Key   table.PrimaryKey

	c expression2.ConditionBuilder
}
