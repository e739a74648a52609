package ddbsdk

import (
	"context"

	"github.com/acksell/objectctx/dynamodb/ddbiface"
	"github.com/acksell/objectctx/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type AWSDynamoClientV2 = ddbiface.AWSDynamoClientV2

type IO interface {
	Writer
	Reader
}

type Writer interface {
	NewTx(...TxOption) Txer

	PutItem(context.Context, *Put) error
	DeleteItem(context.Context, *Delete) error
}

type Reader interface {
	NewLookup(...GetOption) Getter
	NewScan(table.TableDefinition, ...ScanOption) Scanner
}

// Txer collects write actions and commits them together.
// Errors from AddAction are also returned by Commit.
type Txer interface {
	AddAction(Action) error
	Commit(context.Context) error
}

// ConsistentReads are enabled by default.
// To use EventuallyConsistent reads, add the WithEventualConsistency option.
type Getter interface {
	// GetItem retrieves a single item, or nil if it does not exist.
	GetItem(context.Context, GetItemRequest) (Item, error)
}

// Scanner pages through every item of a table in key order.
type Scanner interface {
	Next(context.Context) (*ScanResult, error)
	ScanAll(context.Context) (*ScanResult, error)
}

// Item represents a raw DynamoDB item as returned from Get operations.
// Callers should use attributevalue.UnmarshalMap to convert to their struct.
type Item = map[string]types.AttributeValue
