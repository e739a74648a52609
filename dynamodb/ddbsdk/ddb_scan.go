package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/objectctx/dynamodb/table"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type scanner struct {
	awsddb AWSDynamoClientV2

	table table.TableDefinition

	//internal, not exposed to user
	lastCursor map[string]types.AttributeValue
	done       bool

	opts scanOptions
}

var _ Scanner = &scanner{}

type scanOptions struct {
	eventuallyConsistent bool
	pageSize             int32
}

const defaultPageSize = 100

// ScanOption configures a scanner.
type ScanOption func(*scanOptions)

// WithEventuallyConsistentReads trades read-after-write consistency for cheaper reads.
func WithEventuallyConsistentReads() ScanOption {
	return func(o *scanOptions) {
		o.eventuallyConsistent = true
	}
}

// WithScanPageSize sets how many items a single Scan request returns at most.
func WithScanPageSize(limit int) ScanOption {
	return func(o *scanOptions) {
		if limit > 0 {
			o.pageSize = int32(limit)
		}
	}
}

func NewScanner(ddb AWSDynamoClientV2, t table.TableDefinition, opts ...ScanOption) *scanner {
	s := &scanner{
		awsddb: ddb,
		table:  t,
		opts: scanOptions{
			pageSize: defaultPageSize,
		},
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

type ScanResult struct {
	Items  []Item
	IsDone bool
}

func (s *scanner) Next(ctx context.Context) (*ScanResult, error) {
	if s.done {
		return &ScanResult{IsDone: true}, nil
	}
	res, err := s.awsddb.Scan(ctx, &dynamodbv2.ScanInput{
		TableName:         &s.table.Name,
		ConsistentRead:    ptr(!s.opts.eventuallyConsistent),
		Limit:             ptr(s.opts.pageSize),
		ExclusiveStartKey: s.lastCursor,
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	s.lastCursor = res.LastEvaluatedKey
	s.done = res.LastEvaluatedKey == nil
	return &ScanResult{
		Items:  res.Items,
		IsDone: s.done,
	}, nil
}

func (s *scanner) ScanAll(ctx context.Context) (*ScanResult, error) {
	var allItems []Item
	for {
		res, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		allItems = append(allItems, res.Items...)
		if res.IsDone {
			break
		}
	}
	return &ScanResult{
		Items:  allItems,
		IsDone: true,
	}, nil
}
