package ddbstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

const maxTransactItems = 100

// transactWrite is one resolved item of a TransactWriteItems call.
type transactWrite struct {
	key       []byte
	condition *string
	names     map[string]string
	put       map[string]types.AttributeValue // nil for deletes and condition checks
	delete    bool                            // neither put nor delete: condition check
}

// TransactWriteItems performs multiple write operations atomically.
// Supports Put, Delete and ConditionCheck. A repeated ClientRequestToken
// within ten minutes is acknowledged without writing again.
func (s *Store) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if len(params.TransactItems) == 0 {
		return nil, fmt.Errorf("transact items is required")
	}
	if len(params.TransactItems) > maxTransactItems {
		return nil, fmt.Errorf("transact write items limited to %d items, got %d", maxTransactItems, len(params.TransactItems))
	}
	if s.seenToken(params.ClientRequestToken) {
		return &dynamodb.TransactWriteItemsOutput{}, nil
	}

	writes := make([]transactWrite, 0, len(params.TransactItems))
	seen := make(map[string]int, len(params.TransactItems))
	for i, item := range params.TransactItems {
		w, err := s.resolveTransactItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if prev, dup := seen[string(w.key)]; dup {
			return nil, fmt.Errorf("items %d and %d target the same key: transactions cannot include multiple operations on one item", prev, i)
		}
		seen[string(w.key)] = i
		writes = append(writes, w)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		reasons := make([]types.CancellationReason, len(writes))
		failed := false
		for i, w := range writes {
			existing, err := readItem(txn, w.key)
			if err != nil {
				return err
			}
			valid, err := evalCondition(w.condition, w.names, existing)
			if err != nil {
				return fmt.Errorf("item %d: evaluate condition: %w", i, err)
			}
			reasons[i] = types.CancellationReason{Code: ptrStr("None")}
			if !valid {
				failed = true
				reasons[i] = types.CancellationReason{
					Code:    ptrStr("ConditionalCheckFailed"),
					Message: ptrStr("The conditional request failed"),
				}
			}
		}
		if failed {
			return &types.TransactionCanceledException{
				Message:             ptrStr("Transaction cancelled, please refer cancellation reasons for specific reasons"),
				CancellationReasons: reasons,
			}
		}

		for _, w := range writes {
			switch {
			case w.put != nil:
				itemBytes, err := SerializeItem(w.put)
				if err != nil {
					return fmt.Errorf("serialize item: %w", err)
				}
				if err := txn.Set(w.key, itemBytes); err != nil {
					return err
				}
			case w.delete:
				if err := txn.Delete(w.key); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rememberToken(params.ClientRequestToken)
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (s *Store) resolveTransactItem(item types.TransactWriteItem) (transactWrite, error) {
	switch {
	case item.Put != nil:
		tabl, err := s.getTable(item.Put.TableName)
		if err != nil {
			return transactWrite{}, err
		}
		pk, err := tabl.definition.ExtractPrimaryKey(item.Put.Item)
		if err != nil {
			return transactWrite{}, fmt.Errorf("extract primary key: %w", err)
		}
		key, err := tabl.encodeKey(pk)
		if err != nil {
			return transactWrite{}, fmt.Errorf("encode key: %w", err)
		}
		return transactWrite{
			key:       key,
			condition: item.Put.ConditionExpression,
			names:     item.Put.ExpressionAttributeNames,
			put:       item.Put.Item,
		}, nil

	case item.Delete != nil:
		tabl, err := s.getTable(item.Delete.TableName)
		if err != nil {
			return transactWrite{}, err
		}
		pk, err := tabl.definition.ExtractPrimaryKey(item.Delete.Key)
		if err != nil {
			return transactWrite{}, fmt.Errorf("extract primary key: %w", err)
		}
		key, err := tabl.encodeKey(pk)
		if err != nil {
			return transactWrite{}, fmt.Errorf("encode key: %w", err)
		}
		return transactWrite{
			key:       key,
			condition: item.Delete.ConditionExpression,
			names:     item.Delete.ExpressionAttributeNames,
			delete:    true,
		}, nil

	case item.ConditionCheck != nil:
		tabl, err := s.getTable(item.ConditionCheck.TableName)
		if err != nil {
			return transactWrite{}, err
		}
		pk, err := tabl.definition.ExtractPrimaryKey(item.ConditionCheck.Key)
		if err != nil {
			return transactWrite{}, fmt.Errorf("extract primary key: %w", err)
		}
		key, err := tabl.encodeKey(pk)
		if err != nil {
			return transactWrite{}, fmt.Errorf("encode key: %w", err)
		}
		return transactWrite{
			key:       key,
			condition: item.ConditionCheck.ConditionExpression,
			names:     item.ConditionCheck.ExpressionAttributeNames,
		}, nil

	case item.Update != nil:
		return transactWrite{}, fmt.Errorf("update expressions are not supported")

	default:
		return transactWrite{}, fmt.Errorf("transact item has no operation")
	}
}
