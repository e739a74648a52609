package ddbsdk

import (
	"context"
	"errors"
	"fmt"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// maxTransactItems is the DynamoDB limit of items per TransactWriteItems call.
const maxTransactItems = 100

func NewTx(ddb AWSDynamoClientV2, opts ...TxOption) Txer {
	tx := &txer{
		awsddb: ddb,
		keys:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&tx.opts)
	}
	return tx
}

type txer struct {
	awsddb AWSDynamoClientV2

	opts txOpts

	// errors from AddAction can be returned when calling Commit().
	// This is to enable a nicer API where you don't have to check for errors after each AddAction call.
	errs []error
	// Only one action per item is allowed in a transaction.
	keys    map[string]struct{}
	actions []Action
}

var _ Txer = &txer{}

func (tx *txer) addError(err error) error {
	tx.errs = append(tx.errs, err)
	return err
}

// AddAction stages the action for the commit.
// Handling the error is optional, the call to Commit() will return these errors later.
func (tx *txer) AddAction(a Action) error {
	if a.TableName() == nil || *a.TableName() == "" {
		return tx.addError(fmt.Errorf("missing table name for action %T on pk %v", a, a.PrimaryKey()))
	}
	id := *a.TableName() + "/" + a.PrimaryKey().String()
	if _, found := tx.keys[id]; found {
		return tx.addError(fmt.Errorf("an action already exists in table %q for primary key %v", *a.TableName(), a.PrimaryKey()))
	}
	tx.keys[id] = struct{}{}
	tx.actions = append(tx.actions, a)
	return nil
}

// Commit writes all staged actions. Up to 100 actions are written atomically;
// larger transactions are split into several TransactWriteItems calls and are
// only atomic per call. When a later call fails, the error is a
// *PartialCommitError telling how many leading actions were written.
func (tx *txer) Commit(ctx context.Context) error {
	if len(tx.errs) > 0 {
		return fmt.Errorf("transaction has invalid actions: %w", errors.Join(tx.errs...))
	}
	switch len(tx.actions) {
	case 0:
		return nil
	case 1:
		// use operation directly instead of TransactWriteItems, to avoid transactional overhead
		return tx.commitSingle(ctx, tx.actions[0])
	}

	// convert everything before the first write so a bad action cannot strand earlier chunks
	txItems := make([]types.TransactWriteItem, 0, len(tx.actions))
	for _, action := range tx.actions {
		twi, err := action.ToTransactWriteItem()
		if err != nil {
			return fmt.Errorf("failed to convert action to transact write item: %w", err)
		}
		txItems = append(txItems, twi)
	}

	chunks := (len(txItems) + maxTransactItems - 1) / maxTransactItems
	for i := 0; i < chunks; i++ {
		start := i * maxTransactItems
		end := min(start+maxTransactItems, len(txItems))
		_, err := tx.awsddb.TransactWriteItems(ctx, &dynamodbv2.TransactWriteItemsInput{
			TransactItems:      txItems[start:end],
			ClientRequestToken: tx.opts.chunkToken(i, chunks),
		})
		if err == nil {
			continue
		}
		err = fmt.Errorf("failed to transact write items (chunk %d of %d): %w", i+1, chunks, err)
		if i > 0 {
			return &PartialCommitError{Committed: start, Err: err}
		}
		return err
	}
	return nil
}

// PartialCommitError is returned by Commit when some chunks of a large
// transaction were written before a later chunk failed. The first Committed
// actions, in the order they were added, are stored.
type PartialCommitError struct {
	Committed int
	Err       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit after %d actions: %v", e.Committed, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

func (tx *txer) commitSingle(ctx context.Context, action Action) error {
	switch a := action.(type) {
	case *Put:
		put, err := a.ToPutItem()
		if err != nil {
			return fmt.Errorf("failed to convert put to put item: %w", err)
		}
		if _, err := tx.awsddb.PutItem(ctx, put); err != nil {
			return fmt.Errorf("failed to put item: %w", err)
		}
	case *Delete:
		del, err := a.ToDeleteItem()
		if err != nil {
			return fmt.Errorf("failed to convert delete to delete item: %w", err)
		}
		if _, err := tx.awsddb.DeleteItem(ctx, del); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
	default:
		return fmt.Errorf("unknown operation type: %T", a)
	}
	return nil
}

type TxOption func(*txOpts)

type txOpts struct {
	idempotencyToken string
}

// chunkToken derives a stable token per chunk so a retried commit
// replays every chunk with the same token.
func (o txOpts) chunkToken(i, chunks int) *string {
	if o.idempotencyToken == "" {
		return nil
	}
	if chunks == 1 {
		return &o.idempotencyToken
	}
	token := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", o.idempotencyToken, i))).String()
	return &token
}

// IdempotencyTokens last for 10 minutes according to AWS documentation.
// If used after that, the request will be treated as new.
// Therefore, use with care.
// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_TransactWriteItems.html
func WithIdempotencyToken(token string) TxOption {
	return func(opts *txOpts) {
		opts.idempotencyToken = token
	}
}
