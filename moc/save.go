package moc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/acksell/objectctx/dynamodb/ddbsdk"
	"github.com/acksell/objectctx/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type writeKind int

const (
	writeCreate writeKind = iota
	writeUpdate
	writeDelete
)

type pendingWrite struct {
	kind writeKind
	o    *object
	item map[string]types.AttributeValue
}

// Save writes all pending changes in one transaction: inserted entities are
// created, modified ones are overwritten and deleted ones removed. Deletes
// only succeed while the item is still stored. The transaction carries a
// fresh idempotency token, which is also the correlation id of the resulting
// SaveEvent.
//
// Entities implementing ddbsdk.DynamoEntity are validated first.
// On failure nothing in the context changes, except when more than 100 writes
// are split over several transactions and a later one fails: the writes that
// were stored are then recorded as saved, so fixing the failing entity and
// calling Save again writes only the rest. Observers are only notified of
// saves that complete.
func (c *Context) Save(ctx context.Context) error {
	if c == nil {
		return ErrInvalidContext
	}
	if c.io == nil {
		return fmt.Errorf("%w: no store", ErrInvalidContext)
	}

	insertedKeys := make(map[ObjectKey]bool)
	deletedKeys := make(map[ObjectKey]bool)
	c.objects.ascend(func(o *object) bool {
		switch o.state {
		case stateInserted:
			insertedKeys[o.key] = true
		case stateDeleted:
			deletedKeys[o.key] = true
		}
		return true
	})

	var (
		creates, updates, deletes []pendingWrite
		// deleted objects whose item an insert of the same id overwrites
		replaced = make(map[ObjectKey][]*object)
		err      error
	)
	c.objects.ascend(func(o *object) bool {
		if o.state == stateDeleted {
			if insertedKeys[o.key] {
				replaced[o.key] = append(replaced[o.key], o)
			} else {
				deletes = append(deletes, pendingWrite{kind: writeDelete, o: o})
			}
			return true
		}
		if id := o.entity.GetID(); id != o.key.ID {
			err = fmt.Errorf("moc: id of registered %s changed from %d to %d", o.key.Name, o.key.ID, id)
			return false
		}
		if v, ok := o.entity.(ddbsdk.DynamoEntity); ok {
			if verr := v.IsValid(); verr != nil {
				err = fmt.Errorf("moc: invalid %s %d: %w", o.key.Name, o.key.ID, verr)
				return false
			}
		}
		item, merr := attributevalue.MarshalMap(o.entity)
		if merr != nil {
			err = fmt.Errorf("moc: marshal %s %d: %w", o.key.Name, o.key.ID, merr)
			return false
		}
		switch {
		case o.state == stateInserted:
			creates = append(creates, pendingWrite{kind: writeCreate, o: o, item: item})
		case !reflect.DeepEqual(item, o.snapshot):
			updates = append(updates, pendingWrite{kind: writeUpdate, o: o, item: item})
		}
		return true
	})
	if err != nil {
		return err
	}
	// the transaction keeps this order, which PartialCommitError counts in
	writes := slices.Concat(creates, updates, deletes)
	if len(writes) == 0 {
		return nil
	}

	token := uuid.NewString()
	tx := c.io.NewTx(ddbsdk.WithIdempotencyToken(token))
	for _, w := range writes {
		def, key, err := c.keyOf(w.o)
		if err != nil {
			return err
		}
		switch {
		case w.kind == writeDelete:
			tx.AddAction(ddbsdk.NewDelete(def, key).WithCondition(
				expression.AttributeExists(expression.Name(def.KeyDefinitions.PartitionKey.Name))))
		case w.kind == writeCreate && !deletedKeys[w.o.key]:
			tx.AddAction(ddbsdk.NewCreate(def, key, w.item))
		default:
			tx.AddAction(ddbsdk.NewUnsafePut(def, key, w.item))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		var partial *ddbsdk.PartialCommitError
		if errors.As(err, &partial) {
			event := c.applySaved(writes[:partial.Committed], replaced, token)
			c.log.Warningf("moc: save stored %d of %d writes (%d inserted, %d updated, %d deleted) before failing (token %s)",
				partial.Committed, len(writes), len(event.Inserted), len(event.Updated), len(event.Deleted), token)
		}
		return fmt.Errorf("moc: save: %w", err)
	}

	event := c.applySaved(writes, replaced, token)
	c.log.Infof("moc: saved %d inserted, %d updated, %d deleted (token %s)",
		len(event.Inserted), len(event.Updated), len(event.Deleted), token)

	for _, fn := range c.observers {
		fn(event)
	}
	return nil
}

// applySaved moves the objects of stored writes to their saved state.
func (c *Context) applySaved(writes []pendingWrite, replaced map[ObjectKey][]*object, token string) SaveEvent {
	event := SaveEvent{
		Meta: EventMeta{Type: SaveEventType, CorrelationID: token},
	}
	for _, w := range writes {
		switch w.kind {
		case writeCreate:
			w.o.state = stateFetched
			w.o.snapshot = w.item
			for _, o := range replaced[w.o.key] {
				c.objects.remove(o)
			}
			delete(replaced, w.o.key)
			event.Inserted = append(event.Inserted, w.o.key)
		case writeUpdate:
			w.o.snapshot = w.item
			event.Updated = append(event.Updated, w.o.key)
		case writeDelete:
			c.objects.remove(w.o)
			event.Deleted = append(event.Deleted, w.o.key)
		}
	}
	return event
}

func (c *Context) keyOf(o *object) (table.TableDefinition, table.PrimaryKey, error) {
	def, err := c.model.Table(o.key.Name)
	if err != nil {
		return table.TableDefinition{}, table.PrimaryKey{}, err
	}
	return def, table.NumberKey(def.KeyDefinitions, o.key.ID), nil
}
