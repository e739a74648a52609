package moc

import (
	"context"
	"fmt"

	"github.com/acksell/objectctx/dynamodb/ddbsdk"
	"github.com/acksell/objectctx/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// InitOrGetFirst returns the entity of type T with the given id. The context
// is searched first, then the store. When neither knows the id, a new entity
// with that id is inserted into the context and returned; it is written on
// the next Save.
//
// Any id is accepted. If several registered entities have the id, the first
// registered one is returned, or ErrAmbiguousMatch in strict mode.
func InitOrGetFirst[T any, PT EntityPtr[T]](ctx context.Context, id int64, c *Context) (PT, error) {
	if c == nil {
		return nil, ErrInvalidContext
	}
	e := PT(new(T))
	name := e.EntityName()

	found, err := lookupByID[T, PT](ctx, c, name, id)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}

	e.SetID(id)
	if err := c.Insert(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the entity of type T with the given id from the context or the
// store, or nil when neither has it or it is pending deletion. Unlike
// InitOrGetFirst it never inserts; a stored entity it reads is registered.
func Get[T any, PT EntityPtr[T]](ctx context.Context, id int64, c *Context) (PT, error) {
	if c == nil {
		return nil, ErrInvalidContext
	}
	return lookupByID[T, PT](ctx, c, PT(new(T)).EntityName(), id)
}

// lookupByID returns nil without error when the id is unknown or pending deletion.
func lookupByID[T any, PT EntityPtr[T]](ctx context.Context, c *Context, name string, id int64) (PT, error) {
	var (
		matches []PT
		deleted bool
	)
	for _, o := range c.objects.lookup(ObjectKey{Name: name, ID: id}) {
		if o.state == stateDeleted {
			deleted = true
			continue
		}
		e, ok := o.entity.(PT)
		if !ok {
			return nil, fmt.Errorf("%w: %s %d is registered as %T, not %T", ErrPersistenceLookupFailed, name, id, o.entity, PT(nil))
		}
		matches = append(matches, e)
	}

	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) > 1:
		if c.strict {
			return nil, fmt.Errorf("%w: %d %s entities with id %d", ErrAmbiguousMatch, len(matches), name, id)
		}
		c.log.Warningf("moc: %d %s entities with id %d registered, using the first", len(matches), name, id)
		return matches[0], nil
	case deleted:
		return nil, nil
	}
	return fetchByID[T, PT](ctx, c, name, id)
}

func fetchByID[T any, PT EntityPtr[T]](ctx context.Context, c *Context, name string, id int64) (PT, error) {
	if c.io == nil {
		return nil, fmt.Errorf("%w: no store", ErrInvalidContext)
	}
	def, err := c.model.Table(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
	}
	item, err := c.io.NewLookup(c.getOptions()...).GetItem(ctx, ddbsdk.GetItemRequest{
		Table: def,
		Key:   table.NumberKey(def.KeyDefinitions, id),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s %d: %w", ErrPersistenceLookupFailed, name, id, err)
	}
	if item == nil {
		return nil, nil
	}
	e, err := materialize[T, PT](item, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
	}
	if _, err := c.register(e, item); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
	}
	return e, nil
}

func materialize[T any, PT EntityPtr[T]](item map[string]types.AttributeValue, id int64) (PT, error) {
	e := PT(new(T))
	if err := attributevalue.UnmarshalMap(item, e); err != nil {
		return nil, fmt.Errorf("unmarshal %s %d: %w", e.EntityName(), id, err)
	}
	e.SetID(id)
	return e, nil
}

func (c *Context) getOptions() []ddbsdk.GetOption {
	if c.eventual {
		return []ddbsdk.GetOption{ddbsdk.WithEventualConsistency()}
	}
	return nil
}

func (c *Context) scanOptions() []ddbsdk.ScanOption {
	if c.eventual {
		return []ddbsdk.ScanOption{ddbsdk.WithEventuallyConsistentReads()}
	}
	return nil
}
