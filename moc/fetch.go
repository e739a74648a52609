package moc

import (
	"context"
	"fmt"
	"slices"
	"strconv"
)

// FetchRequest selects entities in Fetch. The zero value selects all
// entities of the kind in registration order.
type FetchRequest[PT any] struct {
	Predicate func(PT) bool
	// Less sorts the result; ties keep registration order.
	Less func(a, b PT) bool
	// Limit caps the number of results when positive.
	Limit int
}

// Fetch returns the entities of type T visible in the context: the stored
// ones merged with the registered ones. Registered instances take precedence
// over their stored state, entities pending deletion are left out and pending
// inserts are included. Stored entities seen for the first time are
// registered, so later lookups return the same instances.
func Fetch[T any, PT EntityPtr[T]](ctx context.Context, c *Context, req FetchRequest[PT]) ([]PT, error) {
	if c == nil {
		return nil, ErrInvalidContext
	}
	if c.io == nil {
		return nil, fmt.Errorf("%w: no store", ErrInvalidContext)
	}
	name := PT(new(T)).EntityName()
	def, err := c.model.Table(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
	}

	res, err := c.io.NewScan(def, c.scanOptions()...).ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", ErrPersistenceLookupFailed, name, err)
	}
	for _, item := range res.Items {
		pk, err := def.ExtractPrimaryKey(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
		}
		id, err := strconv.ParseInt(fmt.Sprint(pk.Values.PartitionKey), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s id %v: %w", ErrPersistenceLookupFailed, name, pk.Values.PartitionKey, err)
		}
		if len(c.objects.lookup(ObjectKey{Name: name, ID: id})) > 0 {
			continue
		}
		e, err := materialize[T, PT](item, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
		}
		if _, err := c.register(e, item); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceLookupFailed, err)
		}
	}

	var (
		out      []PT
		mismatch error
	)
	c.objects.ascend(func(o *object) bool {
		if o.state == stateDeleted || o.key.Name != name {
			return true
		}
		e, ok := o.entity.(PT)
		if !ok {
			mismatch = fmt.Errorf("%w: %s %d is registered as %T, not %T", ErrPersistenceLookupFailed, name, o.key.ID, o.entity, PT(nil))
			return false
		}
		if req.Predicate == nil || req.Predicate(e) {
			out = append(out, e)
		}
		return true
	})
	if mismatch != nil {
		return nil, mismatch
	}

	if req.Less != nil {
		slices.SortStableFunc(out, func(a, b PT) int {
			switch {
			case req.Less(a, b):
				return -1
			case req.Less(b, a):
				return 1
			}
			return 0
		})
	}
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}
