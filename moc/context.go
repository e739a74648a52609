package moc

import (
	"fmt"
	"reflect"

	"github.com/acksell/objectctx/dynamodb/ddbsdk"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Context is a unit of work over a DynamoDB compatible store. It registers
// the entities it inserts or fetches, keeps one instance per stored item and
// writes all pending changes in Save.
//
// A Context must not be used from several goroutines at once.
type Context struct {
	io     ddbsdk.IO
	model  *Model
	log    Logger
	strict bool
	// eventual lets lookups and fetches use eventually consistent reads.
	eventual bool

	objects   *registry
	observers []func(SaveEvent)
}

type Option func(*Context)

func WithLogger(l Logger) Option {
	return func(c *Context) {
		c.log = l
	}
}

// WithStrictMatching makes lookups fail with ErrAmbiguousMatch when several
// registered entities share the requested id. By default the first one
// registered is returned and a warning is logged.
func WithStrictMatching() Option {
	return func(c *Context) {
		c.strict = true
	}
}

// WithEventualConsistency reads entities missing from the context with
// eventually consistent reads. A lookup right after another writer's save
// may then miss the item.
func WithEventualConsistency() Option {
	return func(c *Context) {
		c.eventual = true
	}
}

func New(io ddbsdk.IO, model *Model, opts ...Option) *Context {
	if model == nil {
		model = NewModel("")
	}
	c := &Context{
		io:      io,
		model:   model,
		log:     NopLogger,
		objects: newRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Model() *Model {
	return c.model
}

// Insert registers e as a new object, created in the store on the next save.
// Entities sharing an id with registered ones are accepted; the save will
// then fail on the duplicate key. Inserting an already registered entity is a
// no-op, except that a pending deletion is cancelled.
func (c *Context) Insert(e Entity) error {
	if c == nil {
		return ErrInvalidContext
	}
	if err := checkEntity(e); err != nil {
		return err
	}
	if _, err := c.model.Table(e.EntityName()); err != nil {
		return err
	}
	if o, ok := c.objects.get(e); ok {
		if o.state == stateDeleted {
			o.state = stateFetched
		}
		return nil
	}
	c.objects.add(e, stateInserted, nil)
	c.log.Debugf("moc: inserted %s %d", e.EntityName(), e.GetID())
	return nil
}

// Delete marks a registered entity for deletion. A pending insert is simply forgotten.
func (c *Context) Delete(e Entity) error {
	if c == nil {
		return ErrInvalidContext
	}
	o, ok := c.objects.get(e)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotRegistered, e)
	}
	switch o.state {
	case stateInserted:
		c.objects.remove(o)
	case stateFetched:
		o.state = stateDeleted
	}
	return nil
}

// Count returns the number of registered entities that are not pending deletion.
func (c *Context) Count() int {
	n := 0
	c.objects.ascend(func(o *object) bool {
		if o.state != stateDeleted {
			n++
		}
		return true
	})
	return n
}

// CountOf is Count restricted to one entity name.
func (c *Context) CountOf(entityName string) int {
	n := 0
	c.objects.ascend(func(o *object) bool {
		if o.state != stateDeleted && o.key.Name == entityName {
			n++
		}
		return true
	})
	return n
}

// Registered returns the registered entities not pending deletion, in registration order.
func (c *Context) Registered() []Entity {
	entities := make([]Entity, 0, c.objects.len())
	c.objects.ascend(func(o *object) bool {
		if o.state != stateDeleted {
			entities = append(entities, o.entity)
		}
		return true
	})
	return entities
}

// HasChanges reports whether Save would write anything.
func (c *Context) HasChanges() bool {
	changed := false
	c.objects.ascend(func(o *object) bool {
		changed = o.state != stateFetched || c.isDirty(o)
		return !changed
	})
	return changed
}

// Rollback discards all unsaved changes: inserted entities are unregistered,
// deletions are cancelled and modified entities get their stored values back.
func (c *Context) Rollback() {
	var inserted []*object
	c.objects.ascend(func(o *object) bool {
		switch o.state {
		case stateInserted:
			inserted = append(inserted, o)
		case stateDeleted:
			o.state = stateFetched
			c.restore(o)
		case stateFetched:
			if c.isDirty(o) {
				c.restore(o)
			}
		}
		return true
	})
	for _, o := range inserted {
		c.objects.remove(o)
	}
}

// Reset unregisters every entity. Unsaved changes are lost.
func (c *Context) Reset() {
	c.objects = newRegistry()
}

// OnDidSave registers fn to be called after every successful save that wrote something.
func (c *Context) OnDidSave(fn func(SaveEvent)) {
	c.observers = append(c.observers, fn)
}

func (c *Context) isDirty(o *object) bool {
	item, err := attributevalue.MarshalMap(o.entity)
	if err != nil {
		return true
	}
	return !reflect.DeepEqual(item, o.snapshot)
}

func (c *Context) restore(o *object) {
	reflect.ValueOf(o.entity).Elem().SetZero()
	if err := attributevalue.UnmarshalMap(o.snapshot, o.entity); err != nil {
		c.log.Errorf("moc: restoring %s %d: %v", o.key.Name, o.key.ID, err)
	}
	o.entity.SetID(o.key.ID)
}

// register adds an entity read from the store.
func (c *Context) register(e Entity, item map[string]types.AttributeValue) (*object, error) {
	snapshot, err := attributevalue.MarshalMap(e)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s %d: %w", e.EntityName(), e.GetID(), err)
	}
	o := c.objects.add(e, stateFetched, snapshot)
	c.log.Debugf("moc: fetched %s %d (%d attributes)", e.EntityName(), e.GetID(), len(item))
	return o, nil
}
