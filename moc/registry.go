package moc

import (
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/btree"
)

type objectState int

const (
	// stateInserted objects have never been saved.
	stateInserted objectState = iota
	// stateFetched objects mirror a stored item, possibly with unsaved modifications.
	stateFetched
	// stateDeleted objects are stored but will be deleted on save.
	stateDeleted
)

func (s objectState) String() string {
	switch s {
	case stateInserted:
		return "inserted"
	case stateFetched:
		return "fetched"
	case stateDeleted:
		return "deleted"
	}
	return "unknown"
}

type object struct {
	seq    uint64
	entity Entity
	state  objectState
	// id and name at registration. The id of a registered entity must not change.
	key ObjectKey
	// snapshot is the item as last read from or written to the store.
	snapshot map[string]types.AttributeValue
}

// registry holds the registered objects ordered by registration.
type registry struct {
	seq      uint64
	tree     *btree.BTreeG[*object]
	byKey    map[ObjectKey][]*object
	byEntity map[Entity]*object
}

func newRegistry() *registry {
	return &registry{
		tree: btree.NewG(16, func(a, b *object) bool {
			return a.seq < b.seq
		}),
		byKey:    make(map[ObjectKey][]*object),
		byEntity: make(map[Entity]*object),
	}
}

func (r *registry) add(e Entity, state objectState, snapshot map[string]types.AttributeValue) *object {
	r.seq++
	o := &object{
		seq:      r.seq,
		entity:   e,
		state:    state,
		key:      ObjectKey{Name: e.EntityName(), ID: e.GetID()},
		snapshot: snapshot,
	}
	r.tree.ReplaceOrInsert(o)
	r.byKey[o.key] = append(r.byKey[o.key], o)
	r.byEntity[e] = o
	return o
}

func (r *registry) remove(o *object) {
	r.tree.Delete(o)
	r.byKey[o.key] = slices.DeleteFunc(r.byKey[o.key], func(other *object) bool {
		return other == o
	})
	if len(r.byKey[o.key]) == 0 {
		delete(r.byKey, o.key)
	}
	delete(r.byEntity, o.entity)
}

func (r *registry) get(e Entity) (*object, bool) {
	o, ok := r.byEntity[e]
	return o, ok
}

// lookup returns all objects registered under key in registration order, deleted ones included.
func (r *registry) lookup(key ObjectKey) []*object {
	return r.byKey[key]
}

// ascend calls fn for every object in registration order until fn returns false.
func (r *registry) ascend(fn func(o *object) bool) {
	r.tree.Ascend(func(o *object) bool {
		return fn(o)
	})
}

func (r *registry) len() int {
	return r.tree.Len()
}
