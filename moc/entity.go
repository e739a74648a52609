package moc

import (
	"fmt"
	"reflect"
)

// Entity is a persistable record identified by an integer id.
// Implementations must be pointers to structs that attributevalue can marshal.
type Entity interface {
	// EntityName names the kind of record; it selects the table.
	EntityName() string
	GetID() int64
	SetID(id int64)
}

// EntityPtr constrains the generic accessors to pointer types implementing Entity,
// so that a fresh instance can be allocated with new(T).
type EntityPtr[T any] interface {
	*T
	Entity
}

func checkEntity(e Entity) error {
	if e == nil {
		return fmt.Errorf("moc: entity is nil")
	}
	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("moc: entity must be a non-nil pointer to a struct, got %T", e)
	}
	return nil
}
