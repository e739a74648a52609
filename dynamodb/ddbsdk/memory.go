package ddbsdk

import (
	"github.com/acksell/objectctx/dynamodb/ddbstore"
	"github.com/acksell/objectctx/dynamodb/table"
)

// NewMemoryClient returns a client backed by an in-memory badger store.
// Intended for tests; it panics if the store cannot be opened.
func NewMemoryClient(defs ...table.TableDefinition) IO {
	store, err := ddbstore.New(ddbstore.StoreOptions{InMemory: true}, defs...)
	if err != nil {
		panic(err)
	}
	return New(store)
}
