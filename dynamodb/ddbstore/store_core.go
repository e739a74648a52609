package ddbstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/acksell/objectctx/dynamodb/ddbiface"
	"github.com/acksell/objectctx/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// DynamoDB remembers transaction client request tokens for ten minutes.
const idempotencyWindow = 10 * time.Minute

// Store is a DynamoDB-compatible store backed by BadgerDB.
// It implements the subset of the DynamoDB API described by
// ddbiface.AWSDynamoClientV2 with ACID guarantees per call.
type Store struct {
	db *badger.DB

	mu     sync.RWMutex
	tables map[string]*tableSchema

	tokensMu sync.Mutex
	tokens   map[string]time.Time
	now      func() time.Time
}

var _ ddbiface.AWSDynamoClientV2 = (*Store)(nil)

type tableSchema struct {
	definition table.TableDefinition
	keys       *KeyEncoder
}

func newTableSchema(def table.TableDefinition) *tableSchema {
	return &tableSchema{
		definition: def,
		keys:       NewKeyEncoder(def.Name, def.KeyDefinitions),
	}
}

func (t *tableSchema) encodeKey(pk table.PrimaryKey) ([]byte, error) {
	return t.keys.EncodeKey(pk)
}

// StoreOptions configures the BadgerDB store.
type StoreOptions struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger for BadgerDB. If nil, logging is disabled.
	Logger badger.Logger
}

// New creates a new BadgerDB-backed DynamoDB store.
func New(opts StoreOptions, defs ...table.TableDefinition) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)

	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		tables: make(map[string]*tableSchema),
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
	for _, def := range defs {
		if err := s.AddTable(def); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// AddTable registers a table definition. Tables cannot be redefined.
func (s *Store) AddTable(def table.TableDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if def.KeyDefinitions.PartitionKey.Name == "" {
		return fmt.Errorf("table %q: partition key is required", def.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[def.Name]; ok {
		return fmt.Errorf("table %q already defined", def.Name)
	}
	s.tables[def.Name] = newTableSchema(def)
	return nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getTable(tableName *string) (*tableSchema, error) {
	if tableName == nil {
		return nil, fmt.Errorf("table name is required")
	}
	s.mu.RLock()
	schema, ok := s.tables[*tableName]
	s.mu.RUnlock()
	if !ok {
		return nil, &types.ResourceNotFoundException{
			Message: ptrStr(fmt.Sprintf("Requested resource not found: Table: %s not found", *tableName)),
		}
	}
	return schema, nil
}

// readItem returns nil without error when the key does not exist.
func readItem(txn *badger.Txn, key []byte) (map[string]types.AttributeValue, error) {
	badgerItem, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item map[string]types.AttributeValue
	err = badgerItem.Value(func(val []byte) error {
		item, err = DeserializeItem(val)
		return err
	})
	return item, err
}

// seenToken reports whether the token was used within the idempotency window.
func (s *Store) seenToken(token *string) bool {
	if token == nil || *token == "" {
		return false
	}
	s.tokensMu.Lock()
	defer s.tokensMu.Unlock()
	usedAt, ok := s.tokens[*token]
	return ok && s.now().Sub(usedAt) < idempotencyWindow
}

func (s *Store) rememberToken(token *string) {
	if token == nil || *token == "" {
		return
	}
	s.tokensMu.Lock()
	defer s.tokensMu.Unlock()
	now := s.now()
	for t, usedAt := range s.tokens {
		if now.Sub(usedAt) >= idempotencyWindow {
			delete(s.tokens, t)
		}
	}
	s.tokens[*token] = now
}
