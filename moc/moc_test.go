package moc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/acksell/objectctx/dynamodb/ddbiface"
	"github.com/acksell/objectctx/dynamodb/ddbsdk"
	"github.com/acksell/objectctx/dynamodb/ddbstore"
	"github.com/acksell/objectctx/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/require"
)

type city struct {
	ID    int64  `dynamodbav:"id"`
	Title string `dynamodbav:"title"`
}

func (c *city) EntityName() string { return "City" }
func (c *city) GetID() int64       { return c.ID }
func (c *city) SetID(id int64)     { c.ID = id }

// town shares its entity name with city.
type town struct {
	ID int64 `dynamodbav:"id"`
}

func (t *town) EntityName() string { return "City" }
func (t *town) GetID() int64       { return t.ID }
func (t *town) SetID(id int64)     { t.ID = id }

type country struct {
	ID   int64  `dynamodbav:"id"`
	Name string `dynamodbav:"name"`
}

func (c *country) EntityName() string { return "Country" }
func (c *country) GetID() int64       { return c.ID }
func (c *country) SetID(id int64)     { c.ID = id }

func (c *country) IsValid() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func testModel() *Model {
	return NewModel("test-").Register(&city{}, &country{})
}

func newTestStore(t *testing.T, model *Model) *ddbstore.Store {
	store, err := ddbstore.New(ddbstore.StoreOptions{InMemory: true}, model.Tables()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func newTestContext(t *testing.T, opts ...Option) (*Context, ddbsdk.IO) {
	model := testModel()
	io := ddbsdk.New(newTestStore(t, model))
	return New(io, model, opts...), io
}

// storeCity writes a city directly, bypassing any context.
func storeCity(t *testing.T, io ddbsdk.IO, id int64, title string) {
	t.Helper()
	def, err := testModel().Table("City")
	require.NoError(t, err)
	err = io.PutItem(context.Background(), ddbsdk.NewUnsafePut(def, table.NumberKey(def.KeyDefinitions, id), &city{ID: id, Title: title}))
	require.NoError(t, err)
}

// loadCity reads a city directly, bypassing any context.
func loadCity(t *testing.T, io ddbsdk.IO, id int64) *city {
	t.Helper()
	c := New(io, testModel())
	found, err := lookupByID[city](context.Background(), c, "City", id)
	require.NoError(t, err)
	return found
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Errorf(string, ...interface{}) {}
func (l *recordingLogger) Warningf(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Infof(string, ...interface{})  {}
func (l *recordingLogger) Debugf(string, ...interface{}) {}

// failingDynamo fails every call it overrides. Other calls panic.
type failingDynamo struct {
	ddbiface.AWSDynamoClientV2
	err error
}

func (f failingDynamo) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return nil, f.err
}

func (f failingDynamo) Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return nil, f.err
}

func (f failingDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return nil, f.err
}

func (f failingDynamo) TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	return nil, f.err
}

// readRecorder records the ConsistentRead flag of every read.
type readRecorder struct {
	ddbiface.AWSDynamoClientV2
	consistent []bool
}

func (r *readRecorder) GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	r.consistent = append(r.consistent, in.ConsistentRead != nil && *in.ConsistentRead)
	return r.AWSDynamoClientV2.GetItem(ctx, in, opts...)
}

func (r *readRecorder) Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	r.consistent = append(r.consistent, in.ConsistentRead != nil && *in.ConsistentRead)
	return r.AWSDynamoClientV2.Scan(ctx, in, opts...)
}
