package moc

import (
	"context"
	"errors"
	"testing"

	"github.com/acksell/objectctx/dynamodb/ddbsdk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOrGetFirst_CreatesWhenAbsent(t *testing.T) {
	c, _ := newTestContext(t)

	got, err := InitOrGetFirst[city](context.Background(), 42, c)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, []Entity{got}, c.Registered())
	assert.True(t, c.HasChanges())
}

func TestInitOrGetFirst_ReturnsRegistered(t *testing.T) {
	c, _ := newTestContext(t)
	existing := &city{ID: 7, Title: "Tula"}
	require.NoError(t, c.Insert(existing))

	got, err := InitOrGetFirst[city](context.Background(), 7, c)
	require.NoError(t, err)
	assert.Same(t, existing, got)
	assert.Equal(t, "Tula", got.Title)
	assert.Equal(t, 1, c.Count())
}

func TestInitOrGetFirst_Idempotent(t *testing.T) {
	c, _ := newTestContext(t)
	ctx := context.Background()

	first, err := InitOrGetFirst[city](ctx, 5, c)
	require.NoError(t, err)
	second, err := InitOrGetFirst[city](ctx, 5, c)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Count())
}

func TestInitOrGetFirst_AnyID(t *testing.T) {
	c, _ := newTestContext(t)

	for _, id := range []int64{0, -1, 1 << 62} {
		got, err := InitOrGetFirst[city](context.Background(), id, c)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	}
	assert.Equal(t, 3, c.Count())
}

func TestInitOrGetFirst_KindsAreSeparate(t *testing.T) {
	c, _ := newTestContext(t)
	ctx := context.Background()

	ci, err := InitOrGetFirst[city](ctx, 1, c)
	require.NoError(t, err)
	co, err := InitOrGetFirst[country](ctx, 1, c)
	require.NoError(t, err)

	assert.Equal(t, int64(1), ci.ID)
	assert.Equal(t, int64(1), co.ID)
	assert.Equal(t, 1, c.CountOf("City"))
	assert.Equal(t, 1, c.CountOf("Country"))
}

func TestInitOrGetFirst_NilContext(t *testing.T) {
	got, err := InitOrGetFirst[city](context.Background(), 1, nil)
	require.ErrorIs(t, err, ErrInvalidContext)
	assert.Nil(t, got)
}

func TestInitOrGetFirst_NoStore(t *testing.T) {
	c := New(nil, testModel())

	_, err := InitOrGetFirst[city](context.Background(), 1, c)
	require.ErrorIs(t, err, ErrInvalidContext)
	assert.Equal(t, 0, c.Count())
}

func TestInitOrGetFirst_LoadsStored(t *testing.T) {
	c, io := newTestContext(t)
	ctx := context.Background()
	storeCity(t, io, 9, "Ryazan")

	got, err := InitOrGetFirst[city](ctx, 9, c)
	require.NoError(t, err)
	assert.Equal(t, &city{ID: 9, Title: "Ryazan"}, got)
	assert.Equal(t, 1, c.Count())
	assert.False(t, c.HasChanges(), "a loaded entity is not a pending insert")

	again, err := InitOrGetFirst[city](ctx, 9, c)
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestInitOrGetFirst_AmbiguousMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("default returns first registered", func(t *testing.T) {
		logger := &recordingLogger{}
		c, _ := newTestContext(t, WithLogger(logger))
		first := &city{ID: 3, Title: "first"}
		require.NoError(t, c.Insert(first))
		require.NoError(t, c.Insert(&city{ID: 3, Title: "second"}))

		got, err := InitOrGetFirst[city](ctx, 3, c)
		require.NoError(t, err)
		assert.Same(t, first, got)
		assert.Equal(t, 2, c.Count())
		require.Len(t, logger.warnings, 1)
		assert.Contains(t, logger.warnings[0], "2 City entities with id 3")
	})

	t.Run("strict", func(t *testing.T) {
		c, _ := newTestContext(t, WithStrictMatching())
		require.NoError(t, c.Insert(&city{ID: 3}))
		require.NoError(t, c.Insert(&city{ID: 3}))

		got, err := InitOrGetFirst[city](ctx, 3, c)
		require.ErrorIs(t, err, ErrAmbiguousMatch)
		assert.Nil(t, got)
		assert.Equal(t, 2, c.Count())
	})
}

func TestInitOrGetFirst_LookupFailure(t *testing.T) {
	cause := errors.New("connection reset")
	c := New(ddbsdk.New(failingDynamo{err: cause}), testModel())

	got, err := InitOrGetFirst[city](context.Background(), 1, c)
	require.ErrorIs(t, err, ErrPersistenceLookupFailed)
	require.ErrorIs(t, err, cause)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Count(), "nothing is inserted when the lookup fails")
}

func TestInitOrGetFirst_UnknownEntity(t *testing.T) {
	model := NewModel("test-").Register(&country{})
	c := New(ddbsdk.New(newTestStore(t, model)), model)

	_, err := InitOrGetFirst[city](context.Background(), 1, c)
	require.ErrorIs(t, err, ErrPersistenceLookupFailed)
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestInitOrGetFirst_TypeMismatch(t *testing.T) {
	c, _ := newTestContext(t)
	require.NoError(t, c.Insert(&city{ID: 1}))

	_, err := InitOrGetFirst[town](context.Background(), 1, c)
	require.ErrorIs(t, err, ErrPersistenceLookupFailed)
}

func TestInitOrGetFirst_PendingDeleteHidesStored(t *testing.T) {
	c, io := newTestContext(t)
	ctx := context.Background()
	storeCity(t, io, 9, "Ryazan")

	old, err := InitOrGetFirst[city](ctx, 9, c)
	require.NoError(t, err)
	require.NoError(t, c.Delete(old))

	fresh, err := InitOrGetFirst[city](ctx, 9, c)
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, &city{ID: 9}, fresh)

	fresh.Title = "Ryazan-2"
	require.NoError(t, c.Save(ctx))
	assert.Equal(t, &city{ID: 9, Title: "Ryazan-2"}, loadCity(t, io, 9))
	assert.Equal(t, []Entity{fresh}, c.Registered())
}

func TestGet(t *testing.T) {
	c, io := newTestContext(t)
	ctx := context.Background()
	storeCity(t, io, 5, "Kaluga")

	missing, err := Get[city](ctx, 6, c)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 0, c.Count())
	assert.False(t, c.HasChanges())

	stored, err := Get[city](ctx, 5, c)
	require.NoError(t, err)
	assert.Equal(t, &city{ID: 5, Title: "Kaluga"}, stored)
	assert.False(t, c.HasChanges())

	same, err := InitOrGetFirst[city](ctx, 5, c)
	require.NoError(t, err)
	assert.Same(t, stored, same)

	require.NoError(t, c.Delete(stored))
	deleted, err := Get[city](ctx, 5, c)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	var nilCtx *Context
	_, err = Get[city](ctx, 5, nilCtx)
	require.ErrorIs(t, err, ErrInvalidContext)
}

func TestContext_EventualConsistency(t *testing.T) {
	ctx := context.Background()
	model := testModel()

	for _, eventual := range []bool{false, true} {
		rec := &readRecorder{AWSDynamoClientV2: newTestStore(t, model)}
		var opts []Option
		if eventual {
			opts = append(opts, WithEventualConsistency())
		}
		c := New(ddbsdk.New(rec), model, opts...)

		_, err := Get[city](ctx, 1, c)
		require.NoError(t, err)
		_, err = Fetch[city](ctx, c, FetchRequest[*city]{})
		require.NoError(t, err)

		require.Len(t, rec.consistent, 2)
		for _, consistent := range rec.consistent {
			assert.Equal(t, !eventual, consistent)
		}
	}
}
