package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-ceremony/store"
)

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	_, err := s.Get(ctx, "ceremonies/c1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "ceremonies/c1", map[string]any{"state": "OPENED", "penalty": int64(5)}, false))

	doc, err := s.Get(ctx, "ceremonies/c1")
	require.NoError(t, err)
	assert.Equal(t, "OPENED", doc.Fields["state"])
	assert.EqualValues(t, 5, doc.Fields["penalty"])
}

func TestStore_Set_MergePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "p", map[string]any{"a": 1, "b": 2}, false))
	require.NoError(t, s.Set(ctx, "p", map[string]any{"b": 3}, true))

	doc, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.EqualValues(t, 1, doc.Fields["a"])
	assert.EqualValues(t, 3, doc.Fields["b"])
}

func TestStore_Set_OverwriteWithoutMergeDropsFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "p", map[string]any{"a": 1, "b": 2}, false))
	require.NoError(t, s.Set(ctx, "p", map[string]any{"b": 3}, false))

	doc, err := s.Get(ctx, "p")
	require.NoError(t, err)
	_, hasA := doc.Fields["a"]
	assert.False(t, hasA)
	assert.EqualValues(t, 3, doc.Fields["b"])
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "ceremonies/c1/circuits/x1", map[string]any{"lastUpdated": int64(10)}, false))
	require.NoError(t, s.Set(ctx, "ceremonies/c1/circuits/x2", map[string]any{"lastUpdated": int64(20)}, false))
	require.NoError(t, s.Set(ctx, "ceremonies/c2/circuits/y1", map[string]any{"lastUpdated": int64(30)}, false))

	docs, err := s.Query(ctx, "ceremonies/c1/circuits")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = s.Query(ctx, "ceremonies/c1/circuits", store.Filter{Field: "lastUpdated", Op: store.OpGreaterOrEqual, Value: 15})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ceremonies/c1/circuits/x2", docs[0].Path)
}

func TestBatch_Create_FailsIfExists(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "p", map[string]any{}, false))

	b := s.Batch()
	b.Create("p", map[string]any{})
	err := b.Commit(ctx)
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)
}

func TestBatch_SetIfUnchanged(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "p", map[string]any{"lastUpdated": int64(100)}, false))

	b := s.Batch()
	b.SetIfUnchanged("p", map[string]any{"status": "TIMEDOUT", "lastUpdated": int64(200)}, 100)
	require.NoError(t, b.Commit(ctx))

	doc, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "TIMEDOUT", doc.Fields["status"])

	// stale precondition now fails, and leaves the document untouched.
	b2 := s.Batch()
	b2.SetIfUnchanged("p", map[string]any{"status": "EXHUMED"}, 100)
	err = b2.Commit(ctx)
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)

	doc, err = s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "TIMEDOUT", doc.Fields["status"])
}

func TestBatch_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "existing", map[string]any{}, false))

	b := s.Batch()
	b.Set("fresh", map[string]any{"x": 1}, false)
	b.Create("existing", map[string]any{}) // will fail the precondition check
	err := b.Commit(ctx)
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)

	_, err = s.Get(ctx, "fresh")
	assert.ErrorIs(t, err, store.ErrNotFound, "no write in a failed batch should apply")
}
