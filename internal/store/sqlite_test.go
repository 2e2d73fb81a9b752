package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragworks.io/askbridge/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureIndex(context.Background(), 3))
	return s
}

func TestUpsertOverwritesSameID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, core.VectorRecord{ID: "X", Values: []float32{1, 0, 0}, Text: "first"}))
	require.NoError(t, s.Upsert(ctx, core.VectorRecord{ID: "X", Values: []float32{1, 0, 0}, Text: "second"}))

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "second", matches[0].Text)
}

func TestQueryRanksByCosineSimilarity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, core.VectorRecord{ID: "far", Values: []float32{0, 1, 0}, Text: "orthogonal"}))
	require.NoError(t, s.Upsert(ctx, core.VectorRecord{ID: "near", Values: []float32{0.9, 0.1, 0}, Text: "close"}))
	require.NoError(t, s.Upsert(ctx, core.VectorRecord{ID: "exact", Values: []float32{1, 0, 0}, Text: "identical"}))

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 0.001)
	assert.Equal(t, "near", matches[1].ID)
}

func TestQueryEmptyStore(t *testing.T) {
	s := newTestStore(t)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	s := newTestStore(t)

	err := s.Upsert(context.Background(), core.VectorRecord{ID: "X", Values: []float32{1, 0}, Text: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}
