package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "notes.db")

	s, err := NewSQLiteStore(dbPath, testOptions())
	require.NoError(t, err)
	require.NoError(t, s.EnsureCollection(ctx))
	note := newTestNote("Cześć — hello")
	require.NoError(t, s.AddNote(ctx, note, []float32{0.5, 0.5, 0, 0}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(dbPath, testOptions())
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.EnsureCollection(ctx))

	results, err := reopened.Search(ctx, []float32{0.5, 0.5, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, note.ID, results[0].Note.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSQLiteStore_DimensionConflict(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "notes.db")

	s, err := NewSQLiteStore(dbPath, testOptions())
	require.NoError(t, err)
	require.NoError(t, s.EnsureCollection(ctx))
	require.NoError(t, s.Close())

	other, err := NewSQLiteStore(dbPath, Options{Collection: testOptions().Collection, Dim: 8})
	require.NoError(t, err)
	defer other.Close()

	assert.ErrorIs(t, other.EnsureCollection(ctx), ErrVectorDimension)
}

func TestSQLiteStore_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "notes.db")

	a, err := NewSQLiteStore(dbPath, Options{Collection: "a", Dim: testDim})
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.EnsureCollection(ctx))
	require.NoError(t, a.AddNote(ctx, newTestNote("only in a"), []float32{1, 0, 0, 0}))

	b, err := NewSQLiteStore(dbPath, Options{Collection: "b", Dim: testDim})
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.EnsureCollection(ctx))

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEncodeDecodeEmbedding(t *testing.T) {
	vec := []float32{0.25, -1.5, 3}
	assert.Equal(t, vec, decodeEmbedding(encodeEmbedding(vec)))
	assert.Nil(t, decodeEmbedding(nil))
}
