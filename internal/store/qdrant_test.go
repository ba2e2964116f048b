package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getQdrantURL は環境変数からQdrant URLを取得、未設定時はデフォルトを返す
func getQdrantURL() string {
	if url := os.Getenv("QDRANT_URL"); url != "" {
		return url
	}
	return "http://localhost:6333"
}

func setupQdrantTestStore(t *testing.T) *QdrantStore {
	t.Helper()

	opts := Options{Collection: fmt.Sprintf("test_notes_%s", newTestNote("").ID[:8]), Dim: testDim}
	store, err := NewQdrantStore(getQdrantURL(), os.Getenv("QDRANT_API_KEY"), opts)
	if err != nil {
		if errors.Is(err, ErrConnectionFailed) {
			t.Skip("Qdrant is not available, skipping test")
		}
		t.Fatalf("Failed to create QdrantStore: %v", err)
	}

	t.Cleanup(func() {
		store.client.DeleteCollection(context.Background(), opts.Collection)
		store.Close()
	})
	return store
}

func TestQdrantEndpoint(t *testing.T) {
	tests := []struct {
		url     string
		host    string
		port    int
		useTLS  bool
		wantErr bool
	}{
		{url: "http://localhost:6333", host: "localhost", port: 6334},
		{url: "http://localhost", host: "localhost", port: 6334},
		{url: "http://qdrant:7000", host: "qdrant", port: 7000},
		{url: "https://xyz.cloud.qdrant.io:6333", host: "xyz.cloud.qdrant.io", port: 6334, useTLS: true},
		{url: "localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			host, port, useTLS, err := QdrantEndpoint(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.useTLS, useTLS)
		})
	}
}

func TestQdrantStore_InvalidOptions(t *testing.T) {
	_, err := NewQdrantStore(getQdrantURL(), "", Options{Collection: "", Dim: 3})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestQdrantStore_NoteLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupQdrantTestStore(t)

	_, err := s.List(ctx, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, s.EnsureCollection(ctx))
	require.NoError(t, s.EnsureCollection(ctx))

	require.NoError(t, s.AddNote(ctx, newTestNote("far"), []float32{0, 1, 0, 0}))
	exact := newTestNote("exact")
	require.NoError(t, s.AddNote(ctx, exact, []float32{1, 0, 0, 0}))

	results, err := s.Search(ctx, []float32{1, 0, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, exact.ID, results[0].Note.ID)
	assert.Equal(t, "exact", results[0].Note.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)

	notes, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
