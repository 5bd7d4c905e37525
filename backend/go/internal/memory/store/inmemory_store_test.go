package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoChat/backend/go/internal/models"
)

func TestInMemoryStore_CreateAssignsIDAndTimestamp(t *testing.T) {
	s := NewInMemoryStore()

	created, err := s.Create(context.Background(), &models.SemanticMemory{
		UserID:  "alice",
		Content: "User lives in Paris",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestInMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, &models.SemanticMemory{
			UserID:    "alice",
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	listed, err := s.ListByUser(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "c", listed[0].Content)
	assert.Equal(t, "b", listed[1].Content)
}

func TestInMemoryStore_SimilarityRanking(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for _, m := range []*models.SemanticMemory{
		{UserID: "alice", Content: "close", Embedding: []float32{1, 0, 0}},
		{UserID: "alice", Content: "far", Embedding: []float32{0, 1, 0}},
		{UserID: "alice", Content: "middle", Embedding: []float32{1, 1, 0}},
	} {
		_, err := s.Create(ctx, m)
		require.NoError(t, err)
	}

	results, err := s.QueryBySimilarity(ctx, "alice", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "close", results[0].Content)
	assert.Equal(t, "middle", results[1].Content)
	assert.Equal(t, "far", results[2].Content)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
	}
}

func TestInMemoryStore_UserIsolation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, &models.SemanticMemory{
		UserID:    "alice",
		Content:   "secret",
		Embedding: []float32{1, 0},
	})
	require.NoError(t, err)

	results, err := s.QueryBySimilarity(ctx, "bob", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	listed, err := s.ListByUser(ctx, "bob", 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestInMemoryStore_DeleteScopedToOwner(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &models.SemanticMemory{UserID: "alice", Content: "x"})
	require.NoError(t, err)

	_, err = s.DeleteByIDForUser(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.DeleteByIDForUser(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = s.DeleteByIDForUser(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1}))
}
