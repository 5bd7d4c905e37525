package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"EchoChat/backend/go/internal/models"
)

// InMemoryStore keeps memories in a slice guarded by a mutex. Similarity is
// exact cosine over all of the user's records, which is fine at the scale
// this store is meant for.
type InMemoryStore struct {
	mutex    sync.RWMutex
	memories []*models.SemanticMemory
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Create persists the memory and returns a copy with ID and CreatedAt set.
func (s *InMemoryStore) Create(ctx context.Context, memory *models.SemanticMemory) (*models.SemanticMemory, error) {
	stored := *memory
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.mutex.Lock()
	s.memories = append(s.memories, &stored)
	s.mutex.Unlock()

	result := stored
	return &result, nil
}

// ListByUser returns up to limit of the user's memories, newest first.
func (s *InMemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.SemanticMemory, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var results []*models.SemanticMemory
	for _, m := range s.memories {
		if m.UserID == userID {
			copied := *m
			results = append(results, &copied)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// QueryBySimilarity ranks the user's memories by cosine similarity to the
// query embedding. Records without an embedding are skipped.
func (s *InMemoryStore) QueryBySimilarity(ctx context.Context, userID string, embedding []float32, limit int) ([]*models.SemanticMemory, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var results []*models.SemanticMemory
	for _, m := range s.memories {
		if m.UserID != userID || len(m.Embedding) == 0 {
			continue
		}
		copied := *m
		copied.Similarity = CosineSimilarity(embedding, m.Embedding)
		results = append(results, &copied)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if results[i].Importance != results[j].Importance {
			return results[i].Importance > results[j].Importance
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteByIDForUser removes the memory owned by userID, returning ErrNotFound
// when id does not exist or belongs to someone else.
func (s *InMemoryStore) DeleteByIDForUser(ctx context.Context, userID, id string) (*models.SemanticMemory, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, m := range s.memories {
		if m.ID == id && m.UserID == userID {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			return m, nil
		}
	}
	return nil, ErrNotFound
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is empty, zero, or the dimensions differ.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
