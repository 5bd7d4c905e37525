// Package store persists semantic memories. The Milvus-backed implementation
// is the production store; the in-memory one serves tests and single-binary
// development setups.
package store

import (
	"context"
	"errors"

	"EchoChat/backend/go/internal/models"
)

// ErrNotFound is returned when a lookup or delete target does not exist or
// is not owned by the requesting user.
var ErrNotFound = errors.New("memory not found")

// Store is the persistence contract for semantic memories. All operations
// are scoped by user id; implementations must never return another user's
// records.
type Store interface {
	// Create persists the memory and returns it with ID and CreatedAt set.
	Create(ctx context.Context, memory *models.SemanticMemory) (*models.SemanticMemory, error)

	// ListByUser returns up to limit memories for the user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.SemanticMemory, error)

	// QueryBySimilarity returns up to limit memories for the user ranked by
	// vector similarity to the query embedding, with Similarity populated.
	QueryBySimilarity(ctx context.Context, userID string, embedding []float32, limit int) ([]*models.SemanticMemory, error)

	// DeleteByIDForUser removes the memory and returns it, or ErrNotFound
	// when no record matches both id and userID.
	DeleteByIDForUser(ctx context.Context, userID, id string) (*models.SemanticMemory, error)
}
