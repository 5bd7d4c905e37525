// Package service implements the semantic memory operations: creating
// memories from raw input or whole exchanges, listing, similarity search,
// and deletion. All operations are user scoped.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"EchoChat/backend/go/internal/embedding"
	"EchoChat/backend/go/internal/memory/extractor"
	"EchoChat/backend/go/internal/memory/store"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

const defaultListLimit = 50

// Service coordinates extraction, embedding and storage of memories.
type Service struct {
	store     store.Store
	embedder  embedding.Embedding
	extractor *extractor.Extractor
	log       *logger.Logger
}

// New wires a Service. log must not be nil.
func New(memStore store.Store, embedder embedding.Embedding, log *logger.Logger) *Service {
	return &Service{
		store:     memStore,
		embedder:  embedder,
		extractor: extractor.New(),
		log:       log,
	}
}

// CreateInput is the payload of an explicit memory creation.
type CreateInput struct {
	UserID         string
	ConversationID string
	Content        string
	Summary        string
	Importance     int
	Metadata       map[string]string
	// GenerateEmbedding controls whether the memory gets a vector. Without
	// one the memory is listable but invisible to similarity search.
	GenerateEmbedding bool
}

// Create persists one memory. Missing summary and importance are derived
// from the content through the extraction rules. An embedding failure does
// not fail the call: the memory is stored without a vector and the failure
// is logged.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.SemanticMemory, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, &ValidationError{Message: "content is required"}
	}
	if in.UserID == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}

	facts := s.extractor.ExtractFacts(in.Content, "")
	if in.Summary == "" {
		in.Summary = extractor.GenerateSummary(in.Content, facts)
	}
	if in.Importance < 1 || in.Importance > 10 {
		in.Importance = extractor.CalculateImportance(in.Content, facts)
	}

	memory := &models.SemanticMemory{
		UserID:         in.UserID,
		ConversationID: in.ConversationID,
		Content:        in.Content,
		Summary:        in.Summary,
		Importance:     in.Importance,
		Metadata:       in.Metadata,
	}

	if in.GenerateEmbedding {
		vector, err := s.embedder.Embed(ctx, embeddingText(memory))
		if err != nil {
			s.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "embedding_error"}).
				Warn("storing memory without embedding")
		} else {
			memory.Embedding = vector
		}
	}

	created, err := s.store.Create(ctx, memory)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return created, nil
}

// RememberExchange turns one completed chat exchange into a memory: extract
// facts, score, summarize, embed, persist. This is the write path behind the
// Kafka consumer; callers treat failures as best-effort.
func (s *Service) RememberExchange(ctx context.Context, exchange models.ChatExchange) (*models.SemanticMemory, error) {
	if strings.TrimSpace(exchange.UserMessage) == "" {
		return nil, &ValidationError{Message: "exchange has no user message"}
	}
	if exchange.UserID == "" {
		return nil, &ValidationError{Message: "exchange has no user id"}
	}

	facts := s.extractor.ExtractFacts(exchange.UserMessage, exchange.AssistantResponse)
	importance := extractor.CalculateImportance(exchange.UserMessage, facts)
	summary := extractor.GenerateSummary(exchange.UserMessage, facts)

	content := "User: " + exchange.UserMessage
	if exchange.AssistantResponse != "" {
		content += "\nAssistant: " + exchange.AssistantResponse
	}

	memory := &models.SemanticMemory{
		UserID:         exchange.UserID,
		ConversationID: exchange.ConversationID,
		Content:        content,
		Summary:        summary,
		Importance:     importance,
		CreatedAt:      exchange.ExchangedAt,
	}

	vector, err := s.embedder.Embed(ctx, embeddingText(memory))
	if err != nil {
		// The memory is still worth keeping for listing; it just will not
		// participate in similarity search.
		s.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "embedding_error"}).
			Warn("storing exchange memory without embedding")
	} else {
		memory.Embedding = vector
	}

	created, err := s.store.Create(ctx, memory)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return created, nil
}

// List returns the user's memories, newest first. A non-positive limit
// falls back to a sane default.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*models.SemanticMemory, error) {
	if userID == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	memories, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return memories, nil
}

// Search returns up to limit memories ranked by similarity to query, ties
// broken by importance and then recency. An embedding failure is surfaced
// as an EmbeddingError rather than silently returning nothing; the
// augmentation caller decides whether to degrade.
func (s *Service) Search(ctx context.Context, query, userID string, limit int) ([]*models.SemanticMemory, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Message: "query is required"}
	}
	if userID == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}
	if limit <= 0 {
		return nil, &ValidationError{Message: "limit must be positive"}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	memories, err := s.store.QueryBySimilarity(ctx, userID, vector, limit)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	sort.SliceStable(memories, func(i, j int) bool {
		if memories[i].Similarity != memories[j].Similarity {
			return memories[i].Similarity > memories[j].Similarity
		}
		if memories[i].Importance != memories[j].Importance {
			return memories[i].Importance > memories[j].Importance
		}
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
	if len(memories) > limit {
		memories = memories[:limit]
	}
	return memories, nil
}

// Delete removes one memory owned by userID. Returns ErrNotFound when the
// id does not exist or belongs to another user.
func (s *Service) Delete(ctx context.Context, userID, id string) (*models.SemanticMemory, error) {
	if userID == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Message: "id is required"}
	}

	deleted, err := s.store.DeleteByIDForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Err: err}
	}
	return deleted, nil
}

// embeddingText picks what gets vectorized. The full content is used rather
// than the summary so searches can hit detail the summary dropped.
func embeddingText(memory *models.SemanticMemory) string {
	return memory.Content
}
