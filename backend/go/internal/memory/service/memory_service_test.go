package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoChat/backend/go/internal/memory/store"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

// stubEmbedder maps texts onto three topic axes by keyword counting, so
// semantically related texts land close together without a real provider.
type stubEmbedder struct{}

var topicAxes = [3][]string{
	{"hiking", "mountains", "outdoor", "activities", "camping"},
	{"pizza", "cooking", "food", "restaurant"},
	{"code", "compiler", "software", "programming"},
}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vector := make([]float32, 3)
	for axis, words := range topicAxes {
		for _, word := range words {
			if strings.Contains(lower, word) {
				vector[axis]++
			}
		}
	}
	// Texts with no known topic still need a non-zero vector.
	if vector[0] == 0 && vector[1] == 0 && vector[2] == 0 {
		vector[2] = 0.001
	}
	return vector, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = stubEmbedder{}.Embed(ctx, text)
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider down")
}

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider down")
}

func newTestService() *Service {
	return New(store.NewInMemoryStore(), stubEmbedder{}, logger.New("memory-test", "", ""))
}

func TestCreate_ValidatesInput(t *testing.T) {
	s := newTestService()

	_, err := s.Create(context.Background(), CreateInput{UserID: "alice"})
	assert.True(t, IsValidation(err), "got %v", err)

	_, err = s.Create(context.Background(), CreateInput{Content: "something"})
	assert.True(t, IsValidation(err), "got %v", err)
}

func TestCreate_DerivesSummaryAndImportance(t *testing.T) {
	s := newTestService()

	created, err := s.Create(context.Background(), CreateInput{
		UserID:  "alice",
		Content: "My name is Alice and I live in Paris",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Summary, "User's name is Alice"), "got %q", created.Summary)
	assert.Equal(t, 9, created.Importance)
	assert.NotEmpty(t, created.ID)
}

func TestCreate_EmbeddingFailureStillPersists(t *testing.T) {
	memStore := store.NewInMemoryStore()
	s := New(memStore, failingEmbedder{}, logger.New("memory-test", "", ""))

	created, err := s.Create(context.Background(), CreateInput{
		UserID:            "alice",
		Content:           "User enjoys hiking",
		GenerateEmbedding: true,
	})
	require.NoError(t, err)
	assert.Empty(t, created.Embedding)

	listed, err := s.List(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSearch_Validation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.Search(ctx, "", "alice", 5)
	assert.True(t, IsValidation(err))

	_, err = s.Search(ctx, "   ", "alice", 5)
	assert.True(t, IsValidation(err))

	_, err = s.Search(ctx, "hiking", "alice", 0)
	assert.True(t, IsValidation(err))

	_, err = s.Search(ctx, "hiking", "", 5)
	assert.True(t, IsValidation(err))
}

func TestSearch_EmbeddingFailureSurfaced(t *testing.T) {
	s := New(store.NewInMemoryStore(), failingEmbedder{}, logger.New("memory-test", "", ""))

	_, err := s.Search(context.Background(), "hiking", "alice", 5)
	assert.True(t, IsEmbedding(err), "got %v", err)
}

func TestSearch_SemanticMatch(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	for _, content := range []string{
		"User enjoys hiking in the mountains",
		"User's favorite food is pizza",
		"User works as a software engineer",
	} {
		_, err := s.Create(ctx, CreateInput{
			UserID:            "alice",
			Content:           content,
			GenerateEmbedding: true,
		})
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, "outdoor activities", "alice", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "User enjoys hiking in the mountains", results[0].Content)
}

func TestSearch_UserIsolation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.Create(ctx, CreateInput{
		UserID:            "alice",
		Content:           "User enjoys hiking in the mountains",
		GenerateEmbedding: true,
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "hiking mountains outdoor", "bob", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TopKBound(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := s.Create(ctx, CreateInput{
			UserID:            "alice",
			Content:           "User enjoys hiking and camping",
			GenerateEmbedding: true,
		})
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, "outdoor activities", "alice", 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 3)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
	}
}

func TestRememberExchange_FullWritePath(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	created, err := s.RememberExchange(ctx, models.ChatExchange{
		UserID:            "alice",
		ConversationID:    "conv-1",
		UserMessage:       "Hi, my name is Alice and I live in Paris, France",
		AssistantResponse: "Nice to meet you, Alice!",
	})
	require.NoError(t, err)

	assert.Equal(t, 9, created.Importance)
	assert.True(t, strings.HasPrefix(created.Summary, "User's name is Alice"), "got %q", created.Summary)
	assert.Contains(t, created.Content, "User: Hi, my name is Alice")
	assert.Contains(t, created.Content, "Assistant: Nice to meet you, Alice!")
	assert.Equal(t, "conv-1", created.ConversationID)
}

func TestRememberExchange_RejectsEmpty(t *testing.T) {
	s := newTestService()

	_, err := s.RememberExchange(context.Background(), models.ChatExchange{UserID: "alice"})
	assert.True(t, IsValidation(err))
}

func TestDelete_NotFoundForWrongOwner(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	created, err := s.Create(ctx, CreateInput{UserID: "alice", Content: "remember this"})
	require.NoError(t, err)

	_, err = s.Delete(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.Delete(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
}

func TestBuildInstructions_NoMemoriesIsNoOp(t *testing.T) {
	base := "You are a helpful assistant."
	assert.Equal(t, base, BuildInstructions(base, nil))
	assert.Equal(t, base, BuildInstructions(base, []*models.SemanticMemory{}))
}

func TestBuildInstructions_ListsSummaries(t *testing.T) {
	base := "You are a helpful assistant."
	out := BuildInstructions(base, []*models.SemanticMemory{
		{Summary: "User's name is Alice"},
		{Content: "User enjoys hiking"},
	})

	assert.True(t, strings.HasPrefix(out, base))
	assert.Contains(t, out, "- User's name is Alice")
	assert.Contains(t, out, "- User enjoys hiking")
	assert.Contains(t, out, "personalize")
}
