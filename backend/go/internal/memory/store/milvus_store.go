package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"EchoChat/backend/go/internal/database/milvus"
	"EchoChat/backend/go/internal/models"
)

// Column names of the memory collection. The YAML schema must agree.
const (
	fieldMemoryID       = "memory_id"
	fieldUserID         = "user_id"
	fieldConversationID = "conversation_id"
	fieldContent        = "content"
	fieldSummary        = "summary"
	fieldImportance     = "importance"
	fieldCreatedAt      = "created_at"
	fieldMetadata       = "metadata"
)

var outputFields = []string{
	fieldMemoryID, fieldUserID, fieldConversationID,
	fieldContent, fieldSummary, fieldImportance, fieldCreatedAt, fieldMetadata,
}

// MilvusStore implements Store on a Milvus collection. Every query carries a
// user_id filter expression, which is what enforces cross-user isolation.
type MilvusStore struct {
	db *milvus.MilvusClient
}

// NewMilvusStore wraps an initialized Milvus client.
func NewMilvusStore(db *milvus.MilvusClient) *MilvusStore {
	return &MilvusStore{db: db}
}

func (s *MilvusStore) collection() string {
	return s.db.Config.Schema.CollectionName
}

// Create inserts the memory and returns it with ID and CreatedAt assigned.
func (s *MilvusStore) Create(ctx context.Context, memory *models.SemanticMemory) (*models.SemanticMemory, error) {
	stored := *memory
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	metadataJSON := "{}"
	if len(stored.Metadata) > 0 {
		raw, err := json.Marshal(stored.Metadata)
		if err != nil {
			return nil, fmt.Errorf("cannot encode metadata: %w", err)
		}
		metadataJSON = string(raw)
	}

	dim := s.vectorDim()
	if dim == 0 {
		dim = len(stored.Embedding)
	}
	columns := []entity.Column{
		entity.NewColumnVarChar(fieldMemoryID, []string{stored.ID}),
		entity.NewColumnVarChar(fieldUserID, []string{stored.UserID}),
		entity.NewColumnVarChar(fieldConversationID, []string{stored.ConversationID}),
		entity.NewColumnVarChar(fieldContent, []string{stored.Content}),
		entity.NewColumnVarChar(fieldSummary, []string{stored.Summary}),
		entity.NewColumnInt64(fieldImportance, []int64{int64(stored.Importance)}),
		entity.NewColumnInt64(fieldCreatedAt, []int64{stored.CreatedAt.UnixMilli()}),
		entity.NewColumnVarChar(fieldMetadata, []string{metadataJSON}),
		entity.NewColumnFloatVector(s.db.Config.Schema.VectorField, dim, [][]float32{padVector(stored.Embedding, dim)}),
	}

	if _, err := s.db.Client.Insert(ctx, s.collection(), "", columns...); err != nil {
		return nil, fmt.Errorf("failed to insert memory: %w", err)
	}

	result := stored
	return &result, nil
}

// vectorDim returns the configured dimension of the collection's vector
// field, or 0 when the schema does not declare it.
func (s *MilvusStore) vectorDim() int {
	for _, field := range s.db.Config.Schema.Fields {
		if field.Name == s.db.Config.Schema.VectorField {
			return field.Dim
		}
	}
	return 0
}

// padVector fits an embedding to the fixed dimension of the vector field.
// Memories stored without an embedding (generation skipped or failed) get a
// zero vector: the record stays listable and deletable while contributing
// nothing to similarity search. A length mismatch also maps to the zero
// vector, since the collection would reject the row outright.
func padVector(embedding []float32, dim int) []float32 {
	if len(embedding) == dim {
		return embedding
	}
	return make([]float32, dim)
}

// ListByUser returns up to limit of the user's memories, newest first.
func (s *MilvusStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.SemanticMemory, error) {
	expr := fmt.Sprintf("%s == %q", fieldUserID, userID)
	resultSet, err := s.db.Client.Query(ctx, s.collection(), nil, expr, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}

	memories, err := rowsFromColumns(resultSet)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
	if len(memories) > limit {
		memories = memories[:limit]
	}
	return memories, nil
}

// QueryBySimilarity runs a vector search restricted to the user's partition
// of the data and returns matches with Similarity populated.
func (s *MilvusStore) QueryBySimilarity(ctx context.Context, userID string, embedding []float32, limit int) ([]*models.SemanticMemory, error) {
	sp, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, fmt.Errorf("cannot build search params: %w", err)
	}

	expr := fmt.Sprintf("%s == %q", fieldUserID, userID)
	results, err := s.db.Client.Search(
		ctx,
		s.collection(),
		nil,
		expr,
		outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		s.db.Config.Schema.VectorField,
		entity.MetricType(s.db.Config.Schema.Index.MetricType),
		limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}

	var memories []*models.SemanticMemory
	for _, result := range results {
		rows, err := rowsFromColumns(result.Fields)
		if err != nil {
			return nil, err
		}
		for i, row := range rows {
			if i < len(result.Scores) {
				row.Similarity = result.Scores[i]
			}
			memories = append(memories, row)
		}
	}
	return memories, nil
}

// DeleteByIDForUser removes the memory owned by userID, returning ErrNotFound
// when no matching owned record exists.
func (s *MilvusStore) DeleteByIDForUser(ctx context.Context, userID, id string) (*models.SemanticMemory, error) {
	expr := fmt.Sprintf("%s == %q && %s == %q", fieldMemoryID, id, fieldUserID, userID)
	resultSet, err := s.db.Client.Query(ctx, s.collection(), nil, expr, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to look up memory: %w", err)
	}

	memories, err := rowsFromColumns(resultSet)
	if err != nil {
		return nil, err
	}
	if len(memories) == 0 {
		return nil, ErrNotFound
	}

	if err := s.db.Client.Delete(ctx, s.collection(), "", expr); err != nil {
		return nil, fmt.Errorf("failed to delete memory: %w", err)
	}
	return memories[0], nil
}

// rowsFromColumns rebuilds memory records from a columnar result.
func rowsFromColumns(columns []entity.Column) ([]*models.SemanticMemory, error) {
	byName := make(map[string]entity.Column, len(columns))
	rowCount := 0
	for _, col := range columns {
		byName[col.Name()] = col
		if col.Len() > rowCount {
			rowCount = col.Len()
		}
	}

	varchar := func(name string, row int) string {
		col, ok := byName[name].(*entity.ColumnVarChar)
		if !ok || row >= col.Len() {
			return ""
		}
		return col.Data()[row]
	}
	int64val := func(name string, row int) int64 {
		col, ok := byName[name].(*entity.ColumnInt64)
		if !ok || row >= col.Len() {
			return 0
		}
		return col.Data()[row]
	}

	memories := make([]*models.SemanticMemory, 0, rowCount)
	for row := 0; row < rowCount; row++ {
		memory := &models.SemanticMemory{
			ID:             varchar(fieldMemoryID, row),
			UserID:         varchar(fieldUserID, row),
			ConversationID: varchar(fieldConversationID, row),
			Content:        varchar(fieldContent, row),
			Summary:        varchar(fieldSummary, row),
			Importance:     int(int64val(fieldImportance, row)),
			CreatedAt:      time.UnixMilli(int64val(fieldCreatedAt, row)),
		}
		if raw := varchar(fieldMetadata, row); raw != "" && raw != "{}" {
			metadata := make(map[string]string)
			if err := json.Unmarshal([]byte(raw), &metadata); err == nil {
				memory.Metadata = metadata
			}
		}
		memories = append(memories, memory)
	}
	return memories, nil
}

var _ Store = (*MilvusStore)(nil)
