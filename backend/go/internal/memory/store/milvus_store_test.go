package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/database/milvus"
)

func newSchemaOnlyStore(dim int) *MilvusStore {
	cfg := &config.MilvusConfig{
		Schema: config.SchemaConfig{
			CollectionName: "semantic_memories",
			VectorField:    "embedding",
			Fields: []config.FieldConfig{
				{Name: "memory_id", DataType: "VarChar", IsPrimaryKey: true, MaxLength: 64},
				{Name: "user_id", DataType: "VarChar", MaxLength: 64},
				{Name: "embedding", DataType: "FloatVector", Dim: dim},
			},
		},
	}
	return NewMilvusStore(&milvus.MilvusClient{Config: cfg})
}

func TestVectorDimComesFromSchema(t *testing.T) {
	s := newSchemaOnlyStore(768)
	assert.Equal(t, 768, s.vectorDim())
}

func TestVectorDimMissingField(t *testing.T) {
	s := newSchemaOnlyStore(768)
	s.db.Config.Schema.VectorField = "no_such_field"
	assert.Equal(t, 0, s.vectorDim())
}

func TestPadVector(t *testing.T) {
	// A memory stored without an embedding must still produce a row that the
	// fixed-dimension vector field accepts.
	padded := padVector(nil, 4)
	assert.Equal(t, []float32{0, 0, 0, 0}, padded)

	// A correctly sized embedding passes through untouched.
	vector := []float32{0.1, 0.2, 0.3, 0.4}
	assert.Equal(t, vector, padVector(vector, 4))

	// A wrong-sized embedding is replaced rather than inserted and rejected.
	assert.Equal(t, []float32{0, 0, 0, 0}, padVector([]float32{1, 2}, 4))
}
