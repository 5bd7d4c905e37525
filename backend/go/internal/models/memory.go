package models

import "time"

// FactType categorizes an extracted fact.
type FactType string

const (
	FactPersonalInfo FactType = "personal_info"
	FactPreference   FactType = "preference"
	FactLocation     FactType = "location"
	FactWork         FactType = "work"
	FactRelationship FactType = "relationship"
	FactGeneral      FactType = "general"
)

// ExtractedFact is an atomic statement about the user derived from one
// conversational exchange. Facts are transient: they are folded into a
// memory's summary and content, never persisted on their own.
type ExtractedFact struct {
	Fact       string   `json:"fact"`
	Type       FactType `json:"type"`
	Importance int      `json:"importance"` // 1-10
}

// SemanticMemory is a persisted, user-scoped record of something worth
// remembering across conversations. Content is immutable once created.
type SemanticMemory struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Content        string            `json:"content"`
	Summary        string            `json:"summary"`
	Importance     int               `json:"importance"` // 1-10
	Embedding      []float32         `json:"-"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	// Similarity is only populated on search results.
	Similarity float32 `json:"similarity,omitempty"`
}

// ChatExchange is one completed user/assistant turn, published to Kafka by the
// chat service and consumed by the memory service for best-effort persistence.
type ChatExchange struct {
	UserID            string    `json:"user_id"`
	ConversationID    string    `json:"conversation_id,omitempty"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response,omitempty"`
	ExchangedAt       time.Time `json:"exchanged_at"`
}
