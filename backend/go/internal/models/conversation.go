package models

import "time"

// Conversation is a titled thread of messages belonging to one user.
type Conversation struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Message is a single utterance within a conversation. Attachments are
// referenced through Content parts with FileData.
type Message struct {
	ID             string      `json:"id" bson:"_id"`
	ConversationID string      `json:"conversation_id" bson:"conversation_id"`
	UserID         string      `json:"user_id" bson:"user_id"`
	Role           SpeakerRole `json:"role" bson:"role"`
	Content        Content     `json:"content" bson:"content"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
}

// PlainText returns the concatenated text parts of the message, including any
// text extracted from attachments.
func (m *Message) PlainText() string {
	return m.Content.PlainText()
}
