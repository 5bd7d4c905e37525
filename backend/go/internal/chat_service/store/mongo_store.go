package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"EchoChat/backend/go/internal/models"
)

// ErrNotFound is returned when a conversation does not exist or is not owned
// by the requesting user.
var ErrNotFound = errors.New("conversation not found")

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string, page, limit int) ([]*models.Conversation, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error
	DeleteConversation(ctx context.Context, userID, id string) error

	AppendMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error)
}

// MongoStore implements ConversationStore on two MongoDB collections.
type MongoStore struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

var _ ConversationStore = (*MongoStore)(nil)

// NewMongoStore creates a MongoStore on the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

// CreateConversation inserts a new conversation.
func (s *MongoStore) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	_, err := s.conversations.InsertOne(ctx, conversation)
	return err
}

// GetConversation returns the conversation if it exists and userID owns it.
func (s *MongoStore) GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.conversations.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// ListConversations returns a page of the user's conversations, most
// recently updated first.
func (s *MongoStore) ListConversations(ctx context.Context, userID string, page, limit int) ([]*models.Conversation, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.conversations.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// TouchConversation bumps the conversation's updated_at timestamp.
func (s *MongoStore) TouchConversation(ctx context.Context, id string, at time.Time) error {
	_, err := s.conversations.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"updated_at": at}},
	)
	return err
}

// DeleteConversation removes the conversation and all of its messages.
func (s *MongoStore) DeleteConversation(ctx context.Context, userID, id string) error {
	result, err := s.conversations.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.messages.DeleteMany(ctx, bson.M{"conversation_id": id})
	return err
}

// AppendMessage inserts one message.
func (s *MongoStore) AppendMessage(ctx context.Context, message *models.Message) error {
	_, err := s.messages.InsertOne(ctx, message)
	return err
}

// ListMessages returns the newest limit messages of a conversation in
// chronological order.
func (s *MongoStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	// Reverse the newest-first page so callers get chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
