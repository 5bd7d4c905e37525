// Package service implements the chat turn pipeline: load history, retrieve
// memory context, call the model, persist both sides of the exchange, and
// hand the finished exchange to the memory pipeline.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"EchoChat/backend/go/internal/chat_service/store"
	"EchoChat/backend/go/internal/llm"
	memoryservice "EchoChat/backend/go/internal/memory/service"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

const (
	// DefaultBasePrompt is the system prompt before memory augmentation.
	DefaultBasePrompt = "You are a helpful, friendly assistant. Answer concisely and clearly."

	historyLimit   = 20
	titleLimit     = 40
	publishTimeout = 10 * time.Second
)

// ErrNotFound mirrors the store sentinel for handlers.
var ErrNotFound = store.ErrNotFound

// Retriever finds memories relevant to a query. The memory service's Search
// satisfies this.
type Retriever interface {
	Search(ctx context.Context, query, userID string, limit int) ([]*models.SemanticMemory, error)
}

// ExchangeSink receives finished exchanges for memory persistence.
type ExchangeSink interface {
	Publish(ctx context.Context, exchange models.ChatExchange) error
}

// ChatService runs chat turns. The retriever and sink are optional: without
// them chat still works, just without memory.
type ChatService struct {
	store        store.ConversationStore
	model        llm.LLM
	retriever    Retriever
	sink         ExchangeSink
	connections  *ConnectionManager
	log          *logger.Logger
	basePrompt   string
	contextLimit int
}

// NewChatService wires a ChatService. contextLimit is how many memories are
// retrieved per turn; non-positive values fall back to 5.
func NewChatService(
	convStore store.ConversationStore,
	model llm.LLM,
	retriever Retriever,
	sink ExchangeSink,
	connections *ConnectionManager,
	log *logger.Logger,
	contextLimit int,
) *ChatService {
	if contextLimit <= 0 {
		contextLimit = 5
	}
	return &ChatService{
		store:        convStore,
		model:        model,
		retriever:    retriever,
		sink:         sink,
		connections:  connections,
		log:          log,
		basePrompt:   DefaultBasePrompt,
		contextLimit: contextLimit,
	}
}

// SendMessage runs one chat turn and returns the assistant's message. When
// conversationID is empty a new conversation is created.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID string, content models.Content) (*models.Message, error) {
	userText := content.PlainText()
	if strings.TrimSpace(userText) == "" {
		return nil, errors.New("message has no content")
	}

	conversation, err := s.resolveConversation(ctx, userID, conversationID, userText)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListMessages(ctx, conversation.ID, historyLimit)
	if err != nil {
		return nil, err
	}

	instructions := s.augmentInstructions(ctx, userID, userText)

	request := &models.GenerateContentRequest{Instructions: instructions}
	for _, msg := range history {
		request.Content = append(request.Content, msg.Content)
	}
	content.Role = models.SpeakerUser
	request.Content = append(request.Content, content)

	response, err := s.model.GenerateContent(ctx, request)
	if err != nil {
		return nil, err
	}
	replyText := response.Text()

	now := time.Now()
	userMessage := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         userID,
		Role:           models.SpeakerUser,
		Content:        content,
		CreatedAt:      now,
	}
	assistantMessage := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         userID,
		Role:           models.SpeakerAssistant,
		Content: models.Content{
			Role:  models.SpeakerAssistant,
			Parts: []*models.Part{{Text: replyText}},
		},
		CreatedAt: now.Add(time.Millisecond),
	}

	if err := s.store.AppendMessage(ctx, userMessage); err != nil {
		return nil, err
	}
	if err := s.store.AppendMessage(ctx, assistantMessage); err != nil {
		return nil, err
	}
	if err := s.store.TouchConversation(ctx, conversation.ID, now); err != nil {
		s.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("failed to touch conversation")
	}

	s.publishExchange(userID, conversation.ID, userText, replyText)
	s.pushToUser(userID, assistantMessage)

	return assistantMessage, nil
}

// resolveConversation loads an owned conversation or creates a fresh one
// titled from the first message.
func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID, userText string) (*models.Conversation, error) {
	if conversationID != "" {
		return s.store.GetConversation(ctx, userID, conversationID)
	}

	title := userText
	if runes := []rune(title); len(runes) > titleLimit {
		title = string(runes[:titleLimit]) + "..."
	}

	now := time.Now()
	conversation := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// augmentInstructions retrieves memory context for the turn. Every failure
// here is swallowed: the user's chat must never break because the memory
// system is down.
func (s *ChatService) augmentInstructions(ctx context.Context, userID, userText string) string {
	if s.retriever == nil {
		return s.basePrompt
	}

	memories, err := s.retriever.Search(ctx, userText, userID, s.contextLimit)
	if err != nil {
		s.log.WithError(models.ErrorInfo{Message: err.Error()}).
			Warn("memory retrieval failed, continuing without context")
		return s.basePrompt
	}
	return memoryservice.BuildInstructions(s.basePrompt, memories)
}

// publishExchange hands the exchange to the memory pipeline in the
// background. The chat response does not wait for it, and a client that
// disconnects does not cancel it.
func (s *ChatService) publishExchange(userID, conversationID, userText, replyText string) {
	if s.sink == nil {
		return
	}

	exchange := models.ChatExchange{
		UserID:            userID,
		ConversationID:    conversationID,
		UserMessage:       userText,
		AssistantResponse: replyText,
		ExchangedAt:       time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.sink.Publish(ctx, exchange); err != nil {
			s.log.WithError(models.ErrorInfo{Message: err.Error()}).
				WithPayload(map[string]interface{}{"user_id": userID}).
				Error("failed to publish exchange")
		}
	}()
}

// pushToUser notifies the user's live WebSocket connection, if any.
func (s *ChatService) pushToUser(userID string, message *models.Message) {
	if s.connections == nil {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return
	}
	s.connections.SendMessage(userID, payload)
}

// ListConversations returns a page of the user's conversations.
func (s *ChatService) ListConversations(ctx context.Context, userID string, page, limit int) ([]*models.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListConversations(ctx, userID, page, limit)
}

// GetMessages returns a conversation's messages in chronological order,
// after checking ownership.
func (s *ChatService) GetMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.Message, error) {
	if _, err := s.store.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.store.ListMessages(ctx, conversationID, limit)
}

// DeleteConversation removes an owned conversation and its messages.
func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	return s.store.DeleteConversation(ctx, userID, conversationID)
}
