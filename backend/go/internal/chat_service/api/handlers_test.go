package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"EchoChat/backend/go/internal/chat_service/service"
	"EchoChat/backend/go/internal/chat_service/store"
	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

type memStore struct {
	mu            sync.Mutex
	conversations []*models.Conversation
	messages      []*models.Message
}

func (f *memStore) CreateConversation(ctx context.Context, c *models.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversations = append(f.conversations, c)
	return nil
}

func (f *memStore) GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conversations {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *memStore) ListConversations(ctx context.Context, userID string, page, limit int) ([]*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *memStore) TouchConversation(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (f *memStore) DeleteConversation(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.conversations {
		if c.ID == id && c.UserID == userID {
			f.conversations = append(f.conversations[:i], f.conversations[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *memStore) AppendMessage(ctx context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return nil
}

func (f *memStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type echoLLM struct{}

func (echoLLM) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	return &models.GenerateContentResponse{
		Content: []models.Content{{
			Parts: []*models.Part{{Text: "echo: " + req.Content[len(req.Content)-1].PlainText()}},
			Role:  models.SpeakerModel,
		}},
	}, nil
}

func (echoLLM) GenerateContentStream(ctx context.Context, req *models.GenerateContentRequest) (<-chan *models.GenerateContentResponse, error) {
	ch := make(chan *models.GenerateContentResponse)
	close(ch)
	return ch, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("chat-api-test", "", "")
	chatService := service.NewChatService(&memStore{}, echoLLM{}, nil, nil, nil, log, 5)
	handler := NewHandler(chatService, nil, nil, service.NewConnectionManager(), log)

	cfg := &config.AppConfig{}
	cfg.Auth.Enabled = false
	cfg.Auth.FallbackUserID = "default-user"
	return NewRouter(handler, cfg, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatTurnAndHistory(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
		"text": "hello there",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat turn returned %d: %s", w.Code, w.Body.String())
	}

	var reply models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.ConversationID == "" {
		t.Fatal("reply has no conversation id")
	}
	if got := reply.Content.PlainText(); got != "echo: hello there" {
		t.Errorf("unexpected reply text %q", got)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/conversations/"+reply.ConversationID+"/messages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list messages returned %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(page.Messages) != 2 {
		t.Errorf("expected 2 persisted messages, got %d", len(page.Messages))
	}
}

func TestChatTurnRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", w.Code)
	}
}

func TestListConversations(t *testing.T) {
	router := newTestRouter()

	doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{"text": "first"})
	doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{"text": "second"})

	w := doJSON(t, router, http.MethodGet, "/api/v1/conversations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list conversations returned %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode conversations: %v", err)
	}
	if len(page.Conversations) != 2 {
		t.Errorf("expected 2 conversations, got %d", len(page.Conversations))
	}
}

func TestDeleteConversationNotFound(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodDelete, "/api/v1/conversations/no-such-id", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUploadNotConfigured(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/uploads", nil)
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 when uploads are not configured, got %d", w.Code)
	}
}
