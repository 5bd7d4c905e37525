package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/memory/service"
	"EchoChat/backend/go/internal/memory/store"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := []float32{1, 0, 0}
	if strings.Contains(strings.ToLower(text), "pizza") {
		vector = []float32{0, 1, 0}
	}
	return vector, nil
}

func (fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = fixedEmbedder{}.Embed(ctx, text)
	}
	return out, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("memory-test", "", "")
	memoryService := service.New(store.NewInMemoryStore(), fixedEmbedder{}, log)
	handler := NewHandler(memoryService, log)

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
			t.Fatalf("marshal body: %v", err)
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

func TestCreateAndListMemories(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/memories", map[string]interface{}{
		"content": "My name is Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.SemanticMemory
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created memory: %v", err)
	}
	if created.ID == "" {
		t.Error("expected created memory to have an id")
	}
	if created.Importance != 9 {
		t.Errorf("expected importance 9 for a name introduction, got %d", created.Importance)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/memories?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listed struct {
		Memories []models.SemanticMemory `json:"memories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	if len(listed.Memories) != 1 {
		t.Errorf("expected 1 memory, got %d", len(listed.Memories))
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/memories/search", map[string]interface{}{
		"limit": 5,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", w.Code)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	router := newTestRouter()

	for _, content := range []string{"User enjoys hiking", "User loves pizza"} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/memories", map[string]interface{}{
			"content": content,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/memories/search", map[string]interface{}{
		"query": "outdoor hiking",
		"limit": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Memories []models.SemanticMemory `json:"memories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal search response: %v", err)
	}
	if len(resp.Memories) != 1 {
		t.Fatalf("expected exactly 1 result, got %d", len(resp.Memories))
	}
	if resp.Memories[0].Content != "User enjoys hiking" {
		t.Errorf("expected the hiking memory first, got %q", resp.Memories[0].Content)
	}
}

func TestDeleteMemoryNotFound(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodDelete, "/api/v1/memories/no-such-id", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDeleteMemory(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/memories", map[string]interface{}{
		"content": "remember this fact please",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	var created models.SemanticMemory
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created memory: %v", err)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/memories/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/memories/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}
