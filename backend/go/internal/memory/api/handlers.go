package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"EchoChat/backend/go/internal/memory/service"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/httpmiddleware"
	"EchoChat/backend/go/pkg/logger"
)

// Handler exposes memory CRUD and search over HTTP.
type Handler struct {
	memoryService *service.Service
	log           *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(memoryService *service.Service, log *logger.Logger) *Handler {
	return &Handler{memoryService: memoryService, log: log}
}

type createMemoryRequest struct {
	ConversationID    string            `json:"conversationId"`
	Content           string            `json:"content"`
	Summary           string            `json:"summary"`
	Importance        int               `json:"importance"`
	Metadata          map[string]string `json:"metadata"`
	Context           string            `json:"context"`
	GenerateEmbedding *bool             `json:"generateEmbedding"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// CreateMemory handles POST /memories.
func (h *Handler) CreateMemory(c *gin.Context) {
	var req createMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	generateEmbedding := true
	if req.GenerateEmbedding != nil {
		generateEmbedding = *req.GenerateEmbedding
	}
	if req.Context != "" {
		if req.Metadata == nil {
			req.Metadata = map[string]string{}
		}
		req.Metadata["context"] = req.Context
	}

	memory, err := h.memoryService.Create(c.Request.Context(), service.CreateInput{
		UserID:            c.GetString(httpmiddleware.ContextUserIDKey),
		ConversationID:    req.ConversationID,
		Content:           req.Content,
		Summary:           req.Summary,
		Importance:        req.Importance,
		Metadata:          req.Metadata,
		GenerateEmbedding: generateEmbedding,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, memory)
}

// ListMemories handles GET /memories.
func (h *Handler) ListMemories(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	memories, err := h.memoryService.List(c.Request.Context(), c.GetString(httpmiddleware.ContextUserIDKey), query.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories})
}

// SearchMemories handles POST /memories/search.
func (h *Handler) SearchMemories(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	memories, err := h.memoryService.Search(c.Request.Context(), req.Query, c.GetString(httpmiddleware.ContextUserIDKey), req.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories})
}

// DeleteMemory handles DELETE /memories/:id.
func (h *Handler) DeleteMemory(c *gin.Context) {
	deleted, err := h.memoryService.Delete(c.Request.Context(), c.GetString(httpmiddleware.ContextUserIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// respondError maps service errors onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
	case service.IsEmbedding(err):
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "embedding_error", StatusCode: http.StatusBadGateway}).
			Error("embedding provider failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "embedding provider unavailable"})
	default:
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "storage_error", StatusCode: http.StatusInternalServerError}).
			Error("memory operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
