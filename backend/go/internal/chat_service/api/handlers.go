// Package api exposes the chat service over HTTP and WebSocket.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"EchoChat/backend/go/internal/chat_service/service"
	"EchoChat/backend/go/internal/chat_service/store"
	"EchoChat/backend/go/internal/llm"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/httpmiddleware"
	"EchoChat/backend/go/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client runs on a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler exposes chat turns, conversation CRUD, uploads and transcription.
type Handler struct {
	chatService *service.ChatService
	processor   *store.ContentProcessor
	transcriber llm.Transcriber
	connections *service.ConnectionManager
	log         *logger.Logger
}

// NewHandler creates a Handler. processor and transcriber may be nil when the
// deployment has no object store or no speech provider.
func NewHandler(
	chatService *service.ChatService,
	processor *store.ContentProcessor,
	transcriber llm.Transcriber,
	connections *service.ConnectionManager,
	log *logger.Logger,
) *Handler {
	return &Handler{
		chatService: chatService,
		processor:   processor,
		transcriber: transcriber,
		connections: connections,
		log:         log,
	}
}

type sendMessageRequest struct {
	ConversationID string            `json:"conversationId"`
	Text           string            `json:"text"`
	Attachments    []models.FileData `json:"attachments"`
}

// SendMessage handles POST /chat. It runs one full chat turn and returns the
// assistant's message.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	content := models.Content{Role: models.SpeakerUser}
	if req.Text != "" {
		content.Parts = append(content.Parts, &models.Part{Text: req.Text})
	}
	for i := range req.Attachments {
		content.Parts = append(content.Parts, &models.Part{FileData: &req.Attachments[i]})
	}
	if len(content.Parts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message has no content"})
		return
	}

	reply, err := h.chatService.SendMessage(
		c.Request.Context(),
		c.GetString(httpmiddleware.ContextUserIDKey),
		req.ConversationID,
		content,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ListConversations handles GET /conversations.
func (h *Handler) ListConversations(c *gin.Context) {
	var query struct {
		Page  int `form:"page"`
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}

	conversations, err := h.chatService.ListConversations(
		c.Request.Context(), c.GetString(httpmiddleware.ContextUserIDKey), query.Page, query.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetMessages handles GET /conversations/:id/messages.
func (h *Handler) GetMessages(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	messages, err := h.chatService.GetMessages(
		c.Request.Context(), c.GetString(httpmiddleware.ContextUserIDKey), c.Param("id"), query.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteConversation handles DELETE /conversations/:id.
func (h *Handler) DeleteConversation(c *gin.Context) {
	err := h.chatService.DeleteConversation(
		c.Request.Context(), c.GetString(httpmiddleware.ContextUserIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// UploadFile handles POST /uploads. The stored object's FileData goes back to
// the client, which attaches it to a later chat message.
func (h *Handler) UploadFile(c *gin.Context) {
	if h.processor == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "uploads are not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	fileData, err := h.processor.ProcessUpload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, fileData)
}

// Transcribe handles POST /transcriptions. The client sends recorded audio
// and gets the transcript back to place in the input box.
func (h *Handler) Transcribe(c *gin.Context) {
	if h.transcriber == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "transcription is not configured"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio field"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded audio"})
		return
	}
	defer file.Close()

	text, err := h.transcriber.Transcribe(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "transcription_error"}).
			Error("transcription failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// ServeWS handles GET /ws. The connection receives assistant messages pushed
// by the server; it is read only to detect the close.
func (h *Handler) ServeWS(c *gin.Context) {
	userID := c.GetString(httpmiddleware.ContextUserIDKey)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("websocket upgrade failed")
		return
	}

	h.connections.Add(userID, conn)
	go func() {
		defer h.connections.Remove(userID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// respondError maps service errors onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	default:
		h.log.WithError(models.ErrorInfo{Message: err.Error(), StatusCode: http.StatusInternalServerError}).
			Error("chat operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
