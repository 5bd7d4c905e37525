package api

import (
	"github.com/gin-gonic/gin"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/pkg/httpmiddleware"
	"EchoChat/backend/go/pkg/ratelimiter"
)

// NewRouter assembles the chat service routes. limiter may be nil when rate
// limiting is disabled.
func NewRouter(handler *Handler, cfg *config.AppConfig, limiter ratelimiter.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmiddleware.TraceID())
	router.Use(httpmiddleware.Auth(cfg.Auth.Enabled, cfg.Auth.JwtSecret, cfg.Auth.FallbackUserID))
	router.Use(httpmiddleware.RequestLogger("chat_service"))
	if limiter != nil {
		router.Use(httpmiddleware.RateLimit(limiter))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/chat", handler.SendMessage)
		v1.GET("/conversations", handler.ListConversations)
		v1.GET("/conversations/:id/messages", handler.GetMessages)
		v1.DELETE("/conversations/:id", handler.DeleteConversation)
		v1.POST("/uploads", handler.UploadFile)
		v1.POST("/transcriptions", handler.Transcribe)
	}
	router.GET("/ws", handler.ServeWS)

	return router
}
