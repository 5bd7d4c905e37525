package api

import (
	"github.com/gin-gonic/gin"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/pkg/httpmiddleware"
	"EchoChat/backend/go/pkg/ratelimiter"
)

// NewRouter assembles the memory service routes. limiter may be nil when
// rate limiting is disabled.
func NewRouter(handler *Handler, cfg *config.AppConfig, limiter ratelimiter.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmiddleware.TraceID())
	router.Use(httpmiddleware.Auth(cfg.Auth.Enabled, cfg.Auth.JwtSecret, cfg.Auth.FallbackUserID))
	router.Use(httpmiddleware.RequestLogger("memory_service"))
	if limiter != nil {
		router.Use(httpmiddleware.RateLimit(limiter))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/memories", handler.CreateMemory)
		v1.GET("/memories", handler.ListMemories)
		v1.POST("/memories/search", handler.SearchMemories)
		v1.DELETE("/memories/:id", handler.DeleteMemory)
	}

	return router
}
