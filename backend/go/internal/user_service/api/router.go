package api

import (
	"github.com/gin-gonic/gin"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/pkg/httpmiddleware"
	"EchoChat/backend/go/pkg/ratelimiter"
)

// NewRouter assembles the user service routes. Register and login stay open;
// profile sits behind auth. limiter may be nil when rate limiting is disabled.
func NewRouter(handler *Handler, cfg *config.AppConfig, limiter ratelimiter.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmiddleware.TraceID())
	router.Use(httpmiddleware.RequestLogger("user_service"))
	if limiter != nil {
		router.Use(httpmiddleware.RateLimit(limiter))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/register", handler.Register)
		v1.POST("/login", handler.Login)

		authed := v1.Group("")
		authed.Use(httpmiddleware.Auth(cfg.Auth.Enabled, cfg.Auth.JwtSecret, cfg.Auth.FallbackUserID))
		authed.GET("/profile", handler.GetProfile)
	}

	return router
}
