package httpmiddleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/circuitbreaker"
	"EchoChat/backend/go/pkg/logger"
	"EchoChat/backend/go/pkg/ratelimiter"
)

const (
	// ContextUserIDKey is where Auth stores the resolved user identity.
	ContextUserIDKey = "userID"
	// ContextTraceIDKey is where TraceID stores the per-request trace id.
	ContextTraceIDKey = "traceID"
)

// TraceID assigns a trace id to each request, reusing an inbound X-Trace-ID
// header when present.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(ContextTraceIDKey, traceID)
		c.Header("X-Trace-ID", traceID)
		c.Next()
	}
}

// Auth validates a Bearer token and stores the subject claim as the request
// user. When auth is disabled every request runs as fallbackUserID, which
// keeps single-user deployments working without an account system.
func Auth(enabled bool, jwtSecret, fallbackUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Set(ContextUserIDKey, fallbackUserID)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing subject"})
			return
		}
		c.Set(ContextUserIDKey, sub)
		c.Next()
	}
}

// RequestLogger logs one structured line per request with method, path,
// status and latency.
func RequestLogger(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		traceID := c.GetString(ContextTraceIDKey)
		userID := c.GetString(ContextUserIDKey)
		log := logger.New(serviceName, traceID, userID).WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			LatencyMS:  time.Since(start).Milliseconds(),
			StatusCode: c.Writer.Status(),
		})

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed")
		} else {
			log.Info("request completed")
		}
	}
}

// RateLimit rejects requests with 429 when the limiter is exhausted.
func RateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// CircuitBreak short-circuits requests with 503 while the breaker is open.
// Handler outcomes feed the breaker: any 5xx response counts as a failure.
func CircuitBreak(breaker *circuitbreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := breaker.Execute(func() (interface{}, error) {
			c.Next()
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, fmt.Errorf("upstream returned %d", c.Writer.Status())
			}
			return nil, nil
		})
		if err == circuitbreaker.ErrCircuitOpen {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		}
	}
}
