// Package bootstrap holds startup wiring shared by the service binaries.
package bootstrap

import (
	"time"

	"github.com/sirupsen/logrus"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/database/redis"
	"EchoChat/backend/go/internal/embedding"
	"EchoChat/backend/go/pkg/circuitbreaker"
	"EchoChat/backend/go/pkg/logger"
	"EchoChat/backend/go/pkg/ratelimiter"
)

// InitLogger configures the global logger from configuration. Unknown levels
// fall back to info.
func InitLogger(cfg *config.AppConfig) {
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
}

// BuildEmbedder assembles the embedding pipeline: the provider model,
// optionally wrapped in a Redis cache and a circuit breaker.
func BuildEmbedder(cfg *config.AppConfig) (embedding.Embedding, error) {
	embedder, err := embedding.NewModel(&cfg.Embedding)
	if err != nil {
		return nil, err
	}

	if cfg.Embedding.CacheEnabled {
		rdb, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.Databases.Redis.EmbeddingTTL) * time.Second
		embedder = embedding.NewCachedEmbedding(embedder, rdb, ttl)
	}

	if cfg.Middleware.CircuitBreaker.Enabled {
		resetTimeout, err := time.ParseDuration(cfg.Middleware.CircuitBreaker.ResetTimeout)
		if err != nil {
			resetTimeout = 30 * time.Second
		}
		breaker := circuitbreaker.New(cfg.Middleware.CircuitBreaker.FailureThreshold, resetTimeout)
		embedder = embedding.NewBreakerEmbedding(embedder, breaker)
	}

	return embedder, nil
}

// BuildLimiter returns the configured rate limiter, or nil when disabled.
func BuildLimiter(cfg *config.RateLimiterConfig) ratelimiter.RateLimiter {
	if !cfg.Enabled {
		return nil
	}
	switch cfg.Algorithm {
	case "tokenBucket":
		return ratelimiter.NewTokenBucket(cfg.TokenBucket.Rate, cfg.TokenBucket.Capacity)
	case "slidingCounter":
		window, err := time.ParseDuration(cfg.SlidingCounter.Window)
		if err != nil {
			window = time.Minute
		}
		return ratelimiter.NewSlidingWindowCounter(cfg.SlidingCounter.Limit, window, cfg.SlidingCounter.NumBuckets)
	case "fixedWindow":
		window, err := time.ParseDuration(cfg.FixedWindow.Window)
		if err != nil {
			window = time.Minute
		}
		return ratelimiter.NewFixedWindowCounter(cfg.FixedWindow.Limit, window)
	default:
		logrus.Warnf("unknown rate limiter algorithm %q, rate limiting disabled", cfg.Algorithm)
		return nil
	}
}
