package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// CachedEmbedding decorates an Embedding with a Redis cache. Chat queries
// repeat often, and embedding API calls are the slowest and most expensive
// step of retrieval, so cache hits skip the provider entirely.
type CachedEmbedding struct {
	inner Embedding
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedEmbedding wraps inner with a Redis cache. Cached vectors expire
// after ttl.
func NewCachedEmbedding(inner Embedding, rdb *redis.Client, ttl time.Duration) *CachedEmbedding {
	return &CachedEmbedding{inner: inner, redis: rdb, ttl: ttl}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text when present, otherwise calls the
// wrapped provider and stores the result. Cache failures are ignored; the
// provider remains the source of truth.
func (c *CachedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var vector []float32
		if err := json.Unmarshal(data, &vector); err == nil {
			return vector, nil
		}
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vector); err == nil {
		c.redis.Set(ctx, key, data, c.ttl)
	}
	return vector, nil
}

// EmbedBatch delegates to the wrapped provider. Batches come from memory
// writes where each text is unique, so caching them buys nothing.
func (c *CachedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}
