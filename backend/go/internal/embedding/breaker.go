package embedding

import (
	"context"

	"EchoChat/backend/go/pkg/circuitbreaker"
)

// BreakerEmbedding decorates an Embedding with a circuit breaker so a
// failing provider does not hold every chat turn hostage for a full timeout.
type BreakerEmbedding struct {
	inner   Embedding
	breaker *circuitbreaker.CircuitBreaker
}

// NewBreakerEmbedding wraps inner with the given breaker.
func NewBreakerEmbedding(inner Embedding, breaker *circuitbreaker.CircuitBreaker) *BreakerEmbedding {
	return &BreakerEmbedding{inner: inner, breaker: breaker}
}

// Embed runs the provider call under the breaker.
func (b *BreakerEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// EmbedBatch runs the provider call under the breaker.
func (b *BreakerEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}
