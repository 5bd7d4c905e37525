package ratelimiter

// RateLimiter is the interface injected wherever request throttling is
// needed. Implementations decide, per call, whether one more request fits.
type RateLimiter interface {
	// Allow reports whether the request may proceed.
	Allow() bool
}
