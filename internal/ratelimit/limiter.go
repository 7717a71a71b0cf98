// Package ratelimit provides per-client rate limiting.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/samplecodes/testkata/internal/config"
)

// ErrRateLimitExceeded is returned when the rate limit is exceeded.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool          // Whether the request is allowed
	Remaining  int           // Whole tokens left in the bucket
	ResetAfter time.Duration // Time until the bucket is full again
	RetryAfter time.Duration // Suggested retry time (if blocked)
	Limit      int           // Bucket size
}

// Limiter defines the rate limiting interface.
type Limiter interface {
	// Allow checks if a request from the given identifier is allowed.
	Allow(ctx context.Context, identifier string) (*Result, error)

	// Reset clears the rate limit state for an identifier.
	Reset(ctx context.Context, identifier string) error

	// Close releases any resources held by the limiter.
	Close() error
}

// Config holds rate limiter configuration.
type Config struct {
	RPS     float64       // Sustained requests per second; <= 0 means unlimited
	Burst   int           // Bucket size
	IdleTTL time.Duration // Buckets unused this long are dropped
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		RPS:     50,
		Burst:   100,
		IdleTTL: 10 * time.Minute,
	}
}

// FromConfig builds a Config from the application rate limit settings.
func FromConfig(cfg config.RateLimitConfig) Config {
	c := DefaultConfig()
	c.RPS = cfg.RPS
	if cfg.Burst > 0 {
		c.Burst = cfg.Burst
	}
	return c
}
