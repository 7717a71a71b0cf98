package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samplecodes/testkata/internal/config"
)

// slow refills so slowly that tests never see a new token.
const slow = 0.001

func TestTokenBucketLimiter_Allow(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 5})
		defer limiter.Close()

		ctx := context.Background()
		identifier := "192.168.1.1"

		for i := 0; i < 5; i++ {
			result, err := limiter.Allow(ctx, identifier)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i+1)
			assert.Equal(t, 5-i-1, result.Remaining)
			assert.Equal(t, 5, result.Limit)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 2})
		defer limiter.Close()

		ctx := context.Background()
		identifier := "192.168.1.1"

		for i := 0; i < 2; i++ {
			result, err := limiter.Allow(ctx, identifier)
			require.NoError(t, err)
			assert.True(t, result.Allowed)
		}

		for i := 0; i < 2; i++ {
			result, err := limiter.Allow(ctx, identifier)
			require.NoError(t, err)
			assert.False(t, result.Allowed, "request should be blocked")
			assert.Equal(t, 0, result.Remaining)
			assert.True(t, result.RetryAfter > 0, "should have retry-after duration")
		}
	})

	t.Run("tracks identifiers separately", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 1})
		defer limiter.Close()

		ctx := context.Background()

		r1, err := limiter.Allow(ctx, "ip:1")
		require.NoError(t, err)
		r2, err := limiter.Allow(ctx, "ip:2")
		require.NoError(t, err)

		assert.True(t, r1.Allowed)
		assert.True(t, r2.Allowed)
		assert.Equal(t, 2, limiter.Len())
	})

	t.Run("refills over time", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: 20, Burst: 1})
		defer limiter.Close()

		ctx := context.Background()

		result, err := limiter.Allow(ctx, "x")
		require.NoError(t, err)
		require.True(t, result.Allowed)

		result, err = limiter.Allow(ctx, "x")
		require.NoError(t, err)
		require.False(t, result.Allowed)
		assert.LessOrEqual(t, result.RetryAfter, 50*time.Millisecond)

		time.Sleep(80 * time.Millisecond)

		result, err = limiter.Allow(ctx, "x")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("zero rate is unlimited", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: 0, Burst: 3})
		defer limiter.Close()

		for i := 0; i < 50; i++ {
			result, err := limiter.Allow(context.Background(), "x")
			require.NoError(t, err)
			require.True(t, result.Allowed)
		}
	})
}

func TestTokenBucketLimiter_Reset(t *testing.T) {
	limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 1})
	defer limiter.Close()

	ctx := context.Background()
	identifier := "192.168.1.1"

	result, err := limiter.Allow(ctx, identifier)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.Allow(ctx, identifier)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	require.NoError(t, limiter.Reset(ctx, identifier))

	result, err = limiter.Allow(ctx, identifier)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "should be allowed after reset")
}

func TestTokenBucketLimiter_Concurrency(t *testing.T) {
	t.Run("handles concurrent requests safely", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 100})
		defer limiter.Close()

		ctx := context.Background()

		var wg sync.WaitGroup
		var allowed int64

		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := limiter.Allow(ctx, "192.168.1.1")
				if err == nil && result.Allowed {
					atomic.AddInt64(&allowed, 1)
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, int64(100), allowed, "exactly burst requests should be allowed")
	})

	t.Run("handles concurrent requests for different identifiers", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 10})
		defer limiter.Close()

		ctx := context.Background()

		var wg sync.WaitGroup
		var totalAllowed int64

		for id := 0; id < 10; id++ {
			identifier := string(rune('A' + id))
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					result, err := limiter.Allow(ctx, id)
					if err == nil && result.Allowed {
						atomic.AddInt64(&totalAllowed, 1)
					}
				}(identifier)
			}
		}

		wg.Wait()

		assert.Equal(t, int64(100), totalAllowed)
	})
}

func TestTokenBucketLimiter_ContextCancellation(t *testing.T) {
	limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 10})
	defer limiter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := limiter.Allow(ctx, "test")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, limiter.Reset(ctx, "test"), context.Canceled)
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	limiter := NewTokenBucketLimiter(Config{RPS: slow, Burst: 1, IdleTTL: time.Hour})
	defer limiter.Close()

	_, err := limiter.Allow(context.Background(), "stale")
	require.NoError(t, err)

	limiter.cleanup(time.Now())
	assert.Equal(t, 1, limiter.Len())

	limiter.cleanup(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, limiter.Len())
}

func TestTokenBucketLimiter_CloseTwice(t *testing.T) {
	limiter := NewTokenBucketLimiter(DefaultConfig())

	assert.NoError(t, limiter.Close())
	assert.NoError(t, limiter.Close())
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RateLimitConfig{Enabled: true, RPS: 5, Burst: 7})
	assert.Equal(t, 5.0, cfg.RPS)
	assert.Equal(t, 7, cfg.Burst)
	assert.Equal(t, DefaultConfig().IdleTTL, cfg.IdleTTL)

	cfg = FromConfig(config.RateLimitConfig{RPS: 5})
	assert.Equal(t, DefaultConfig().Burst, cfg.Burst)
}
