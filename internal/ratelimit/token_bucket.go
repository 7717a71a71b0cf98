package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter keeps one golang.org/x/time/rate limiter per identifier.
type TokenBucketLimiter struct {
	config Config
	limit  rate.Limit

	mu      sync.Mutex
	buckets map[string]*bucket

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*TokenBucketLimiter)(nil)

// NewTokenBucketLimiter creates a limiter and starts its idle-bucket sweeper.
func NewTokenBucketLimiter(cfg Config) *TokenBucketLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultConfig().IdleTTL
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	l := &TokenBucketLimiter{
		config:  cfg,
		limit:   limit,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Allow takes one token from the identifier's bucket if one is available.
func (l *TokenBucketLimiter) Allow(ctx context.Context, identifier string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	lim := l.bucketFor(identifier, now)

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return &Result{Allowed: false, Limit: l.config.Burst}, nil
	}

	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return &Result{
			Allowed:    false,
			Remaining:  0,
			ResetAfter: l.timeToFull(lim, now),
			RetryAfter: delay,
			Limit:      l.config.Burst,
		}, nil
	}

	return &Result{
		Allowed:    true,
		Remaining:  l.remaining(lim, now),
		ResetAfter: l.timeToFull(lim, now),
		Limit:      l.config.Burst,
	}, nil
}

// Reset clears the rate limit state for an identifier.
func (l *TokenBucketLimiter) Reset(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.buckets, identifier)
	l.mu.Unlock()
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (l *TokenBucketLimiter) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	l.wg.Wait()
	return nil
}

// Len returns the number of tracked identifiers.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *TokenBucketLimiter) bucketFor(identifier string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[identifier]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.config.Burst)}
		l.buckets[identifier] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *TokenBucketLimiter) remaining(lim *rate.Limiter, now time.Time) int {
	if l.limit == rate.Inf {
		return l.config.Burst
	}
	tokens := int(lim.TokensAt(now))
	if tokens < 0 {
		return 0
	}
	return tokens
}

func (l *TokenBucketLimiter) timeToFull(lim *rate.Limiter, now time.Time) time.Duration {
	if l.limit == rate.Inf {
		return 0
	}
	missing := float64(l.config.Burst) - lim.TokensAt(now)
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(l.limit) * float64(time.Second))
}

func (l *TokenBucketLimiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.IdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

// cleanup drops buckets idle for at least IdleTTL.
func (l *TokenBucketLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.config.IdleTTL {
			delete(l.buckets, id)
		}
	}
}
