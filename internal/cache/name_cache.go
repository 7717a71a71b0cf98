package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samplecodes/testkata/internal/display"
	"github.com/samplecodes/testkata/internal/metrics"
	"github.com/samplecodes/testkata/pkg/logger"
)

// DefaultNameTTL is used when NewNameCache is given a non-positive TTL.
const DefaultNameTTL = 10 * time.Minute

// CachedName is the JSON value stored per user id.
type CachedName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameCache is a read-through cache in front of a display.NameLookup.
// Only successful lookups are cached; lookup errors pass through unchanged.
type NameCache struct {
	next      display.NameLookup
	cache     Cache
	keyPrefix string
	ttl       time.Duration
	log       *zap.Logger
}

var _ display.NameLookup = (*NameCache)(nil)

// NewNameCache wraps next with cache.
func NewNameCache(next display.NameLookup, cache Cache, keyPrefix string, ttl time.Duration, log *zap.Logger) *NameCache {
	if ttl <= 0 {
		ttl = DefaultNameTTL
	}
	return &NameCache{
		next:      next,
		cache:     cache,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		log:       logger.OrNop(log),
	}
}

// GetUserName returns the cached name for id, falling back to the wrapped lookup.
func (c *NameCache) GetUserName(ctx context.Context, id string) (string, error) {
	if id == "" {
		return c.next.GetUserName(ctx, id)
	}

	if name, err := c.get(ctx, id); err == nil {
		metrics.RecordCacheHit()
		return name, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn("name cache read failed", zap.String("user_id", id), zap.Error(err))
	}
	metrics.RecordCacheMiss()

	name, err := c.next.GetUserName(ctx, id)
	if err != nil {
		return "", err
	}

	if err := c.set(ctx, CachedName{ID: id, Name: name}); err != nil {
		c.log.Warn("name cache write failed", zap.String("user_id", id), zap.Error(err))
	}
	return name, nil
}

// Invalidate drops the cached name for id.
func (c *NameCache) Invalidate(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, c.key(id))
}

func (c *NameCache) get(ctx context.Context, id string) (string, error) {
	data, err := c.cache.Get(ctx, c.key(id))
	if err != nil {
		return "", err
	}

	var cached CachedName
	if err := json.Unmarshal(data, &cached); err != nil {
		return "", fmt.Errorf("failed to unmarshal cached name: %w", err)
	}
	return cached.Name, nil
}

func (c *NameCache) set(ctx context.Context, cached CachedName) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal name: %w", err)
	}
	return c.cache.Set(ctx, c.key(cached.ID), data, c.ttl)
}

func (c *NameCache) key(id string) string {
	return c.keyPrefix + id
}
