package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ListCache caches list query results per collection, keyed by a digest of the
// filter and options. A nil ListCache is a valid no-op.
type ListCache struct {
	store   cacheStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewListCache constructs a ListCache over the given store.
func NewListCache(store cacheStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *ListCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListCache{store: store, metrics: metrics, ttl: ttl, logger: logger}
}

// Key derives a stable cache key from the collection name and query shape.
func (c *ListCache) Key(collection string, filter, opts interface{}) string {
	if c == nil {
		return ""
	}
	payload, err := json.Marshal([]interface{}{filter, opts})
	if err != nil {
		return ""
	}
	digest := fnv.New64a()
	_, _ = digest.Write(payload)
	return fmt.Sprintf("%s:list:%x", collection, digest.Sum64())
}

// Lookup fills dest from the cache, reporting whether it hit.
func (c *ListCache) Lookup(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || key == "" {
		return false
	}
	start := time.Now()
	err := c.store.Get(ctx, key, dest)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Store writes the value under key. Failures are logged, never surfaced.
func (c *ListCache) Store(ctx context.Context, key string, value interface{}) {
	if c == nil || key == "" {
		return
	}
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached list for the collection.
func (c *ListCache) Invalidate(ctx context.Context, collection string) {
	if c == nil {
		return
	}
	if err := c.store.DeleteByPattern(ctx, collection+":list:*"); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("collection", collection), zap.Error(err))
	}
}
