package content

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luminedge/academy-cms/pkg/logger"
)

// RedisCache implements Cache on a shared Redis instance so all service
// replicas see the same invalidations. Payloads are stored as JSON under
// "<prefix><section>" with a bounded TTL.
//
// Cache operations are best-effort: a Redis error degrades to a miss (or a
// skipped Set) and is logged, never surfaced to the caller.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// DefaultCacheTTL bounds staleness for readers that race an invalidation
// from another replica.
const DefaultCacheTTL = 5 * time.Minute

// NewRedisCache creates a Redis-backed section cache. Prefix may be empty.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "cms:section:"
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(section string) string {
	return c.prefix + section
}

func (c *RedisCache) Get(ctx context.Context, section string) (map[string]any, bool) {
	b, err := c.client.Get(ctx, c.key(section)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("cache get %s: %v", section, err)
		}
		return nil, false
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		logger.Warnf("cache decode %s: %v", section, err)
		return nil, false
	}
	return payload, true
}

func (c *RedisCache) Set(ctx context.Context, section string, payload map[string]any) {
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Warnf("cache encode %s: %v", section, err)
		return
	}
	if err := c.client.Set(ctx, c.key(section), b, c.ttl).Err(); err != nil {
		logger.Warnf("cache set %s: %v", section, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, sections ...string) {
	if len(sections) == 0 {
		return
	}
	keys := make([]string, len(sections))
	for i, s := range sections {
		keys[i] = c.key(s)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warnf("cache invalidate %v: %v", sections, err)
	}
}
