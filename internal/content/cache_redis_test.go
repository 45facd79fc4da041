package content

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisCache(client, "test:section:", ttl), m
}

func TestRedisCacheSetGetInvalidate(t *testing.T) {
	cache, _ := newRedisCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "hero")
	require.False(t, ok)

	cache.Set(ctx, "hero", map[string]any{"headline": "hi", "count": float64(3)})
	got, ok := cache.Get(ctx, "hero")
	require.True(t, ok)
	require.Equal(t, "hi", got["headline"])
	require.Equal(t, float64(3), got["count"])

	cache.Invalidate(ctx, "hero", "about")
	_, ok = cache.Get(ctx, "hero")
	require.False(t, ok)
}

func TestRedisCacheTTL(t *testing.T) {
	cache, m := newRedisCache(t, 2*time.Second)
	ctx := context.Background()

	cache.Set(ctx, "hero", map[string]any{"headline": "hi"})
	_, ok := cache.Get(ctx, "hero")
	require.True(t, ok)

	m.FastForward(3 * time.Second)
	_, ok = cache.Get(ctx, "hero")
	require.False(t, ok, "entry must expire after its TTL")
}

func TestRedisCacheMetadataSurvivesJSONRoundTrip(t *testing.T) {
	cache, _ := newRedisCache(t, time.Minute)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	cache.Set(ctx, "hero", map[string]any{
		"headline":  "hi",
		MetadataKey: &Metadata{UpdatedBy: "alice@example.com", UpdatedAt: at},
	})

	got, ok := cache.Get(ctx, "hero")
	require.True(t, ok)
	meta := ExtractMetadata(got)
	require.NotNil(t, meta)
	require.Equal(t, "alice@example.com", meta.UpdatedBy)
	require.True(t, meta.UpdatedAt.Equal(at))
}

func TestRedisCacheErrorsDegradeToMiss(t *testing.T) {
	cache, m := newRedisCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "hero", map[string]any{"headline": "hi"})
	m.Close()

	_, ok := cache.Get(ctx, "hero")
	require.False(t, ok)
	// writes after the backend is gone must not panic or error out
	cache.Set(ctx, "hero", map[string]any{"headline": "later"})
	cache.Invalidate(ctx, "hero")
}
