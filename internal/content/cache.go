package content

import (
	"context"
	"sync"
	"time"
)

// Cache is the read cache in front of the store, keyed by section name.
// It is an injected dependency, not ambient state: every accessor gets the
// cache it should use handed to it. Bounded staleness is acceptable for
// marketing content, so entries carry a TTL; correctness comes from the
// explicit Invalidate calls issued on every write.
type Cache interface {
	// Get returns the cached payload for a section, or ok=false on miss.
	Get(ctx context.Context, section string) (map[string]any, bool)

	// Set stores a payload under the section name.
	Set(ctx context.Context, section string, payload map[string]any)

	// Invalidate drops the named sections. Used after writes so dependent
	// readers are never served a payload older than the write.
	Invalidate(ctx context.Context, sections ...string)
}

// MemoryCache is a process-local Cache used by tests and the standalone
// content binary. Entries expire after ttl; a ttl of zero disables expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload map[string]any
	savedAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(ctx context.Context, section string) (map[string]any, bool) {
	c.mu.RLock()
	e, ok := c.entries[section]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.savedAt) > c.ttl {
		c.Invalidate(ctx, section)
		return nil, false
	}
	return ClonePayload(e.payload), true
}

func (c *MemoryCache) Set(_ context.Context, section string, payload map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[section] = memoryEntry{payload: ClonePayload(payload), savedAt: time.Now()}
}

func (c *MemoryCache) Invalidate(_ context.Context, sections ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range sections {
		delete(c.entries, s)
	}
}
