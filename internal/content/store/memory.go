package store

import (
	"context"
	"sync"
	"time"

	"github.com/luminedge/academy-cms/internal/content"
)

// MemoryStore implements content.Store in process memory. Used by unit tests
// and the standalone content binary when no MongoDB is configured.
//
// The server clock is a strictly increasing logical clock (one millisecond
// per write), so two writes never share a timestamp even inside one wall
// clock tick - the same guarantee a real server clock gives the conflict
// check.
type MemoryStore struct {
	mu       sync.RWMutex
	sections map[string]map[string]any
	base     time.Time
	ticks    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sections: make(map[string]map[string]any),
		base:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

// next advances the logical server clock. Callers hold mu.
func (m *MemoryStore) next() time.Time {
	m.ticks++
	return m.base.Add(time.Duration(m.ticks) * time.Millisecond)
}

func (m *MemoryStore) ReadSection(_ context.Context, path string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sec, ok := m.sections[path]
	if !ok {
		return nil, nil
	}
	return content.ClonePayload(sec), nil
}

func (m *MemoryStore) ReadMetadata(ctx context.Context, path string) (*content.Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sec, ok := m.sections[path]
	if !ok {
		return nil, nil
	}
	return content.ExtractMetadata(sec), nil
}

func (m *MemoryStore) MergeWrite(_ context.Context, path string, partial map[string]any) (*content.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sec, ok := m.sections[path]
	if !ok {
		sec = map[string]any{}
		m.sections[path] = sec
	}
	now := m.next()
	// shallow merge: only keys present in partial are touched
	for k, v := range partial {
		sec[k] = resolveTimestamps(content.ClonePayload(map[string]any{k: v})[k], now)
	}
	return content.ExtractMetadata(sec), nil
}

func (m *MemoryStore) DeleteItem(_ context.Context, path, itemKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sec, ok := m.sections[path]; ok {
		delete(sec, itemKey)
	}
	return nil
}

// resolveTimestamps replaces any ServerTimestamp token in v with the commit
// time, recursing into nested maps and slices.
func resolveTimestamps(v any, now time.Time) any {
	if content.IsServerTimestamp(v) {
		return now
	}
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = resolveTimestamps(e, now)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = resolveTimestamps(e, now)
		}
		return t
	default:
		return v
	}
}
