package content

import (
	"context"
	"fmt"

	"github.com/luminedge/academy-cms/pkg/metrics"
)

// Accessor translates logical section names into store paths and layers the
// read cache over the store. It adds no save semantics of its own - metadata
// stamping and conflict detection live in the Saver, on top of this.
type Accessor struct {
	store Store
	cache Cache
}

func NewAccessor(store Store, cache Cache) *Accessor {
	return &Accessor{store: store, cache: cache}
}

// Load fetches a section payload, serving from cache when possible. A section
// that does not exist yet yields (nil, nil): callers treat that as "use
// defaults", not as an error.
func (a *Accessor) Load(ctx context.Context, section string) (map[string]any, error) {
	if payload, ok := a.cache.Get(ctx, section); ok {
		metrics.CacheHits.WithLabelValues(section).Inc()
		return payload, nil
	}
	metrics.CacheMisses.WithLabelValues(section).Inc()
	payload, err := a.store.ReadSection(ctx, SectionPath(section))
	if err != nil {
		return nil, fmt.Errorf("load section %q: %w", section, err)
	}
	if payload != nil {
		a.cache.Set(ctx, section, payload)
	}
	return payload, nil
}

// Save issues a shallow merge write and invalidates the section plus any
// dependent sections the caller declares (content denormalized into another
// section must not be served stale from there either). Store errors propagate
// unchanged.
func (a *Accessor) Save(ctx context.Context, section string, partial map[string]any, dependents ...string) (*Metadata, error) {
	meta, err := a.store.MergeWrite(ctx, SectionPath(section), partial)
	if err != nil {
		return nil, err
	}
	a.cache.Invalidate(ctx, append([]string{section}, dependents...)...)
	return meta, nil
}

// Remove deletes one nested item from a map-of-items section and invalidates
// the same way Save does. The reserved metadata key is not an item and can
// never be removed this way: without it every baseline looks current and the
// conflict check stops detecting anything.
func (a *Accessor) Remove(ctx context.Context, section, itemKey string, dependents ...string) error {
	if itemKey == MetadataKey {
		return fmt.Errorf("remove %q from %q: %w", itemKey, section, ErrReservedKey)
	}
	if err := a.store.DeleteItem(ctx, SectionPath(section), itemKey); err != nil {
		return err
	}
	a.cache.Invalidate(ctx, append([]string{section}, dependents...)...)
	return nil
}
