package content

import "context"

// Store is the remote document store contract the content layer depends on.
// Paths are logical ("content/<section>"); how a store maps them to physical
// storage is its own concern. Absent paths read as (nil, nil), not as errors.
type Store interface {
	// ReadSection returns the full payload at path, metadata included.
	ReadSection(ctx context.Context, path string) (map[string]any, error)

	// ReadMetadata returns only the reserved metadata record at path.
	// Cheaper than ReadSection; used by the conflict check.
	ReadMetadata(ctx context.Context, path string) (*Metadata, error)

	// MergeWrite shallow-merges partial into the payload at path: keys
	// present in partial overwrite, absent keys are left untouched. Any
	// ServerTimestamp token inside partial is resolved to the store's own
	// clock at commit. Returns the metadata as stored after the write.
	MergeWrite(ctx context.Context, path string, partial map[string]any) (*Metadata, error)

	// DeleteItem removes one top-level key from the payload at path.
	// Deleting from an absent path is a no-op.
	DeleteItem(ctx context.Context, path, itemKey string) error
}
