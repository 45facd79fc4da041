package editor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/luminedge/academy-cms/internal/content"
)

var (
	// ErrNotLoaded is returned when a controller is used before Load.
	ErrNotLoaded = errors.New("editor: section not loaded")

	// ErrDirty is returned by Close when unsaved edits would be dropped.
	// The caller is expected to confirm with the user and retry with
	// force=true, or call Discard first.
	ErrDirty = errors.New("editor: unsaved changes")
)

// Controller holds one editor instance's draft copy of a section and drives
// the audited save protocol on commit. A controller exclusively owns its
// draft; the section of record lives in the store and is shared.
type Controller struct {
	def      Definition
	accessor *content.Accessor
	saver    *content.Saver

	mu       sync.Mutex
	loaded   bool
	draft    map[string]any
	baseline map[string]any
	// baselineAt is the metadata.updatedAt observed at load (or promoted on
	// a successful save); nil until the section has been written once.
	baselineAt *time.Time
}

// New builds a controller for the given content-type definition.
func New(def Definition, accessor *content.Accessor, saver *content.Saver) *Controller {
	return &Controller{def: def, accessor: accessor, saver: saver}
}

// NewForSection builds a controller for a registered content type.
func NewForSection(section string, accessor *content.Accessor, saver *content.Saver) (*Controller, error) {
	def, ok := DefinitionFor(section)
	if !ok {
		return nil, fmt.Errorf("editor: unknown section %q", section)
	}
	return New(def, accessor, saver), nil
}

// Load fetches the section and resets the draft to it. A section that does
// not exist yet yields a draft equal to the type's defaults with no baseline
// timestamp. Defaults also backfill keys a stored payload is missing.
func (c *Controller) Load(ctx context.Context) error {
	payload, err := c.accessor.Load(ctx, c.def.Section)
	if err != nil {
		return err
	}

	merged := content.ClonePayload(c.def.Defaults)
	if merged == nil {
		merged = map[string]any{}
	}
	var at *time.Time
	if payload != nil {
		if meta := content.ExtractMetadata(payload); meta != nil {
			t := meta.UpdatedAt
			at = &t
		}
		for k, v := range payload {
			if k == content.MetadataKey {
				continue
			}
			merged[k] = v
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = merged
	c.draft = content.ClonePayload(merged)
	c.baselineAt = at
	c.loaded = true
	return nil
}

// Draft returns a deep copy of the current draft.
func (c *Controller) Draft() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return content.ClonePayload(c.draft)
}

// Baseline returns the timestamp the next save will be checked against, or
// nil when the section has never been saved.
func (c *Controller) Baseline() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.baselineAt == nil {
		return nil
	}
	t := *c.baselineAt
	return &t
}

// IsDirty reports whether the draft structurally differs from the baseline.
func (c *Controller) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !reflect.DeepEqual(c.draft, c.baseline)
}

// UpdateField sets the value at a dotted path ("items.t1.quote") in the
// draft, creating intermediate maps as needed.
func (c *Controller) UpdateField(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return ErrNotLoaded
	}
	if path == content.MetadataKey || strings.HasPrefix(path, content.MetadataKey+".") {
		return fmt.Errorf("editor: %q is reserved", content.MetadataKey)
	}
	next := content.ClonePayload(c.draft)
	if err := setAtPath(next, strings.Split(path, "."), value); err != nil {
		return err
	}
	c.draft = next
	return nil
}

// AddItem inserts a new entry into a map-of-items section under a generated
// unique key and returns the key.
func (c *Controller) AddItem(item map[string]any) (string, error) {
	key := newItemKey()
	if err := c.UpdateField(key, item); err != nil {
		return "", err
	}
	return key, nil
}

// RemoveDraftItem drops one item from the draft only; nothing is persisted
// until Save.
func (c *Controller) RemoveDraftItem(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := content.ClonePayload(c.draft)
	delete(next, key)
	c.draft = next
}

// DeleteItem removes a persisted item from the store immediately and drops
// it from the draft and baseline. The section's metadata is untouched.
func (c *Controller) DeleteItem(ctx context.Context, key string) error {
	if err := c.accessor.Remove(ctx, c.def.Section, key, c.def.Dependents...); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.draft, key)
	delete(c.baseline, key)
	return nil
}

// Validate runs the content type's field limits against the draft. Purely
// local; no store round-trip.
func (c *Controller) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Limits.Validate(c.draft)
}

// Save commits the draft through the audited save protocol. Validation
// failures block the save before any store call. On success the draft is
// promoted to the new baseline; on conflict or failure the draft is left
// untouched so no edit is ever lost without an explicit user decision.
func (c *Controller) Save(ctx context.Context, id content.Identity) error {
	return c.save(ctx, id, false)
}

// ForceSave commits unconditionally, skipping the conflict check. Meant to
// be offered only after a conflict has been shown to the user.
func (c *Controller) ForceSave(ctx context.Context, id content.Identity) error {
	return c.save(ctx, id, true)
}

func (c *Controller) save(ctx context.Context, id content.Identity, force bool) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if err := c.def.Limits.Validate(c.draft); err != nil {
		c.mu.Unlock()
		return err
	}
	req := content.SaveRequest{
		Section:    c.def.Section,
		Payload:    content.ClonePayload(c.draft),
		Baseline:   c.baselineAt,
		Force:      force,
		Identity:   id,
		Dependents: c.def.Dependents,
	}
	c.mu.Unlock()

	meta, err := c.saver.Save(ctx, req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = content.ClonePayload(req.Payload)
	if meta != nil {
		t := meta.UpdatedAt
		c.baselineAt = &t
	}
	return nil
}

// Discard resets the draft to the last-loaded baseline, clearing dirtiness.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = content.ClonePayload(c.baseline)
}

// Close is the tab-switch guard: it fails with ErrDirty while unsaved edits
// exist unless force is set.
func (c *Controller) Close(force bool) error {
	if !force && c.IsDirty() {
		return ErrDirty
	}
	return nil
}

func setAtPath(m map[string]any, path []string, value any) error {
	if len(path) == 0 || path[0] == "" {
		return errors.New("editor: empty field path")
	}
	if len(path) == 1 {
		m[path[0]] = value
		return nil
	}
	child, ok := m[path[0]]
	if !ok || child == nil {
		next := map[string]any{}
		m[path[0]] = next
		return setAtPath(next, path[1:], value)
	}
	nested, ok := child.(map[string]any)
	if !ok {
		return fmt.Errorf("editor: field %q is not a nested object", path[0])
	}
	return setAtPath(nested, path[1:], value)
}

// newItemKey generates a unique key for map-of-items entries.
func newItemKey() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a time-derived key rather than panic
		return fmt.Sprintf("itm_%d", time.Now().UnixNano())
	}
	return "itm_" + hex.EncodeToString(b)
}
