package content

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetadataKey is the reserved key inside every section payload that carries
// the last-writer audit record. Editors never set it directly; the Saver
// stamps it on every write.
const MetadataKey = "metadata"

// ContentRoot is the logical path prefix under which all sections live.
const ContentRoot = "content"

// Metadata is the audit record attached to a section on each save.
// UpdatedAt is assigned by the store's server clock, never by the client,
// so it is monotonically non-decreasing per section.
type Metadata struct {
	UpdatedBy    string    `bson:"updatedBy" json:"updatedBy"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
	UpdatedByUID string    `bson:"updatedByUid,omitempty" json:"updatedByUid,omitempty"`
}

// Identity names the currently authenticated editor for audit stamping.
// A zero Identity is valid and stamps the "unknown" sentinel.
type Identity struct {
	Email string
	UID   string
}

// UnknownEditor is stamped when no authenticated session is available.
// Audit here is best-effort, not enforcing.
const UnknownEditor = "unknown"

// SectionPath maps a logical section name to its store path.
func SectionPath(name string) string {
	return ContentRoot + "/" + name
}

// ClonePayload returns a deep copy of a section payload. Nested maps and
// slices are copied; scalar values are shared (they are immutable anyway).
func ClonePayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return ClonePayload(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// ExtractMetadata pulls the reserved metadata record out of a loaded payload.
// Payloads may arrive from the Mongo store (native time / primitive.DateTime),
// from the Redis cache (JSON round-trip turns times into RFC3339 strings) or
// from tests (typed values), so all three encodings are accepted.
// Returns nil when the payload has no metadata yet.
func ExtractMetadata(payload map[string]any) *Metadata {
	if payload == nil {
		return nil
	}
	raw, ok := payload[MetadataKey]
	if !ok || raw == nil {
		return nil
	}
	switch t := raw.(type) {
	case *Metadata:
		return t
	case Metadata:
		return &t
	case map[string]any:
		m := &Metadata{}
		if s, ok := t["updatedBy"].(string); ok {
			m.UpdatedBy = s
		}
		if s, ok := t["updatedByUid"].(string); ok {
			m.UpdatedByUID = s
		}
		if at, ok := decodeTime(t["updatedAt"]); ok {
			m.UpdatedAt = at
		}
		return m
	default:
		return nil
	}
}

func decodeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time().UTC(), true
	case string:
		at, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return at, true
	default:
		return time.Time{}, false
	}
}

// NewMetadataPayload builds the metadata map the Saver merges alongside the
// draft payload. UpdatedAt is the server-timestamp token, resolved by the
// store at commit time.
func NewMetadataPayload(id Identity) map[string]any {
	by := id.Email
	if by == "" {
		by = UnknownEditor
	}
	m := map[string]any{
		"updatedBy": by,
		"updatedAt": ServerTimestamp(),
	}
	if id.UID != "" {
		m["updatedByUid"] = id.UID
	}
	return m
}

func (m *Metadata) String() string {
	if m == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s@%s", m.UpdatedBy, m.UpdatedAt.Format(time.RFC3339))
}
