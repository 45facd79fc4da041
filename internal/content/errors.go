package content

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSaveInFlight is returned when a save is attempted for a section
	// that already has a save pending. Overlapping saves from the same
	// draft are rejected, not queued.
	ErrSaveInFlight = errors.New("save already in flight for this section")

	// ErrPermission marks a store rejection due to missing rights. It is
	// surfaced verbatim and never retried at this layer.
	ErrPermission = errors.New("permission denied")

	// ErrReservedKey is returned when a write or delete targets the
	// reserved metadata key. Deleting it would erase the last-writer
	// record and let a stale baseline slip past the conflict check.
	ErrReservedKey = errors.New("the metadata key is reserved")
)

// ConflictError reports that the optimistic-lock check found a newer write.
// It is never resolved silently: the caller must surface it and let a human
// choose between discard-and-reload and force-overwrite.
type ConflictError struct {
	Section      string
	LastEditor   string
	LastEditedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("section %q was modified by %s at %s", e.Section, e.LastEditor, e.LastEditedAt.Format(time.RFC3339))
}

// IsConflict reports whether err carries a ConflictError and returns it.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// userMessages maps error classes to the text shown to editors. Anything not
// listed falls back to a generic failure message.
var userMessages = map[error]string{
	ErrSaveInFlight: "A save is already in progress. Wait a moment and try again.",
	ErrPermission:   "You do not have permission to edit this content. Contact an administrator.",
	ErrReservedKey:  "This entry is managed automatically and cannot be removed.",
}

// UserMessage returns a human-readable message for err. Conflicts name the
// other editor so the choice between reload and overwrite is informed.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := IsConflict(err); ok {
		return fmt.Sprintf("This content was changed by %s while you were editing. Reload to see their changes, or force-save to overwrite.", ce.LastEditor)
	}
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Saving failed. Your edits are still here - check your connection and retry."
}
