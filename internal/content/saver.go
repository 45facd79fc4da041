package content

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luminedge/academy-cms/pkg/logger"
	"github.com/luminedge/academy-cms/pkg/metrics"
)

// SaveOutcome classifies how a save attempt ended, for the audit trail.
type SaveOutcome string

const (
	OutcomeSaved    SaveOutcome = "saved"
	OutcomeConflict SaveOutcome = "conflict"
	OutcomeFailed   SaveOutcome = "failed"
)

// AuditFunc is invoked after every completed save attempt. Recording is
// best-effort: implementations must not block the save path on failure.
type AuditFunc func(ctx context.Context, section string, id Identity, forced bool, outcome SaveOutcome)

// SaveRequest carries one save attempt through the Saver.
type SaveRequest struct {
	Section string
	Payload map[string]any

	// Baseline is the metadata.updatedAt observed when the draft was
	// loaded. Nil means the section had no metadata at load time (first
	// save), which skips the conflict check.
	Baseline *time.Time

	// Force bypasses the conflict check entirely. Offered to a human
	// operator after a conflict has been shown, never chosen silently.
	Force bool

	Identity Identity

	// Dependents are additional sections to invalidate on success.
	Dependents []string
}

// Saver wraps the accessor's write path with audit metadata stamping and
// optimistic-concurrency conflict detection. One save at a time per section:
// an overlapping save from the same process fails fast with ErrSaveInFlight.
//
// The guarantee is advisory, detect-and-warn: two clients can still race the
// metadata read and both write. The check narrows the window; the server
// clock decides the final order.
type Saver struct {
	store    Store
	accessor *Accessor

	mu       sync.Mutex
	inflight map[string]struct{}

	audit AuditFunc
}

func NewSaver(store Store, accessor *Accessor) *Saver {
	return &Saver{store: store, accessor: accessor, inflight: make(map[string]struct{})}
}

// OnSave registers an audit hook. Pass nil to disable.
func (s *Saver) OnSave(fn AuditFunc) {
	s.audit = fn
}

// Save runs one attempt through the protocol:
//
//	check conflict (unless forced or no baseline) -> stamp metadata -> merge write
//
// The conflict read always completes before the write is issued; that strict
// sequencing is the whole basis of the optimistic lock. On conflict the save
// is aborted with a *ConflictError and nothing is written. On success the new
// server-assigned metadata is returned so the caller can promote its baseline.
func (s *Saver) Save(ctx context.Context, req SaveRequest) (*Metadata, error) {
	if req.Section == "" {
		return nil, fmt.Errorf("save: section name required")
	}
	if err := s.acquire(req.Section); err != nil {
		return nil, err
	}
	defer s.release(req.Section)

	metrics.SaveAttempts.WithLabelValues(req.Section).Inc()

	if !req.Force && req.Baseline != nil {
		current, err := s.store.ReadMetadata(ctx, SectionPath(req.Section))
		if err != nil {
			s.record(ctx, req, OutcomeFailed)
			return nil, fmt.Errorf("conflict check for %q: %w", req.Section, err)
		}
		// Equality is not a conflict: the writer reloaded at least as
		// recently as the last writer. Only strictly newer blocks.
		if current != nil && current.UpdatedAt.After(*req.Baseline) {
			metrics.SaveConflicts.WithLabelValues(req.Section).Inc()
			s.record(ctx, req, OutcomeConflict)
			return nil, &ConflictError{
				Section:      req.Section,
				LastEditor:   current.UpdatedBy,
				LastEditedAt: current.UpdatedAt,
			}
		}
	}

	stamped := ClonePayload(req.Payload)
	if stamped == nil {
		stamped = map[string]any{}
	}
	stamped[MetadataKey] = NewMetadataPayload(req.Identity)

	meta, err := s.accessor.Save(ctx, req.Section, stamped, req.Dependents...)
	if err != nil {
		metrics.SaveFailures.WithLabelValues(req.Section).Inc()
		s.record(ctx, req, OutcomeFailed)
		return nil, err
	}
	s.record(ctx, req, OutcomeSaved)
	return meta, nil
}

func (s *Saver) acquire(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[section]; busy {
		return fmt.Errorf("section %q: %w", section, ErrSaveInFlight)
	}
	s.inflight[section] = struct{}{}
	return nil
}

func (s *Saver) release(section string) {
	s.mu.Lock()
	delete(s.inflight, section)
	s.mu.Unlock()
}

func (s *Saver) record(ctx context.Context, req SaveRequest, outcome SaveOutcome) {
	if s.audit == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("audit hook panicked for %q: %v", req.Section, r)
		}
	}()
	s.audit(ctx, req.Section, req.Identity, req.Force, outcome)
}
