package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/luminedge/academy-cms/internal/content"
	"github.com/luminedge/academy-cms/pkg/logger"
)

// Entry is one audited save attempt as persisted in the audit_log collection.
type Entry struct {
	Section   string    `bson:"section" json:"section"`
	Editor    string    `bson:"editor" json:"editor"`
	EditorUID string    `bson:"editorUid,omitempty" json:"editorUid,omitempty"`
	Forced    bool      `bson:"forced" json:"forced"`
	Outcome   string    `bson:"outcome" json:"outcome"` // saved|conflict|failed
	At        time.Time `bson:"at" json:"at"`
}

// Log appends save attempts to a Mongo collection. A nil Log (or nil
// collection) is a usable no-op, so callers don't need to guard.
type Log struct {
	col *mongo.Collection
}

func NewLog(col *mongo.Collection) *Log {
	return &Log{col: col}
}

// Record persists one entry. Best-effort: failures are logged and swallowed
// so the save path never depends on the audit trail.
func (l *Log) Record(ctx context.Context, e Entry) {
	if l == nil || l.col == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if _, err := l.col.InsertOne(ctx, e); err != nil {
		logger.Warnf("audit record for %q failed: %v", e.Section, err)
	}
}

// RecentForSection returns the newest entries for a section, newest first.
func (l *Log) RecentForSection(ctx context.Context, section string, limit int64) ([]Entry, error) {
	if l == nil || l.col == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().SetSort(bson.M{"at": -1}).SetLimit(limit)
	cur, err := l.col.Find(ctx, bson.M{"section": section}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Entry{}
	for cur.Next(ctx) {
		var e Entry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

// Hook adapts the log into the saver's audit callback.
func (l *Log) Hook() content.AuditFunc {
	return func(ctx context.Context, section string, id content.Identity, forced bool, outcome content.SaveOutcome) {
		editor := id.Email
		if editor == "" {
			editor = content.UnknownEditor
		}
		l.Record(ctx, Entry{
			Section:   section,
			Editor:    editor,
			EditorUID: id.UID,
			Forced:    forced,
			Outcome:   string(outcome),
		})
	}
}
