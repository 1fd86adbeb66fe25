package tracker

import (
	"time"

	"github.com/viant/changetrack/engine"
)

// DefaultTable is the table name used when no other is configured.
const DefaultTable = "change_tracker"

// ChangeTolerance is the largest drift between the stored and supplied source
// change times that is still treated as "unchanged". Timestamps lose
// sub-second precision through some storage round trips.
const ChangeTolerance = 999 * time.Millisecond

// Key identifies a tracked record. Keys compare by value.
type Key struct {
	Namespace string
	ID        string
}

// Record mirrors a single row of the change tracking table.
type Record struct {
	Namespace string
	ID        string

	// FirstIndexed is zero when the row was soft-deleted; the next
	// observation treats the record as new.
	FirstIndexed time.Time

	LastIndexed time.Time

	// LastRecordChange is the caller supplied source modification time.
	LastRecordChange time.Time

	// Deleted is nil unless the row is soft-deleted.
	Deleted *time.Time
}

// Key returns the record's (namespace, id) pair.
func (r Record) Key() Key { return Key{Namespace: r.Namespace, ID: r.ID} }

// IsDeleted reports whether the row carries a deletion mark.
func (r Record) IsDeleted() bool { return r.Deleted != nil }

// NeedsUpdate reports whether an observation carrying the given source change
// time must rewrite the stored row: either the row is deleted and being
// revived, or the change times differ by more than ChangeTolerance at
// millisecond resolution.
func NeedsUpdate(stored Record, changed time.Time) bool {
	if stored.IsDeleted() {
		return true
	}
	drift := stored.LastRecordChange.UnixMilli() - changed.UnixMilli()
	if drift < 0 {
		drift = -drift
	}
	return drift > ChangeTolerance.Milliseconds()
}

// FormatISO8601 renders t as YYYY-MM-DDTHH:MM:SSZ in UTC, dropping fractional seconds.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(engine.ISO8601)
}
