package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Tracker records observations of indexed records against a Store. It keeps
// the state of the record it processed most recently so that repeated
// observations of the same (namespace, id) within one session cost no
// storage round trip.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	// current is the state of the last successfully observed record; valid
	// only while observed is true.
	current  Record
	observed bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for per-record debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock overrides the clock used for first/last indexed times.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a Tracker bound to store.
func New(store Store, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("tracker: store is nil")
	}
	t := &Tracker{store: store, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Observe records that the indexer has just processed (namespace, id), whose
// source content last changed at changed.
//
// A new record gets a row with first and last indexed set to now. An
// existing row is rewritten only when it is soft-deleted or when its stored
// change time differs from changed by more than ChangeTolerance; otherwise it
// is left untouched. Observing the same (namespace, id) as the previous
// successful call is a no-op.
//
// Storage errors are returned as is and are not retried. After an error the
// tracker holds no current record.
func (t *Tracker) Observe(ctx context.Context, namespace, id string, changed time.Time) error {
	if namespace == "" || id == "" {
		return fmt.Errorf("%w: namespace and id must be non-empty", ErrInvalidArgument)
	}
	key := Key{Namespace: namespace, ID: id}
	if t.observed && t.current.Key() == key {
		t.logger.Debug().Str("namespace", namespace).Str("id", id).Msg("already observed")
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t.observed = false
	changed = changed.UTC()

	rec, found, err := t.store.Lookup(ctx, namespace, id)
	if err != nil {
		return err
	}
	now := t.now().UTC()

	if !found {
		rec = Record{
			Namespace:        namespace,
			ID:               id,
			FirstIndexed:     now,
			LastIndexed:      now,
			LastRecordChange: changed,
		}
		if err := t.store.Insert(ctx, rec); err != nil {
			return err
		}
		t.logger.Debug().Str("namespace", namespace).Str("id", id).Time("changed", changed).Msg("created")
		t.remember(rec)
		return nil
	}

	if !NeedsUpdate(rec, changed) {
		t.logger.Debug().Str("namespace", namespace).Str("id", id).Msg("unchanged")
		t.remember(rec)
		return nil
	}

	revived := rec.IsDeleted() || rec.FirstIndexed.IsZero()
	rec.LastIndexed = now
	if revived {
		rec.FirstIndexed = now
	}
	rec.LastRecordChange = changed
	rec.Deleted = nil
	if err := t.store.Update(ctx, rec); err != nil {
		return err
	}
	t.logger.Debug().Str("namespace", namespace).Str("id", id).Bool("revived", revived).Time("changed", changed).Msg("updated")
	t.remember(rec)
	return nil
}

// MarkDeleted soft-deletes (namespace, id) in the store. The next Observe of
// that record revives it with a fresh first indexed time.
func (t *Tracker) MarkDeleted(ctx context.Context, namespace, id string) error {
	if namespace == "" || id == "" {
		return fmt.Errorf("%w: namespace and id must be non-empty", ErrInvalidArgument)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if t.observed && t.current.Key() == (Key{Namespace: namespace, ID: id}) {
		t.observed = false
	}
	at := t.now().UTC()
	if err := t.store.MarkDeleted(ctx, namespace, id, at); err != nil {
		return err
	}
	t.logger.Debug().Str("namespace", namespace).Str("id", id).Time("deleted", at).Msg("marked deleted")
	return nil
}

// Record returns a copy of the last observed record.
func (t *Tracker) Record() (Record, bool) {
	if !t.observed {
		return Record{}, false
	}
	rec := t.current
	if rec.Deleted != nil {
		at := *rec.Deleted
		rec.Deleted = &at
	}
	return rec, true
}

// FirstIndexed returns the first indexed time of the last observed record
// formatted as YYYY-MM-DDTHH:MM:SSZ.
func (t *Tracker) FirstIndexed() (string, error) {
	if !t.observed {
		return "", ErrNotObserved
	}
	return FormatISO8601(t.current.FirstIndexed), nil
}

// LastIndexed returns the last indexed time of the last observed record
// formatted as YYYY-MM-DDTHH:MM:SSZ.
func (t *Tracker) LastIndexed() (string, error) {
	if !t.observed {
		return "", ErrNotObserved
	}
	return FormatISO8601(t.current.LastIndexed), nil
}

func (t *Tracker) remember(rec Record) {
	t.current = rec
	t.observed = true
}
