package tracker

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=api.go Store

// Store is the persistence contract of the tracker. Implementations perform
// exactly one storage round trip per call and do not retry.
type Store interface {
	// Lookup returns the row for (namespace, id). The boolean is false when
	// no row exists; that is not an error.
	Lookup(ctx context.Context, namespace, id string) (Record, bool, error)

	// Insert persists a new row.
	Insert(ctx context.Context, rec Record) error

	// Update overwrites the mutable columns of an existing row.
	Update(ctx context.Context, rec Record) error

	// MarkDeleted soft-deletes an existing row: deleted is set to at and
	// first_indexed is cleared. It returns ErrNotFound when no row matches.
	MarkDeleted(ctx context.Context, namespace, id string, at time.Time) error
}
