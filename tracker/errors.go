package tracker

import "errors"

var (
	// ErrNotObserved is returned by accessors called before a successful Observe.
	ErrNotObserved = errors.New("tracker: no record observed yet")

	// ErrInvalidArgument is returned for an empty namespace or id.
	ErrInvalidArgument = errors.New("tracker: invalid argument")

	// ErrNotFound is returned when a mutation targets a row that does not exist.
	ErrNotFound = errors.New("tracker: record not found")
)
