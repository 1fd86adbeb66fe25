// Package tracker maintains per-record lifecycle metadata for records flowing
// through a batch indexing pipeline: when a record was first indexed, when it
// was last indexed, when its source content last changed, and whether it has
// been soft-deleted.
//
// It includes:
//   - Record model keyed by (namespace, id)
//   - Store interface and SQLStore, a database/sql implementation
//   - Schema helpers to create the change_tracker table
//   - Tracker, which decides per observation whether a row is created,
//     left untouched, or updated
//
// A Tracker is not safe for concurrent use. Pipelines that index in parallel
// should give each worker its own Tracker; writers racing on the same
// (namespace, id) resolve as last-write-wins in storage.
package tracker
