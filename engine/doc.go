// Package engine provides helpers for opening the SQL connections used by the
// change tracker: the pure-Go modernc.org/sqlite driver for embedded use and
// github.com/lib/pq for PostgreSQL. It also carries the dialect differences
// the tracker needs (placeholder style) and registers SQL scalar helpers on
// the SQLite driver. It intentionally keeps a thin surface so other packages
// can share the same driver instances.
package engine
