package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/viant/changetrack/engine"
)

// SQLStore implements Store on top of database/sql. Every call prepares its
// statement, runs it once and releases the statement (and result set) before
// returning, on success and error paths alike. It works with SQLite
// (modernc.org/sqlite) and PostgreSQL (lib/pq).
type SQLStore struct {
	db      *sql.DB
	dialect engine.Dialect
	table   string
	tracer  trace.Tracer

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// StoreOption configures a SQLStore.
type StoreOption func(*SQLStore)

// WithDialect selects the SQL dialect; the default is SQLite.
func WithDialect(d engine.Dialect) StoreOption {
	return func(s *SQLStore) { s.dialect = d }
}

// WithTable overrides the table name (default DefaultTable).
func WithTable(table string) StoreOption {
	return func(s *SQLStore) { s.table = table }
}

// WithTracer enables a span per store operation.
func WithTracer(tracer trace.Tracer) StoreOption {
	return func(s *SQLStore) { s.tracer = tracer }
}

// NewSQLStore creates a SQL-backed Store. It does not create the table; see
// EnsureSchema.
func NewSQLStore(db *sql.DB, opts ...StoreOption) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("tracker: db is nil")
	}
	s := &SQLStore{db: db, dialect: engine.DialectSQLite, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	if err := ValidateTable(s.table); err != nil {
		return nil, err
	}
	s.selectSQL = s.dialect.Rebind(fmt.Sprintf(`SELECT first_indexed, last_indexed, last_record_change, deleted
FROM %s WHERE namespace = ? AND id = ?`, s.table))
	s.insertSQL = s.dialect.Rebind(fmt.Sprintf(`INSERT INTO %s(namespace, id, first_indexed, last_indexed, last_record_change, deleted)
VALUES (?, ?, ?, ?, ?, NULL)`, s.table))
	s.updateSQL = s.dialect.Rebind(fmt.Sprintf(`UPDATE %s
SET first_indexed = ?, last_indexed = ?, last_record_change = ?, deleted = ?
WHERE namespace = ? AND id = ?`, s.table))
	s.deleteSQL = s.dialect.Rebind(fmt.Sprintf(`UPDATE %s
SET deleted = ?, first_indexed = NULL
WHERE namespace = ? AND id = ?`, s.table))
	return s, nil
}

// Table returns the table the store reads and writes.
func (s *SQLStore) Table() string { return s.table }

// Lookup reads the row for (namespace, id).
func (s *SQLStore) Lookup(ctx context.Context, namespace, id string) (rec Record, found bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.startSpan(ctx, "SQLStore.Lookup", namespace, id)
	defer func() {
		recordError(span, err)
		span.SetAttributes(AttrFound.Bool(found))
		span.End()
	}()

	stmt, err := s.db.PrepareContext(ctx, s.selectSQL)
	if err != nil {
		return Record{}, false, fmt.Errorf("tracker: prepare lookup: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, namespace, id)
	if err != nil {
		return Record{}, false, fmt.Errorf("tracker: lookup %s/%s: %w", namespace, id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, false, fmt.Errorf("tracker: lookup %s/%s: %w", namespace, id, err)
		}
		return Record{}, false, nil
	}
	var first, deleted sql.NullTime
	rec = Record{Namespace: namespace, ID: id}
	if err := rows.Scan(&first, &rec.LastIndexed, &rec.LastRecordChange, &deleted); err != nil {
		return Record{}, false, fmt.Errorf("tracker: scan %s/%s: %w", namespace, id, err)
	}
	if first.Valid {
		rec.FirstIndexed = first.Time.UTC()
	}
	rec.LastIndexed = rec.LastIndexed.UTC()
	rec.LastRecordChange = rec.LastRecordChange.UTC()
	if deleted.Valid {
		at := deleted.Time.UTC()
		rec.Deleted = &at
	}
	return rec, true, nil
}

// Insert writes a new row. The deleted column is always NULL on insert.
func (s *SQLStore) Insert(ctx context.Context, rec Record) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.startSpan(ctx, "SQLStore.Insert", rec.Namespace, rec.ID)
	defer func() {
		recordError(span, err)
		span.End()
	}()

	_, err = s.exec(ctx, s.insertSQL,
		rec.Namespace, rec.ID,
		nullTime(rec.FirstIndexed), rec.LastIndexed.UTC(), rec.LastRecordChange.UTC())
	if err != nil {
		return fmt.Errorf("tracker: insert %s/%s: %w", rec.Namespace, rec.ID, err)
	}
	return nil
}

// Update rewrites first_indexed, last_indexed, last_record_change and deleted.
func (s *SQLStore) Update(ctx context.Context, rec Record) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.startSpan(ctx, "SQLStore.Update", rec.Namespace, rec.ID)
	defer func() {
		recordError(span, err)
		span.End()
	}()

	var deleted sql.NullTime
	if rec.Deleted != nil {
		deleted = nullTime(*rec.Deleted)
	}
	_, err = s.exec(ctx, s.updateSQL,
		nullTime(rec.FirstIndexed), rec.LastIndexed.UTC(), rec.LastRecordChange.UTC(), deleted,
		rec.Namespace, rec.ID)
	if err != nil {
		return fmt.Errorf("tracker: update %s/%s: %w", rec.Namespace, rec.ID, err)
	}
	return nil
}

// MarkDeleted soft-deletes the row for (namespace, id).
func (s *SQLStore) MarkDeleted(ctx context.Context, namespace, id string, at time.Time) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.startSpan(ctx, "SQLStore.MarkDeleted", namespace, id)
	defer func() {
		recordError(span, err)
		span.End()
	}()

	n, err := s.exec(ctx, s.deleteSQL, at.UTC(), namespace, id)
	if err != nil {
		return fmt.Errorf("tracker: mark deleted %s/%s: %w", namespace, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, namespace, id)
	}
	return nil
}

// exec prepares query, executes it once and returns the affected row count.
func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (int64, error) {
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Ensure SQLStore satisfies the Store interface.
var _ Store = (*SQLStore)(nil)
