package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/viant/changetrack/engine"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTable reports an error unless table is a plain, optionally
// schema-qualified, SQL identifier. Table names are interpolated into SQL.
func ValidateTable(table string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("%w: table name %q", ErrInvalidArgument, table)
	}
	return nil
}

// SchemaDDL returns the CREATE TABLE statement for the change tracking table
// in the given dialect. first_indexed is nullable: a NULL marks a row whose
// record was deleted and must be treated as new when it reappears.
func SchemaDDL(d engine.Dialect, table string) string {
	ts := "TIMESTAMP"
	if d == engine.DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
    namespace          TEXT NOT NULL,
    id                 TEXT NOT NULL,
    first_indexed      %[2]s NULL,
    last_indexed       %[2]s NOT NULL,
    last_record_change %[2]s NOT NULL,
    deleted            %[2]s NULL,
    PRIMARY KEY(namespace, id)
);`, table, ts)
}

// EnsureSchema creates the change tracking table if it does not already
// exist. Production deployments usually migrate the schema themselves; this
// helper serves embedded SQLite use and tests.
func EnsureSchema(ctx context.Context, db *sql.DB, d engine.Dialect, table string) error {
	if db == nil {
		return fmt.Errorf("tracker: db is nil")
	}
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTable(table); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := db.ExecContext(ctx, SchemaDDL(d, table)); err != nil {
		return fmt.Errorf("tracker: create %s: %w", table, err)
	}
	return nil
}
