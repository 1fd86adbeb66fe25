package tracker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/changetrack/engine"
)

func TestEnsureSchema(t *testing.T) {
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	require.NoError(t, EnsureSchema(context.Background(), db, engine.DialectSQLite, ""))
	// Idempotent.
	require.NoError(t, EnsureSchema(context.Background(), db, engine.DialectSQLite, DefaultTable))

	_, err = db.Exec(`INSERT INTO change_tracker(namespace, id, first_indexed, last_indexed, last_record_change)
		VALUES('a', '1', NULL, '2024-01-01 00:00:00', '2024-01-01 00:00:00')`)
	require.NoError(t, err, "first_indexed must be nullable")

	_, err = db.Exec(`INSERT INTO change_tracker(namespace, id, first_indexed, last_indexed, last_record_change)
		VALUES('a', '1', NULL, '2024-01-01 00:00:00', '2024-01-01 00:00:00')`)
	require.Error(t, err, "(namespace, id) must be unique")
}

func TestEnsureSchema_RejectsBadTable(t *testing.T) {
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	err = EnsureSchema(context.Background(), db, engine.DialectSQLite, "x; DROP TABLE y")
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Error(t, EnsureSchema(context.Background(), nil, engine.DialectSQLite, ""))
}

func TestSchemaDDL_Dialects(t *testing.T) {
	assert.True(t, strings.Contains(SchemaDDL(engine.DialectSQLite, "ct"), "first_indexed      TIMESTAMP NULL"))
	pg := SchemaDDL(engine.DialectPostgres, "public.ct")
	assert.Contains(t, pg, "CREATE TABLE IF NOT EXISTS public.ct")
	assert.Contains(t, pg, "TIMESTAMPTZ")
	assert.Contains(t, pg, "PRIMARY KEY(namespace, id)")
}

func TestValidateTable(t *testing.T) {
	for _, ok := range []string{"change_tracker", "main.change_tracker", "_t1"} {
		assert.NoError(t, ValidateTable(ok), ok)
	}
	for _, bad := range []string{"", "1abc", "a-b", "a.b.c", "t where 1=1"} {
		assert.ErrorIs(t, ValidateTable(bad), ErrInvalidArgument, bad)
	}
}
