package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/changetrack/config"
	"github.com/viant/changetrack/tracker"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_Lifecycle(t *testing.T) {
	t.Setenv(config.EnvDriver, "sqlite")
	t.Setenv(config.EnvDSN, filepath.Join(t.TempDir(), "cli.sqlite"))

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "table change_tracker ready")

	out, err = run(t, "observe", "biblio", "r1", "2024-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Regexp(t, `first_indexed=(\S+) last_indexed=(\S+)`, out)

	out, err = run(t, "show", "biblio", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "last_record_change: 2024-05-01T10:00:00Z")
	assert.Contains(t, out, "deleted:            -")

	out, err = run(t, "delete", "biblio", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted biblio/r1")

	out, err = run(t, "show", "biblio", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "first_indexed:      -")
	assert.NotContains(t, out, "deleted:            -")

	_, err = run(t, "observe", "biblio", "r1", "2024-05-01T10:00:00Z")
	require.NoError(t, err)
	out, err = run(t, "show", "biblio", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted:            -")
	assert.NotContains(t, out, "first_indexed:      -")
}

func TestCLI_Errors(t *testing.T) {
	t.Setenv(config.EnvDriver, "sqlite")
	t.Setenv(config.EnvDSN, filepath.Join(t.TempDir(), "cli.sqlite"))

	_, err := run(t, "init")
	require.NoError(t, err)

	_, err = run(t, "observe", "biblio", "r1", "yesterday")
	require.Error(t, err)

	_, err = run(t, "show", "biblio", "missing")
	require.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = run(t, "delete", "biblio", "missing")
	require.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = run(t, "observe", "biblio")
	require.Error(t, err)
}

func TestCLI_BadConfig(t *testing.T) {
	t.Setenv(config.EnvDriver, "oracle")
	t.Setenv(config.EnvDSN, "x")

	_, err := run(t, "init")
	require.Error(t, err)
}
