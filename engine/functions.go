package engine

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
)

// ISO8601 is the second-precision UTC layout used for indexed timestamps.
const ISO8601 = "2006-01-02T15:04:05Z"

// storedLayouts lists the textual forms a timestamp may take inside SQLite,
// starting with the modernc.org/sqlite default write format.
var storedLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// RegisterTimeFunctions registers ct_iso8601 with the driver so it is
// available on new connections opened after this call. ct_iso8601(ts)
// renders a stored timestamp as YYYY-MM-DDTHH:MM:SSZ and returns NULL for NULL.
// Note: existing open connections will not see new functions.
func RegisterTimeFunctions() error {
	// Idempotent registration; driver rejects duplicates but we ignore errors silently here.
	_ = sqlite.RegisterDeterministicScalarFunction("ct_iso8601", 1, iso8601Impl)
	return nil
}

func iso8601Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("ct_iso8601: expected 1 argument, got %d", len(args))
	}
	t, ok, err := asTime(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return t.UTC().Format(ISO8601), nil
}

func asTime(arg driver.Value) (time.Time, bool, error) {
	switch v := arg.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, true, nil
	case int64:
		// Integers are taken as unix seconds, matching SQLite's 'unixepoch' modifier.
		return time.Unix(v, 0), true, nil
	case string:
		t, err := ParseStoredTime(v)
		return t, err == nil, err
	case []byte:
		t, err := ParseStoredTime(string(v))
		return t, err == nil, err
	default:
		return time.Time{}, false, fmt.Errorf("ct_iso8601: unsupported argument type %T", arg)
	}
}

// ParseStoredTime parses a timestamp in one of the textual forms SQLite
// stores. Values without a zone are taken as UTC.
func ParseStoredTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// time.Time.String appends the monotonic clock reading.
	if i := strings.Index(s, " m="); i > 0 {
		s = s[:i]
	}
	for _, layout := range storedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("engine: unrecognised timestamp %q", s)
}
