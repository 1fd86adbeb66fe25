package tracker

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable test clock.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestTrackerSQL_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	clk := &clock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)

	tr, err := New(store, WithClock(clk.Now), WithLogger(logger))
	require.NoError(t, err)
	ctx := context.Background()
	changed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// New record.
	require.NoError(t, tr.Observe(ctx, "biblio", "r1", changed))
	first, _ := tr.FirstIndexed()
	last, _ := tr.LastIndexed()
	assert.Equal(t, "2024-01-10T09:00:00Z", first)
	assert.Equal(t, first, last)

	// Another pass, unchanged source: row untouched.
	require.NoError(t, tr.Observe(ctx, "biblio", "other", changed))
	clk.now = clk.now.Add(24 * time.Hour)
	require.NoError(t, tr.Observe(ctx, "biblio", "r1", changed.Add(500*time.Millisecond)))
	rec, found, err := store.Lookup(ctx, "biblio", "r1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.LastIndexed.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))
	assert.True(t, rec.LastRecordChange.Equal(changed))

	// Source changed by two seconds: row updated, first indexed kept.
	require.NoError(t, tr.Observe(ctx, "biblio", "other", changed))
	require.NoError(t, tr.Observe(ctx, "biblio", "r1", changed.Add(2000*time.Millisecond)))
	rec, _, err = store.Lookup(ctx, "biblio", "r1")
	require.NoError(t, err)
	assert.True(t, rec.LastRecordChange.Equal(changed.Add(2000*time.Millisecond)))
	assert.True(t, rec.LastIndexed.Equal(clk.now))
	assert.True(t, rec.FirstIndexed.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))
	last, _ = tr.LastIndexed()
	assert.Equal(t, "2024-01-11T09:00:00Z", last)

	// Deleted then seen again: revived as new.
	clk.now = clk.now.Add(time.Hour)
	require.NoError(t, tr.MarkDeleted(ctx, "biblio", "r1"))
	clk.now = clk.now.Add(time.Hour)
	require.NoError(t, tr.Observe(ctx, "biblio", "r1", changed.Add(2000*time.Millisecond)))
	rec, _, err = store.Lookup(ctx, "biblio", "r1")
	require.NoError(t, err)
	assert.Nil(t, rec.Deleted)
	assert.True(t, rec.FirstIndexed.Equal(clk.now))
	assert.True(t, rec.LastIndexed.Equal(clk.now))
	first, _ = tr.FirstIndexed()
	assert.Equal(t, "2024-01-11T11:00:00Z", first)

	assert.Contains(t, logs.String(), `"message":"created"`)
	assert.Contains(t, logs.String(), `"message":"unchanged"`)
	assert.Contains(t, logs.String(), `"revived":true`)
}

func TestTrackerSQL_SecondPrecisionStorage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tr, err := New(store)
	require.NoError(t, err)

	// Simulate a store that kept only whole seconds.
	changed := time.Date(2024, 3, 3, 3, 3, 3, 640_000_000, time.UTC)
	now := time.Now().UTC()
	require.NoError(t, store.Insert(ctx, Record{
		Namespace: "biblio", ID: "s1",
		FirstIndexed: now, LastIndexed: now,
		LastRecordChange: changed.Truncate(time.Second),
	}))

	require.NoError(t, tr.Observe(ctx, "biblio", "s1", changed))
	rec, _, err := store.Lookup(ctx, "biblio", "s1")
	require.NoError(t, err)
	assert.True(t, rec.LastRecordChange.Equal(changed.Truncate(time.Second)), "jitter below a second is not a change")
}
