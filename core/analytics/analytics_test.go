package analytics_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/kvstore"
)

func TestLog_BoundedFIFO(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	log := analytics.New(kvstore.NewMemory(), analytics.DefaultConfig())
	for i := range 250 {
		require.NoError(t, log.Record(ctx, analytics.Entry{Event: "e" + strconv.Itoa(i)}))
	}

	entries := log.Entries(ctx)
	require.Len(t, entries, 200)
	for i, e := range entries {
		assert.Equal(t, "e"+strconv.Itoa(i+50), e.Event)
	}
}

func TestLog_Defaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	log := analytics.New(kvstore.NewMemory(), analytics.Config{}, analytics.WithClock(func() time.Time { return fixed }))
	assert.Equal(t, 200, log.Capacity())

	require.NoError(t, log.Record(ctx, analytics.Entry{Event: "login_failed", Data: map[string]any{"code": "nope"}}))

	entries := log.Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, analytics.Anonymous, entries[0].Actor)
	assert.True(t, fixed.Equal(entries[0].Timestamp))
	assert.Equal(t, "nope", entries[0].Data["code"])
}

func TestLog_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	log := analytics.New(kvstore.NewMemory(), analytics.Config{Capacity: 50})
	for i := range 12 {
		actor := "ESO Educator"
		if i%3 == 0 {
			actor = "Demo User"
		}
		event := "login_success"
		if i%2 == 0 {
			event = "logout"
		}
		require.NoError(t, log.Record(ctx, analytics.Entry{Event: event, Actor: actor, SessionToken: "sess_" + strconv.Itoa(i)}))
	}

	stats := log.Stats(ctx)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 2, stats.UniqueActors)
	assert.Equal(t, map[string]int{"login_success": 6, "logout": 6}, stats.ByEvent)
	require.Len(t, stats.Recent, 10)
	assert.Equal(t, "sess_2", stats.Recent[0].SessionToken)
	assert.Equal(t, "sess_11", stats.Recent[9].SessionToken)
}

func TestLog_CorruptStartsOver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, kvstore.AnalyticsKey, []byte("{not json")))

	log := analytics.New(store, analytics.DefaultConfig())
	assert.Empty(t, log.Entries(ctx))

	require.NoError(t, log.Record(ctx, analytics.Entry{Event: "login_success"}))
	assert.Len(t, log.Entries(ctx), 1)

	require.NoError(t, log.Clear(ctx))
	assert.Empty(t, log.Entries(ctx))
}

type failingStore struct{ kvstore.Store }

func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func TestLog_WriteFailure(t *testing.T) {
	t.Parallel()

	log := analytics.New(failingStore{kvstore.NewMemory()}, analytics.DefaultConfig())
	assert.Error(t, log.Record(context.Background(), analytics.Entry{Event: "x"}))
}
