package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/event"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventLog struct {
	mu    sync.Mutex
	names []string
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

type harness struct {
	m          *session.Manager
	volatile   *kvstore.Memory
	persistent *kvstore.Memory
	clock      *fakeClock
	events     *eventLog
	bus        *event.Bus
}

func testConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.LoginDelay = 0
	return cfg
}

func newHarness(t *testing.T, opts ...session.Option) *harness {
	t.Helper()

	h := &harness{
		volatile:   kvstore.NewMemory(),
		persistent: kvstore.NewMemory(),
		clock:      newClock(),
		events:     &eventLog{},
		bus:        event.NewBus(),
	}
	h.bus.Subscribe(event.NewHandler(event.Wildcard, func(ctx context.Context, payload any) error {
		h.events.mu.Lock()
		defer h.events.mu.Unlock()
		h.events.names = append(h.events.names, event.NameOf(payload))
		return nil
	}))

	base := []session.Option{
		session.WithConfig(testConfig()),
		session.WithVolatileStore(h.volatile),
		session.WithPersistentStore(h.persistent),
		session.WithPublisher(h.bus),
		session.WithClock(h.clock.Now),
	}
	h.m = session.NewManager(nil, append(base, opts...)...)
	return h
}

func (h *harness) stored(t *testing.T, store kvstore.Store) (session.Session, bool) {
	t.Helper()
	raw, err := store.Get(context.Background(), kvstore.SessionKey)
	if err != nil {
		require.ErrorIs(t, err, kvstore.ErrNotFound)
		return session.Session{}, false
	}
	var s session.Session
	require.NoError(t, json.Unmarshal(raw, &s))
	return s, true
}

func (h *harness) put(t *testing.T, store kvstore.Store, s session.Session) {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), kvstore.SessionKey, raw))
}

func (h *harness) hasSessionKey(store kvstore.Store) bool {
	_, err := store.Get(context.Background(), kvstore.SessionKey)
	return err == nil
}
