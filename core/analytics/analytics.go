package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/logger"
)

// Anonymous is the actor recorded when no session is active.
const Anonymous = "anonymous"

// Config holds analytics settings.
type Config struct {
	Capacity int `env:"ANALYTICS_CAPACITY" envDefault:"200"`
}

// DefaultConfig returns the default analytics configuration.
func DefaultConfig() Config {
	return Config{Capacity: 200}
}

// Entry is one recorded event.
type Entry struct {
	Event        string         `json:"event"`
	Data         map[string]any `json:"data,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Actor        string         `json:"actor"`
	SessionToken string         `json:"session_token,omitempty"`
}

// Stats summarizes the log.
type Stats struct {
	Total        int            `json:"total"`
	UniqueActors int            `json:"unique_actors"`
	ByEvent      map[string]int `json:"by_event"`
	Recent       []Entry        `json:"recent"`
}

// recentLimit is the number of entries returned in Stats.Recent.
const recentLimit = 10

// Log is a bounded FIFO of entries kept in a Store under kvstore.AnalyticsKey.
// When full, the oldest entries are dropped first.
type Log struct {
	mu       sync.Mutex
	store    kvstore.Store
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Log) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Log) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates a Log over store.
func New(store kvstore.Store, cfg Config, opts ...Option) *Log {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	l := &Log{
		store:    store,
		capacity: cfg.Capacity,
		logger:   logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the maximum number of retained entries.
func (l *Log) Capacity() int { return l.capacity }

// Record appends e. A zero Timestamp is set to now and an empty Actor to
// Anonymous. Storage failures are logged and returned, never fatal to callers.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if e.Actor == "" {
		e.Actor = Anonymous
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load(ctx)
	entries = append(entries, e)
	if over := len(entries) - l.capacity; over > 0 {
		entries = entries[over:]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("analytics: encode: %w", err)
	}
	if err := l.store.Set(ctx, kvstore.AnalyticsKey, raw); err != nil {
		l.logger.WarnContext(ctx, "analytics write failed",
			logger.Event(e.Event),
			logger.Error(err))
		return fmt.Errorf("analytics: write: %w", err)
	}
	return nil
}

// Entries returns the retained entries, oldest first.
func (l *Log) Entries(ctx context.Context) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Stats summarizes the retained entries.
func (l *Log) Stats(ctx context.Context) Stats {
	entries := l.Entries(ctx)

	s := Stats{
		Total:   len(entries),
		ByEvent: make(map[string]int),
	}
	actors := make(map[string]struct{})
	for _, e := range entries {
		s.ByEvent[e.Event]++
		actors[e.Actor] = struct{}{}
	}
	s.UniqueActors = len(actors)

	start := max(len(entries)-recentLimit, 0)
	s.Recent = entries[start:]
	return s
}

// Clear drops all entries.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(ctx, kvstore.AnalyticsKey)
}

// load reads the stored entries. Missing or unreadable data yields an empty log.
func (l *Log) load(ctx context.Context) []Entry {
	raw, err := l.store.Get(ctx, kvstore.AnalyticsKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			l.logger.WarnContext(ctx, "analytics read failed", logger.Error(err))
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.logger.WarnContext(ctx, "analytics log corrupt, starting over", logger.Error(err))
		return nil
	}
	return entries
}
