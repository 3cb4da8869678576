package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/profile"
)

// Publisher receives login and logout notifications. *event.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, payload any) int
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, any) int { return 0 }

// Option configures a Manager.
type Option func(*Manager)

// WithConfig replaces the configuration. Zero durations keep their defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg.withDefaults()
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithVolatileStore sets the store for sessions that end with the process.
func WithVolatileStore(s kvstore.Store) Option {
	return func(m *Manager) {
		if s != nil {
			m.volatile = s
		}
	}
}

// WithPersistentStore sets the store for remembered sessions, analytics and preferences.
func WithPersistentStore(s kvstore.Store) Option {
	return func(m *Manager) {
		if s != nil {
			m.persistent = s
		}
	}
}

// WithPublisher sets where login and logout events go.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.publisher = p
		}
	}
}

// WithAnalytics sets the analytics log. By default a log over the
// persistent store is used.
func WithAnalytics(a *analytics.Log) Option {
	return func(m *Manager) {
		m.analytics = a
	}
}

// WithIdentityProvider enables external login.
func WithIdentityProvider(p identity.Provider) Option {
	return func(m *Manager) {
		m.provider = p
	}
}

// WithDerivation sets the rules deriving profiles for external identities.
func WithDerivation(d *profile.Deriver) Option {
	return func(m *Manager) {
		if d != nil {
			m.deriver = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
