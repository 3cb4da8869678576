package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/logger"
	"github.com/aprenmaker/hubauth/core/profile"
)

// Status is the outcome of a login request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// Result is returned by login operations.
type Result struct {
	Status  Status
	Message string
	Profile *profile.Profile
	Session *Session
}

const invalidCodeMessage = "Invalid access code. Please check with your administrator."

// Manager mediates every session state transition.
//
// All public methods serialize on one mutex, so user commands and provider
// callbacks never interleave inside a transition. A volatile session takes
// priority over a persistent one when both exist.
type Manager struct {
	mu sync.Mutex

	cfg        Config
	registry   *profile.Registry
	volatile   kvstore.Store
	persistent kvstore.Store
	publisher  Publisher
	analytics  *analytics.Log
	provider   identity.Provider
	deriver    *profile.Deriver
	now        func() time.Time
	logger     *slog.Logger

	pending bool
}

// NewManager creates a manager over registry. A nil registry means
// profile.DefaultRegistry. Without store options both scopes are in memory.
func NewManager(registry *profile.Registry, opts ...Option) *Manager {
	if registry == nil {
		registry = profile.DefaultRegistry()
	}
	m := &Manager{
		cfg:        DefaultConfig(),
		registry:   registry,
		volatile:   kvstore.NewMemory(),
		persistent: kvstore.NewMemory(),
		publisher:  noopPublisher{},
		deriver:    profile.NewDeriver(),
		now:        time.Now,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("session"))
	if m.analytics == nil {
		m.analytics = analytics.New(m.persistent, analytics.DefaultConfig(),
			analytics.WithClock(m.now),
			analytics.WithLogger(m.logger))
	}
	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// Analytics returns the analytics log.
func (m *Manager) Analytics() *analytics.Log { return m.analytics }

// LoginWithCode signs in with an access code. The code is matched
// case-insensitively. persist selects the persistent scope, otherwise the
// session lives in the volatile scope.
//
// The configured LoginDelay elapses before the lookup; ctx cancels the wait.
func (m *Manager) LoginWithCode(ctx context.Context, code string, persist bool) (Result, error) {
	if err := m.wait(ctx, m.cfg.LoginDelay); err != nil {
		return Result{Status: StatusFailed, Message: "Login canceled."}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.registry.Lookup(code)
	if !ok {
		actor, token := m.actorLocked(ctx)
		m.record(ctx, "login_failed", map[string]any{"code": code}, actor, token)
		m.logger.InfoContext(ctx, "login failed", logger.Action("login"), logger.Result("invalid_code"))
		return Result{Status: StatusFailed, Message: invalidCodeMessage}, ErrInvalidCredential
	}

	now := m.now()
	sess := Session{
		AccessID:  p.AccessID,
		Profile:   p,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttlFor(p)),
		Persist:   persist,
		Token:     newToken(),
		Origin:    OriginCode,
	}
	if err := m.writeLocked(ctx, sess); err != nil {
		return Result{Status: StatusFailed, Message: "Could not save the session."}, err
	}

	m.record(ctx, "login_success", map[string]any{
		"role":   p.RoleLabel,
		"school": p.Organization,
		"level":  string(p.Level),
	}, p.RoleLabel, sess.Token)
	m.logger.InfoContext(ctx, "login",
		logger.AccessID(p.AccessID),
		logger.Level(string(p.Level)),
		logger.Scope(sess.Scope().String()),
		logger.SessionToken(sess.Token))

	m.publisher.Publish(ctx, LoginEvent{Profile: p.Clone(), Session: sess.Clone()})
	return successResult(sess), nil
}

// IsAuthenticated reports whether a valid session exists. Expired sessions
// and external sessions whose provider reports another user are logged out
// as a side effect.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.validLocked(ctx)
	return ok
}

// Session returns a copy of the valid session.
func (m *Manager) Session(ctx context.Context) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.validLocked(ctx)
	if !ok {
		return nil, false
	}
	cp := s.Clone()
	return &cp, true
}

// ActiveProfile returns the profile of the valid session.
func (m *Manager) ActiveProfile(ctx context.Context) (*profile.Profile, bool) {
	s, ok := m.Session(ctx)
	if !ok {
		return nil, false
	}
	return &s.Profile, true
}

// HasCapability reports whether the active profile grants token.
// Unauthenticated callers have no capabilities.
func (m *Manager) HasCapability(ctx context.Context, token string) bool {
	p, ok := m.ActiveProfile(ctx)
	return ok && p.Can(token)
}

// AvailableTools returns the tools of the active profile with the wildcard
// expanded to the full catalog. Empty when unauthenticated.
func (m *Manager) AvailableTools(ctx context.Context) []string {
	p, ok := m.ActiveProfile(ctx)
	if !ok {
		return []string{}
	}
	return p.AvailableTools()
}

// LevelRestrictions returns the project restrictions for the active level.
func (m *Manager) LevelRestrictions(ctx context.Context) (profile.Restrictions, bool) {
	p, ok := m.ActiveProfile(ctx)
	if !ok {
		return profile.Restrictions{}, false
	}
	return profile.RestrictionsFor(p.Level), true
}

// TimeLeft returns the time until the valid session expires.
func (m *Manager) TimeLeft(ctx context.Context) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.validLocked(ctx)
	if !ok {
		return 0, false
	}
	return s.TimeLeft(m.now()), true
}

// ExtendSession pushes expiry to now plus the session lifetime and rewrites
// the session to its scope. Reports false, writing nothing, without a
// valid session.
func (m *Manager) ExtendSession(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.validLocked(ctx)
	if !ok {
		return false
	}
	s.ExpiresAt = m.now().Add(m.ttlFor(s.Profile))
	if err := m.putLocked(ctx, s); err != nil {
		m.logger.WarnContext(ctx, "extend session", logger.Error(err))
		return false
	}
	m.logger.DebugContext(ctx, "session extended",
		logger.SessionToken(s.Token),
		logger.Scope(s.Scope().String()))
	return true
}

// Logout ends the session in both scopes and removes per-user data.
// For external sessions the provider is asked to sign out as well; its
// failure does not undo the local logout.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutLocked(ctx, true)
}

// CleanupExpiredSessions removes expired or unreadable sessions from both
// scopes and returns how many were removed.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for _, scope := range []kvstore.Scope{kvstore.Volatile, kvstore.Persistent} {
		store := m.store(scope)
		raw, err := store.Get(ctx, kvstore.SessionKey)
		if err != nil {
			if !errors.Is(err, kvstore.ErrNotFound) {
				m.logger.WarnContext(ctx, "read session", logger.Scope(scope.String()), logger.Error(err))
			}
			continue
		}
		s, err := decode(raw)
		if err == nil && !s.IsExpired(now) {
			continue
		}
		if err := store.Delete(ctx, kvstore.SessionKey); err != nil {
			m.logger.WarnContext(ctx, "remove stale session", logger.Scope(scope.String()), logger.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.InfoContext(ctx, "stale sessions removed", logger.Count("removed", removed))
	}
	return removed
}

// Track records an analytics entry attributed to the current session.
func (m *Manager) Track(ctx context.Context, event string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor, token := m.actorLocked(ctx)
	m.record(ctx, event, data, actor, token)
}

// validLocked returns the current session if it is still valid, logging
// out expired or desynchronized sessions.
func (m *Manager) validLocked(ctx context.Context) (Session, bool) {
	s, ok := m.currentLocked(ctx)
	if !ok {
		return Session{}, false
	}

	if s.IsExpired(m.now()) {
		m.logger.InfoContext(ctx, "session expired", logger.SessionToken(s.Token), logger.Error(ErrExpired))
		m.logoutLocked(ctx, true)
		return Session{}, false
	}

	if s.Origin == OriginExternal && identity.IsReady(m.provider) {
		user, signedIn := m.provider.CurrentUser()
		if !signedIn || user.ID != s.External.ID {
			m.logger.InfoContext(ctx, "external session out of sync",
				logger.SessionToken(s.Token),
				logger.Provider(s.External.Provider),
				logger.Error(ErrProviderDesync))
			// The provider already moved on to another user; leave it alone.
			m.logoutLocked(ctx, false)
			return Session{}, false
		}
	}
	return s, true
}

// currentLocked reads the session, volatile scope first. Unreadable data is
// removed and treated as absent.
func (m *Manager) currentLocked(ctx context.Context) (Session, bool) {
	for _, scope := range []kvstore.Scope{kvstore.Volatile, kvstore.Persistent} {
		if s, ok := m.readLocked(ctx, scope); ok {
			return s, true
		}
	}
	return Session{}, false
}

func (m *Manager) readLocked(ctx context.Context, scope kvstore.Scope) (Session, bool) {
	store := m.store(scope)
	raw, err := store.Get(ctx, kvstore.SessionKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.logger.WarnContext(ctx, "read session", logger.Scope(scope.String()), logger.Error(err))
		}
		return Session{}, false
	}

	s, err := decode(raw)
	if err != nil {
		m.logger.WarnContext(ctx, "discarding unreadable session", logger.Scope(scope.String()), logger.Error(err))
		if err := store.Delete(ctx, kvstore.SessionKey); err != nil {
			m.logger.WarnContext(ctx, "remove unreadable session", logger.Scope(scope.String()), logger.Error(err))
		}
		return Session{}, false
	}
	return s, true
}

// writeLocked stores a new session in its scope, evicting the other scope
// when configured.
func (m *Manager) writeLocked(ctx context.Context, s Session) error {
	if err := m.putLocked(ctx, s); err != nil {
		return err
	}
	if m.cfg.EvictOtherScope {
		other := kvstore.Volatile
		if s.Scope() == kvstore.Volatile {
			other = kvstore.Persistent
		}
		if err := m.store(other).Delete(ctx, kvstore.SessionKey); err != nil {
			m.logger.WarnContext(ctx, "evict session", logger.Scope(other.String()), logger.Error(err))
		}
	}
	return nil
}

func (m *Manager) putLocked(ctx context.Context, s Session) error {
	raw, err := s.encode()
	if err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	if err := m.store(s.Scope()).Set(ctx, kvstore.SessionKey, raw); err != nil {
		m.logger.ErrorContext(ctx, "save session", logger.Scope(s.Scope().String()), logger.Error(err))
		return errors.Join(ErrSaveSession, err)
	}
	return nil
}

// logoutLocked ends the current session. signOut asks the provider to sign
// out too when the session is external.
func (m *Manager) logoutLocked(ctx context.Context, signOut bool) {
	s, had := m.currentLocked(ctx)
	if had {
		m.record(ctx, "logout", map[string]any{
			"session_duration_ms": m.now().Sub(s.CreatedAt).Milliseconds(),
			"role":                s.Profile.RoleLabel,
		}, s.Profile.RoleLabel, s.Token)
	}

	m.clearLocked(ctx)

	if !had {
		return
	}
	m.logger.InfoContext(ctx, "logout", logger.SessionToken(s.Token), logger.AccessID(s.AccessID))
	m.publisher.Publish(ctx, LogoutEvent{})

	if signOut && s.Origin == OriginExternal && m.provider != nil {
		if err := m.provider.Logout(ctx); err != nil {
			m.logger.WarnContext(ctx, "provider logout", logger.Provider(m.provider.Name()), logger.Error(err))
		}
	}
}

// clearLocked removes the session from both scopes and the per-user data
// from the persistent scope.
func (m *Manager) clearLocked(ctx context.Context) {
	for _, scope := range []kvstore.Scope{kvstore.Volatile, kvstore.Persistent} {
		if err := m.store(scope).Delete(ctx, kvstore.SessionKey); err != nil {
			m.logger.WarnContext(ctx, "remove session", logger.Scope(scope.String()), logger.Error(err))
		}
	}
	for _, prefix := range m.cfg.ClearPrefixes {
		if prefix == "" {
			continue
		}
		if _, err := kvstore.DeletePrefix(ctx, m.persistent, prefix); err != nil {
			m.logger.WarnContext(ctx, "clear user data", logger.StoreKey(prefix), logger.Error(err))
		}
	}
}

// actorLocked returns the role label and token of the current unexpired
// session, without side effects.
func (m *Manager) actorLocked(ctx context.Context) (string, string) {
	s, ok := m.currentLocked(ctx)
	if !ok || s.IsExpired(m.now()) {
		return analytics.Anonymous, ""
	}
	return s.Profile.RoleLabel, s.Token
}

func (m *Manager) record(ctx context.Context, event string, data map[string]any, actor, token string) {
	// Failures are logged by the analytics log.
	_ = m.analytics.Record(ctx, analytics.Entry{
		Event:        event,
		Data:         data,
		Timestamp:    m.now(),
		Actor:        actor,
		SessionToken: token,
	})
}

func (m *Manager) ttlFor(p profile.Profile) time.Duration {
	if m.cfg.ProfileTTL && p.SessionDurationMinutes > 0 {
		return time.Duration(p.SessionDurationMinutes) * time.Minute
	}
	return m.cfg.TTL
}

func (m *Manager) store(scope kvstore.Scope) kvstore.Store {
	if scope == kvstore.Persistent {
		return m.persistent
	}
	return m.volatile
}

func (m *Manager) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func successResult(s Session) Result {
	p := s.Profile.Clone()
	cp := s.Clone()
	return Result{Status: StatusSuccess, Profile: &p, Session: &cp}
}
