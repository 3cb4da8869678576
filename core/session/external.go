package session

import (
	"context"
	"fmt"

	"github.com/aprenmaker/hubauth/core/command"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/logger"
)

// BeginExternalLogin asks the identity provider to show its login UI.
// The session is created later, when the provider reports the login through
// OnExternalLogin. Fails with ErrServiceNotReady, without side effects, when
// no provider is configured or it has not finished its handshake.
func (m *Manager) BeginExternalLogin(ctx context.Context) (Result, error) {
	m.mu.Lock()
	provider := m.provider
	if !identity.IsReady(provider) {
		m.mu.Unlock()
		return Result{Status: StatusFailed, Message: "Login service is not ready yet. Please try again shortly."}, ErrServiceNotReady
	}
	m.pending = true
	m.mu.Unlock()

	// Open runs unlocked: providers may report the login synchronously.
	if err := provider.Open(ctx); err != nil {
		m.mu.Lock()
		m.pending = false
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "open provider", logger.Provider(provider.Name()), logger.Error(err))
		return Result{Status: StatusFailed, Message: "Could not open the login service."}, fmt.Errorf("%w: %w", ErrServiceNotReady, err)
	}
	return Result{Status: StatusPending, Message: "Continue in the login window."}, nil
}

// ExternalLoginPending reports whether BeginExternalLogin is waiting for the provider.
func (m *Manager) ExternalLoginPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// ResumeExternalSession tells a provider that implements identity.Restorer
// who the stored external session belongs to, so a provider started in a new
// process does not look signed out. It reports whether a user was restored.
func (m *Manager) ResumeExternalSession(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.provider.(identity.Restorer)
	if !ok {
		return false
	}
	if _, signedIn := m.provider.CurrentUser(); signedIn {
		return false
	}

	s, ok := m.currentLocked(ctx)
	if !ok || s.Origin != OriginExternal || s.External == nil || s.IsExpired(m.now()) {
		return false
	}
	if s.External.Provider != "" && s.External.Provider != m.provider.Name() {
		return false
	}

	r.Restore(identity.Identity{
		ID:       s.External.ID,
		Email:    s.External.Email,
		Name:     s.Profile.DisplayName,
		Provider: m.provider.Name(),
		Metadata: s.External.Metadata,
	})
	m.logger.DebugContext(ctx, "external session resumed",
		logger.SessionToken(s.Token),
		logger.Provider(m.provider.Name()))
	return true
}

// OnExternalLogin creates a persistent session for id with a derived
// profile. A repeated event for the external id that is already signed in
// returns the current session unchanged.
func (m *Manager) OnExternalLogin(ctx context.Context, id identity.Identity) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = false

	if cur, ok := m.currentLocked(ctx); ok &&
		cur.Origin == OriginExternal && cur.External.ID == id.ID && !cur.IsExpired(m.now()) {
		m.logger.DebugContext(ctx, "duplicate external login ignored", logger.SessionToken(cur.Token))
		return successResult(cur), nil
	}

	p := m.deriver.Derive(id)
	now := m.now()
	sess := Session{
		AccessID:  p.AccessID,
		Profile:   p,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttlFor(p)),
		Persist:   true,
		Token:     newToken(),
		Origin:    OriginExternal,
		External: &ExternalSnapshot{
			ID:       id.ID,
			Email:    id.Email,
			Provider: p.IdentityProvider,
			Metadata: id.Metadata,
		},
	}
	if err := m.writeLocked(ctx, sess); err != nil {
		return Result{Status: StatusFailed, Message: "Could not save the session."}, err
	}

	m.savePreferencesLocked(ctx, id.ID, p)

	m.record(ctx, "external_login_success", map[string]any{
		"provider":    p.IdentityProvider,
		"level":       string(p.Level),
		"permissions": len(p.Permissions),
		"tools":       len(p.Tools),
	}, p.RoleLabel, sess.Token)
	m.logger.InfoContext(ctx, "external login",
		logger.AccessID(p.AccessID),
		logger.Provider(p.IdentityProvider),
		logger.Level(string(p.Level)),
		logger.SessionToken(sess.Token))

	m.publisher.Publish(ctx, LoginEvent{Profile: p.Clone(), Session: sess.Clone()})
	return successResult(sess), nil
}

// OnExternalLogout clears the session in both scopes. Analytics and the
// logout event are emitted only when a session existed, so the provider's
// echo of a local logout is a no-op.
func (m *Manager) OnExternalLogout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = false
	s, had := m.currentLocked(ctx)
	if !had {
		return
	}

	m.record(ctx, "external_logout", map[string]any{
		"session_duration_ms": m.now().Sub(s.CreatedAt).Milliseconds(),
		"role":                s.Profile.RoleLabel,
	}, s.Profile.RoleLabel, s.Token)
	m.clearLocked(ctx)

	m.logger.InfoContext(ctx, "external logout", logger.SessionToken(s.Token))
	m.publisher.Publish(ctx, LogoutEvent{})
}

// OnExternalError records a provider failure.
func (m *Manager) OnExternalError(ctx context.Context, provider string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	actor, token := m.actorLocked(ctx)
	m.record(ctx, "external_error", map[string]any{"provider": provider, "message": msg}, actor, token)
	m.logger.WarnContext(ctx, "identity provider error", logger.Provider(provider), logger.Error(err))
}

// OnExternalClosed clears the pending flag when the provider UI is dismissed.
func (m *Manager) OnExternalClosed(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = false
}

// RegisterCommands registers the handlers for the identity adapter's commands.
func (m *Manager) RegisterCommands(d *command.Dispatcher) {
	d.Register(
		command.NewHandlerFunc(func(ctx context.Context, cmd identity.ExternalLogin) error {
			_, err := m.OnExternalLogin(ctx, cmd.Identity)
			return err
		}),
		command.NewHandlerFunc(func(ctx context.Context, _ identity.ExternalLogout) error {
			m.OnExternalLogout(ctx)
			return nil
		}),
		command.NewHandlerFunc(func(ctx context.Context, cmd identity.ExternalError) error {
			m.OnExternalError(ctx, cmd.Provider, cmd.Err)
			return nil
		}),
		command.NewHandlerFunc(func(ctx context.Context, _ identity.ExternalClosed) error {
			m.OnExternalClosed(ctx)
			return nil
		}),
	)
}
