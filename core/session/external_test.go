package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/command"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/profile"
	"github.com/aprenmaker/hubauth/core/session"
	"github.com/aprenmaker/hubauth/integration/identity/oauth"
)

var ana = identity.Identity{
	ID:       "gh-42",
	Email:    "ana@educa.madrid.org",
	Name:     "Ana Ruiz",
	Provider: "github",
	Metadata: map[string]any{"login": "anaruiz"},
}

func TestBeginExternalLogin_NotReady(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no provider", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		res, err := h.m.BeginExternalLogin(ctx)
		assert.ErrorIs(t, err, session.ErrServiceNotReady)
		assert.Equal(t, session.StatusFailed, res.Status)
		assert.False(t, h.m.ExternalLoginPending())
	})

	t.Run("handshake not finished", func(t *testing.T) {
		t.Parallel()
		p := identity.NewMemoryProvider("github", 8)
		h := newHarness(t, session.WithIdentityProvider(p))

		_, err := h.m.BeginExternalLogin(ctx)
		assert.ErrorIs(t, err, session.ErrServiceNotReady)
		assert.Equal(t, 0, p.Opened())
		assert.False(t, h.m.ExternalLoginPending())
		assert.Empty(t, h.m.Analytics().Entries(ctx))
	})
}

func TestBeginExternalLogin_Pending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := identity.NewMemoryProvider("github", 8)
	p.Init()
	h := newHarness(t, session.WithIdentityProvider(p))

	res, err := h.m.BeginExternalLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, res.Status)
	assert.Equal(t, 1, p.Opened())
	assert.True(t, h.m.ExternalLoginPending())
	assert.False(t, h.m.IsAuthenticated(ctx), "pending is not a session")

	h.m.OnExternalClosed(ctx)
	assert.False(t, h.m.ExternalLoginPending())
}

func TestOnExternalLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := identity.NewMemoryProvider("github", 8)
	p.Init()
	p.SignIn(ana)
	h := newHarness(t, session.WithIdentityProvider(p))

	res, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)
	require.Equal(t, session.StatusSuccess, res.Status)

	s := res.Session
	assert.Equal(t, session.OriginExternal, s.Origin)
	assert.True(t, s.Persist, "external sessions always persist")
	assert.Equal(t, "external_gh-42", s.AccessID)
	require.NotNil(t, s.External)
	assert.Equal(t, "gh-42", s.External.ID)
	assert.Equal(t, "anaruiz", s.External.Metadata["login"])

	// Organization rule wins over the generic educational marker in "educa".
	assert.Equal(t, profile.LevelSecondary, res.Profile.Level)
	assert.Contains(t, res.Profile.Permissions, "educational_resources")
	assert.Contains(t, res.Profile.Permissions, "github_integration")

	assert.True(t, h.m.IsAuthenticated(ctx))
	assert.True(t, h.hasSessionKey(h.persistent))
	assert.False(t, h.hasSessionKey(h.volatile))
	assert.Equal(t, []string{"login"}, h.events.all())

	prefs, ok := h.m.Preferences(ctx, "gh-42")
	require.True(t, ok)
	assert.Equal(t, "github", prefs.Provider)
	assert.Equal(t, profile.LevelSecondary, prefs.Level)
	assert.Len(t, prefs.PreferredTools, 3)
	assert.True(t, h.clock.Now().Equal(prefs.LastLogin))

	entries := h.m.Analytics().Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "external_login_success", entries[0].Event)
	assert.Equal(t, "github", entries[0].Data["provider"])
	assert.EqualValues(t, len(res.Profile.Permissions), entries[0].Data["permissions"])
}

func TestOnExternalLogin_DuplicateIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	first, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	second, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)

	assert.Equal(t, first.Session.Token, second.Session.Token)
	assert.Equal(t, []string{"login"}, h.events.all())
	assert.Len(t, h.m.Analytics().Entries(ctx), 1)
}

func TestExternalSession_ProviderDesync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := identity.NewMemoryProvider("github", 8)
	p.Init()
	p.SignIn(ana)
	h := newHarness(t, session.WithIdentityProvider(p))

	_, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)
	require.True(t, h.m.IsAuthenticated(ctx))

	p.SetUser(&identity.Identity{ID: "someone-else"})
	assert.False(t, h.m.IsAuthenticated(ctx))
	assert.False(t, h.hasSessionKey(h.persistent))

	user, ok := p.CurrentUser()
	require.True(t, ok, "the provider's new user stays signed in")
	assert.Equal(t, "someone-else", user.ID)
}

func TestExternalSession_CheckDeferredUntilReady(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := identity.NewMemoryProvider("github", 8)
	h := newHarness(t, session.WithIdentityProvider(p))

	_, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)
	assert.True(t, h.m.IsAuthenticated(ctx), "provider has no user yet but has not finished loading")

	p.Init()
	assert.False(t, h.m.IsAuthenticated(ctx))
}

func TestExternalSession_SurvivesNewProcess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)

	p, err := oauth.New(oauth.Config{
		Provider:     "github",
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://127.0.0.1:8085/callback",
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	require.True(t, identity.IsReady(p))

	m := session.NewManager(nil,
		session.WithConfig(testConfig()),
		session.WithVolatileStore(h.volatile),
		session.WithPersistentStore(h.persistent),
		session.WithClock(h.clock.Now),
		session.WithIdentityProvider(p),
	)
	require.True(t, m.ResumeExternalSession(ctx))
	assert.False(t, m.ResumeExternalSession(ctx), "the provider already knows its user")

	assert.True(t, m.IsAuthenticated(ctx))
	user, ok := p.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, ana.ID, user.ID)
	assert.True(t, h.hasSessionKey(h.persistent))
}

func TestResumeExternalSession_Skips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("provider without restore", func(t *testing.T) {
		t.Parallel()
		p := identity.NewMemoryProvider("github", 8)
		p.Init()
		h := newHarness(t, session.WithIdentityProvider(p))
		_, err := h.m.OnExternalLogin(ctx, ana)
		require.NoError(t, err)
		assert.False(t, h.m.ResumeExternalSession(ctx))
	})

	t.Run("code session", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.New(oauth.Config{
			Provider:     "github",
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://127.0.0.1:8085/callback",
		})
		require.NoError(t, err)
		t.Cleanup(p.Close)

		h := newHarness(t, session.WithIdentityProvider(p))
		_, err = h.m.LoginWithCode(ctx, "demo_teacher", false)
		require.NoError(t, err)
		assert.False(t, h.m.ResumeExternalSession(ctx))
		_, ok := p.CurrentUser()
		assert.False(t, ok)
	})

	t.Run("other provider", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.New(oauth.Config{
			Provider:     "google",
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://127.0.0.1:8085/callback",
		})
		require.NoError(t, err)
		t.Cleanup(p.Close)

		h := newHarness(t)
		_, err = h.m.OnExternalLogin(ctx, ana)
		require.NoError(t, err)

		m := session.NewManager(nil,
			session.WithConfig(testConfig()),
			session.WithVolatileStore(h.volatile),
			session.WithPersistentStore(h.persistent),
			session.WithClock(h.clock.Now),
			session.WithIdentityProvider(p),
		)
		assert.False(t, m.ResumeExternalSession(ctx))
	})
}

func TestLogout_ExternalSignsOutProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := identity.NewMemoryProvider("github", 8)
	p.Init()
	p.SignIn(ana)
	h := newHarness(t, session.WithIdentityProvider(p))

	_, err := h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)

	h.m.Logout(ctx)
	assert.False(t, h.hasSessionKey(h.persistent))
	_, ok := p.CurrentUser()
	assert.False(t, ok)

	// The provider echoes the logout; it must not log out twice.
	h.m.OnExternalLogout(ctx)
	assert.Equal(t, []string{"login", "logout"}, h.events.all())

	_, ok = h.m.Preferences(ctx, ana.ID)
	assert.True(t, ok, "preferences outlive the session")
}

func TestOnExternalLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	h.m.OnExternalLogout(ctx)
	assert.Empty(t, h.events.all())
	assert.Empty(t, h.m.Analytics().Entries(ctx))

	_, err := h.m.LoginWithCode(ctx, "demo_teacher", false)
	require.NoError(t, err)
	_, err = h.m.OnExternalLogin(ctx, ana)
	require.NoError(t, err)

	h.m.OnExternalLogout(ctx)
	assert.False(t, h.hasSessionKey(h.volatile))
	assert.False(t, h.hasSessionKey(h.persistent))
	assert.Equal(t, []string{"login", "login", "logout"}, h.events.all())

	stats := h.m.Analytics().Stats(ctx)
	assert.Equal(t, 1, stats.ByEvent["external_logout"])
}

func TestOnExternalError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	h.m.OnExternalError(ctx, "google", errors.New("popup blocked"))

	entries := h.m.Analytics().Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "external_error", entries[0].Event)
	assert.Equal(t, "popup blocked", entries[0].Data["message"])
}

func TestExternalFlowThroughAdapter(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := identity.NewMemoryProvider("google", 16)
	h := newHarness(t, session.WithIdentityProvider(p))

	d := command.NewDispatcher()
	h.m.RegisterCommands(d)
	adapter := identity.NewAdapter(p, d)
	go func() { _ = adapter.Run(ctx) }()

	p.Init()
	_, err := adapter.Ready().AwaitWithTimeout(time.Second)
	require.NoError(t, err)

	teacher := identity.Identity{ID: "g-7", Email: "teo@school.org"}
	p.OnOpen(teacher)

	res, err := h.m.BeginExternalLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, res.Status)

	require.Eventually(t, func() bool { return h.m.IsAuthenticated(ctx) }, time.Second, 5*time.Millisecond)
	assert.False(t, h.m.ExternalLoginPending())

	prof, ok := h.m.ActiveProfile(ctx)
	require.True(t, ok)
	assert.Equal(t, profile.LevelGenericEducator, prof.Level)
	assert.Equal(t, "google", prof.IdentityProvider)
	assert.True(t, h.m.HasCapability(ctx, "classroom_integration"))

	h.m.Logout(ctx)
	require.Eventually(t, func() bool {
		raw, err := h.persistent.Get(ctx, kvstore.AnalyticsKey)
		if err != nil {
			return false
		}
		var entries []map[string]any
		return json.Unmarshal(raw, &entries) == nil && len(entries) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"login", "logout"}, h.events.all())
}
