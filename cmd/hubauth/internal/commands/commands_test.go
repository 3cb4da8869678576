package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/cmd/hubauth/internal/commands"
	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/session"
)

const validCode = "valencia_eso_2025"

func newGlobals(t *testing.T) (*commands.Globals, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}

	sessionCfg := session.DefaultConfig()
	sessionCfg.LoginDelay = 0

	return &commands.Globals{
		Version: "test",
		Config: commands.AppConfig{
			Env:          "development",
			LogLevel:     "error",
			Store:        commands.StoreFile,
			DataDir:      dir,
			VolatileFile: filepath.Join(dir, "volatile.json"),
		},
		Session:   sessionCfg,
		Analytics: analytics.DefaultConfig(),
		Out:       out,
	}, out
}

func TestLoginAndStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.LoginCmd{Code: validCode}).Run(ctx, g))
	assert.Contains(t, out.String(), "Signed in as ESO Technology Teacher")

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "ESO Educator")
	assert.Contains(t, out.String(), "Valencia Region")
	assert.Contains(t, out.String(), "volatile")

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{JSON: true}).Run(ctx, g))
	var view struct {
		Profile struct {
			AccessID string `json:"access_id"`
		} `json:"profile"`
		Origin string `json:"origin"`
		Scope  string `json:"scope"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, validCode, view.Profile.AccessID)
	assert.Equal(t, string(session.OriginCode), view.Origin)
	assert.Equal(t, "volatile", view.Scope)
}

func TestLoginInvalidCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	err := (&commands.LoginCmd{Code: "nope"}).Run(ctx, g)
	require.ErrorIs(t, err, session.ErrInvalidCredential)
	assert.Contains(t, out.String(), "Invalid access code")

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestRememberedLoginSurvivesNewTerminal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.LoginCmd{Code: validCode, Remember: true}).Run(ctx, g))

	other := *g
	other.Config.VolatileFile = filepath.Join(t.TempDir(), "other.json")
	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, &other))
	assert.Contains(t, out.String(), "persistent")
}

func TestVolatileLoginStaysInItsTerminal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.LoginCmd{Code: validCode}).Run(ctx, g))

	other := *g
	other.Config.VolatileFile = filepath.Join(t.TempDir(), "other.json")
	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, &other))
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestCan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	err := (&commands.CanCmd{Token: "arduino"}).Run(ctx, g)
	require.ErrorIs(t, err, commands.ErrNotPermitted)

	require.NoError(t, (&commands.LoginCmd{Code: validCode}).Run(ctx, g))

	out.Reset()
	require.NoError(t, (&commands.CanCmd{Token: "arduino"}).Run(ctx, g))
	assert.Equal(t, "yes\n", out.String())

	out.Reset()
	require.NoError(t, (&commands.CanCmd{Token: "create_curriculum"}).Run(ctx, g))
	assert.Equal(t, "yes\n", out.String())

	out.Reset()
	err = (&commands.CanCmd{Token: "laser_cutter"}).Run(ctx, g)
	require.ErrorIs(t, err, commands.ErrNotPermitted)
	assert.Equal(t, "no\n", out.String())
}

func TestTools(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.ToolsCmd{}).Run(ctx, g))
	assert.Empty(t, out.String())

	require.NoError(t, (&commands.LoginCmd{Code: validCode}).Run(ctx, g))
	out.Reset()
	require.NoError(t, (&commands.ToolsCmd{}).Run(ctx, g))
	assert.Equal(t, []string{"arduino", "3d_printer", "computers", "basic_sensors", "hand_tools"},
		strings.Fields(out.String()))
}

func TestExtend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	err := (&commands.ExtendCmd{}).Run(ctx, g)
	require.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, (&commands.LoginCmd{Code: validCode}).Run(ctx, g))
	out.Reset()
	require.NoError(t, (&commands.ExtendCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Session extended until")
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.LoginCmd{Code: validCode, Remember: true}).Run(ctx, g))
	require.NoError(t, (&commands.LogoutCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Signed out.")

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.CleanupCmd{}).Run(ctx, g))
	assert.Equal(t, "Removed 0 expired session(s).\n", out.String())
}

func TestAnalytics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	_ = (&commands.LoginCmd{Code: "nope"}).Run(ctx, g)
	require.NoError(t, (&commands.LoginCmd{Code: validCode}).Run(ctx, g))

	out.Reset()
	require.NoError(t, (&commands.AnalyticsCmd{JSON: true}).Run(ctx, g))
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByEvent["login_failed"])
	assert.Equal(t, 1, stats.ByEvent["login_success"])

	out.Reset()
	require.NoError(t, (&commands.AnalyticsCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Events: 2")

	out.Reset()
	require.NoError(t, (&commands.AnalyticsCmd{Clear: true}).Run(ctx, g))
	assert.Equal(t, "Analytics cleared.\n", out.String())

	out.Reset()
	require.NoError(t, (&commands.AnalyticsCmd{JSON: true}).Run(ctx, g))
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Zero(t, stats.Total)
}

func TestProfiles(t *testing.T) {
	t.Parallel()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.ProfilesCmd{}).Run(context.Background(), g))
	assert.Contains(t, out.String(), "access_id: valencia_eso_2025")
}

func TestUnknownStore(t *testing.T) {
	t.Parallel()
	g, _ := newGlobals(t)
	g.Config.Store = "etcd"

	err := (&commands.StatusCmd{}).Run(context.Background(), g)
	require.ErrorIs(t, err, commands.ErrUnknownStore)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)
	g.Config.Store = commands.StoreMemory

	require.NoError(t, (&commands.LoginCmd{Code: validCode, Remember: true}).Run(ctx, g))

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestShell(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)
	g.In = strings.NewReader(strings.Join([]string{
		"help",
		"login " + validCode,
		"can arduino",
		"can laser_cutter",
		"external",
		"bogus",
		"quit",
		"status",
	}, "\n"))

	require.NoError(t, (&commands.ShellCmd{}).Run(ctx, g))

	s := out.String()
	assert.Contains(t, s, "Commands:")
	assert.Contains(t, s, "Signed in as ESO Technology Teacher")
	assert.Contains(t, s, "yes\n")
	assert.Contains(t, s, "no\n")
	assert.Contains(t, s, "External sign-in is not configured.")
	assert.Contains(t, s, `Unknown command "bogus"`)
	assert.NotContains(t, s, "Educator:")

	// The shell's own session is gone once it exits.
	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, g))
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestShellEOF(t *testing.T) {
	t.Parallel()
	g, out := newGlobals(t)
	g.In = strings.NewReader("login " + validCode + " -r\n")

	require.NoError(t, (&commands.ShellCmd{}).Run(context.Background(), g))
	assert.Contains(t, out.String(), "Signed in as")

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(context.Background(), g))
	assert.Contains(t, out.String(), "persistent")
}

func TestLoginExternalNotConfigured(t *testing.T) {
	t.Parallel()
	g, _ := newGlobals(t)

	err := (&commands.LoginExternalCmd{Provider: "github"}).Run(context.Background(), g)
	require.ErrorIs(t, err, commands.ErrNotConfigured)
}

func TestDoctor(t *testing.T) {
	t.Parallel()
	g, out := newGlobals(t)

	require.NoError(t, (&commands.DoctorCmd{}).Run(context.Background(), g))
	s := out.String()
	assert.Contains(t, s, "registry")
	assert.Contains(t, s, "store:file")
	assert.Contains(t, s, "store:volatile")
	assert.NotContains(t, s, "FAIL")
}

func TestStartupDropsExpiredVolatileSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, out := newGlobals(t)

	// This terminal signs in for a moment; another one remembers the admin.
	here := *g
	here.Config.VolatileFile = filepath.Join(t.TempDir(), "here.json")
	short := here
	short.Session.TTL = time.Millisecond
	require.NoError(t, (&commands.LoginCmd{Code: "demo_teacher"}).Run(ctx, &short))
	require.NoError(t, (&commands.LoginCmd{Code: "admin_hub_2025", Remember: true}).Run(ctx, g))
	time.Sleep(20 * time.Millisecond)

	out.Reset()
	require.NoError(t, (&commands.StatusCmd{}).Run(ctx, &here))
	assert.Contains(t, out.String(), "System Administrator")
	assert.Contains(t, out.String(), "persistent")
}
