package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aprenmaker/hubauth/core/profile"
	"github.com/aprenmaker/hubauth/core/session"
)

type LoginCmd struct {
	Code     string `help:"Access code issued by your administrator" required:""`
	Remember bool   `help:"Keep the session after this terminal closes" short:"r"`
}

func (c *LoginCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.login(ctx, c.Code, c.Remember)
}

func (a *App) login(ctx context.Context, code string, remember bool) error {
	res, err := a.Manager.LoginWithCode(ctx, code, remember)
	if err != nil {
		a.printf("%s\n", res.Message)
		return err
	}
	a.printf("Signed in as %s (%s, %s).\n", res.Profile.DisplayName, res.Profile.RoleLabel, res.Profile.Organization)
	a.printf("Session expires at %s.\n", res.Session.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	app.logout(ctx)
	return nil
}

func (a *App) logout(ctx context.Context) {
	a.Manager.Logout(ctx)
	a.printf("Signed out.\n")
}

type StatusCmd struct {
	JSON bool `help:"Print the session as JSON"`
}

func (c *StatusCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.status(ctx, c.JSON)
}

type statusView struct {
	Profile      profile.Profile      `json:"profile"`
	Origin       session.Origin       `json:"origin"`
	Scope        string               `json:"scope"`
	ExpiresAt    time.Time            `json:"expires_at"`
	TimeLeft     string               `json:"time_left"`
	Restrictions profile.Restrictions `json:"restrictions"`
}

func (a *App) status(ctx context.Context, asJSON bool) error {
	s, ok := a.Manager.Session(ctx)
	if !ok {
		a.printf("Not signed in.\n")
		return nil
	}
	left, _ := a.Manager.TimeLeft(ctx)
	restrictions, _ := a.Manager.LevelRestrictions(ctx)

	view := statusView{
		Profile:      s.Profile,
		Origin:       s.Origin,
		Scope:        s.Scope().String(),
		ExpiresAt:    s.ExpiresAt,
		TimeLeft:     left.Round(time.Second).String(),
		Restrictions: restrictions,
	}
	if asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	p := view.Profile
	a.printf("%-14s %s\n", "Educator:", p.DisplayName)
	a.printf("%-14s %s\n", "Role:", p.RoleLabel)
	a.printf("%-14s %s\n", "Organization:", p.Organization)
	a.printf("%-14s %s\n", "Level:", p.Level)
	if p.Email != "" {
		a.printf("%-14s %s\n", "Email:", p.Email)
	}
	a.printf("%-14s %s (%s)\n", "Session:", view.Origin, view.Scope)
	a.printf("%-14s %s (%s left)\n", "Expires:", view.ExpiresAt.Local().Format(time.DateTime), view.TimeLeft)
	a.printf("%-14s %s\n", "Permissions:", strings.Join(p.Permissions, ", "))
	a.printf("%-14s complexity %s, duration %s, safety %s\n", "Projects:",
		restrictions.Complexity, restrictions.ProjectDuration, restrictions.SafetyLevel)
	return nil
}

type CanCmd struct {
	Token string `arg:"" help:"Permission or tool name"`
}

func (c *CanCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.can(ctx, c.Token)
}

func (a *App) can(ctx context.Context, token string) error {
	if !a.Manager.HasCapability(ctx, token) {
		a.printf("no\n")
		return fmt.Errorf("%q: %w", token, ErrNotPermitted)
	}
	a.printf("yes\n")
	return nil
}

type ToolsCmd struct{}

func (c *ToolsCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	app.tools(ctx)
	return nil
}

func (a *App) tools(ctx context.Context) {
	for _, t := range a.Manager.AvailableTools(ctx) {
		a.printf("%s\n", t)
	}
}

type ExtendCmd struct{}

func (c *ExtendCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.extend(ctx)
}

func (a *App) extend(ctx context.Context) error {
	if !a.Manager.ExtendSession(ctx) {
		a.printf("Not signed in.\n")
		return session.ErrNoSession
	}
	s, _ := a.Manager.Session(ctx)
	a.printf("Session extended until %s.\n", s.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

type AnalyticsCmd struct {
	JSON  bool `help:"Print statistics as JSON"`
	Clear bool `help:"Delete the analytics log"`
}

func (c *AnalyticsCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	if c.Clear {
		if err := app.Manager.Analytics().Clear(ctx); err != nil {
			return err
		}
		app.printf("Analytics cleared.\n")
		return nil
	}
	return app.analytics(ctx, c.JSON)
}

func (a *App) analytics(ctx context.Context, asJSON bool) error {
	stats := a.Manager.Analytics().Stats(ctx)
	if asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	a.printf("Events: %d, unique educators: %d\n", stats.Total, stats.UniqueActors)
	for _, name := range slices.Sorted(maps.Keys(stats.ByEvent)) {
		a.printf("  %-28s %d\n", name, stats.ByEvent[name])
	}
	if len(stats.Recent) > 0 {
		a.printf("Recent:\n")
		for _, e := range stats.Recent {
			a.printf("  %s  %-28s %s\n", e.Timestamp.Local().Format(time.DateTime), e.Event, e.Actor)
		}
	}
	return nil
}

type CleanupCmd struct{}

func (c *CleanupCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	n := app.Manager.CleanupExpiredSessions(ctx)
	app.printf("Removed %d expired session(s).\n", n)
	return nil
}

type ProfilesCmd struct{}

func (c *ProfilesCmd) Run(ctx context.Context, g *Globals) error {
	registry, err := loadRegistry(g)
	if err != nil {
		return err
	}
	return profile.WriteRegistry(g.Out, registry)
}
