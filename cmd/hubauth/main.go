package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/aprenmaker/hubauth/cmd/hubauth/internal/commands"
	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/config"
	"github.com/aprenmaker/hubauth/core/session"
)

var (
	version = "dev"
	cli     struct {
		Login         commands.LoginCmd         `cmd:"" help:"Sign in with an access code"`
		LoginExternal commands.LoginExternalCmd `cmd:"" name:"login-external" help:"Sign in with GitHub or Google"`
		Logout        commands.LogoutCmd        `cmd:"" help:"Sign out and remove local user data"`
		Status        commands.StatusCmd        `cmd:"" help:"Show the current session"`
		Can           commands.CanCmd           `cmd:"" help:"Check a permission or tool; exits non-zero when denied"`
		Tools         commands.ToolsCmd         `cmd:"" help:"List the tools available to the current profile"`
		Extend        commands.ExtendCmd        `cmd:"" help:"Extend the current session"`
		Analytics     commands.AnalyticsCmd     `cmd:"" help:"Show usage analytics"`
		Cleanup       commands.CleanupCmd       `cmd:"" help:"Remove expired sessions"`
		Profiles      commands.ProfilesCmd      `cmd:"" help:"Print the access-code registry as YAML"`
		Shell         commands.ShellCmd         `cmd:"" help:"Interactive session with expiry warnings"`
		Doctor        commands.DoctorCmd        `cmd:"" help:"Check the access-code registry and stores"`
		Debug         bool                      `help:"Enable debug logging."`
		Version       kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("hubauth"),
		kong.Description("Educator session manager for the AprenMaker hub."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	var (
		appCfg       commands.AppConfig
		sessionCfg   session.Config
		analyticsCfg analytics.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&analyticsCfg)

	globals := &commands.Globals{
		Debug:     cli.Debug,
		Version:   version,
		Config:    appCfg,
		Session:   sessionCfg,
		Analytics: analyticsCfg,
		Out:       os.Stdout,
		In:        os.Stdin,
	}
	err := cmd.Run(globals)
	cmd.FatalIfErrorf(err)
}
