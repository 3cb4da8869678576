package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/command"
	"github.com/aprenmaker/hubauth/core/event"
	"github.com/aprenmaker/hubauth/core/health"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/logger"
	"github.com/aprenmaker/hubauth/core/profile"
	"github.com/aprenmaker/hubauth/core/session"
)

// App is the wired session manager and its collaborators for one command.
type App struct {
	Manager  *session.Manager
	Bus      *event.Bus
	Commands *command.Dispatcher
	Provider identity.Provider
	Registry *profile.Registry
	Log      *slog.Logger
	Out      io.Writer

	checks  []health.Check
	closers []func()
}

type appOptions struct {
	provider   identity.Provider
	volatile   kvstore.Store
	middleware []command.Middleware
	closers    []func()
}

type appOption func(*appOptions)

func withProvider(p identity.Provider) appOption {
	return func(o *appOptions) { o.provider = p }
}

// withMiddleware adds dispatcher middleware after the logging middleware.
func withMiddleware(mw ...command.Middleware) appOption {
	return func(o *appOptions) { o.middleware = append(o.middleware, mw...) }
}

// withCloser registers cleanup that runs before the backends are released.
func withCloser(fn func()) appOption {
	return func(o *appOptions) { o.closers = append(o.closers, fn) }
}

// withVolatile replaces the per-terminal volatile file.
func withVolatile(s kvstore.Store) appOption {
	return func(o *appOptions) { o.volatile = s }
}

func newLogger(g *Globals) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(g.Config.Env, "hubauth"),
		logger.WithLevelName(g.Config.LogLevel),
		logger.WithOutput(os.Stderr),
	}
	if g.Debug {
		opts = append(opts, logger.WithLevelName("debug"))
	}
	return logger.New(opts...)
}

func loadRegistry(g *Globals) (*profile.Registry, error) {
	if g.Config.ProfilesFile == "" {
		return profile.DefaultRegistry(), nil
	}
	f, err := os.Open(g.Config.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer func() { _ = f.Close() }()
	return profile.LoadRegistry(f)
}

func newApp(ctx context.Context, g *Globals, opts ...appOption) (*App, error) {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}

	log := newLogger(g)
	app := &App{Log: log, Out: g.Out, Provider: o.provider}
	if app.Out == nil {
		app.Out = os.Stdout
	}

	registry, err := loadRegistry(g)
	if err != nil {
		return nil, err
	}
	app.Registry = registry

	be, err := openPersistent(ctx, g.Config, log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", g.Config.Store, err)
	}
	persistent := be.store
	app.closers = append(app.closers, be.close)
	app.closers = append(app.closers, o.closers...)

	volatile := o.volatile
	if volatile == nil {
		if volatile, err = kvstore.OpenFile(volatilePath(g.Config)); err != nil {
			app.Close()
			return nil, fmt.Errorf("open volatile store: %w", err)
		}
	}

	app.checks = []health.Check{
		{Name: "registry", Fn: func(context.Context) error {
			if registry.Len() == 0 {
				return profile.ErrEmptyRegistry
			}
			return nil
		}},
		be.check,
		{Name: "store:volatile", Fn: func(ctx context.Context) error {
			_, err := volatile.Keys(ctx, kvstore.SessionKey)
			return err
		}},
	}

	app.Bus = event.NewBus(event.WithLogger(log))
	app.Commands = command.NewDispatcher(
		command.WithLogger(log),
		command.WithMiddleware(append([]command.Middleware{command.LoggingMiddleware(log)}, o.middleware...)...),
	)

	managerOpts := []session.Option{
		session.WithConfig(g.Session),
		session.WithLogger(log),
		session.WithVolatileStore(volatile),
		session.WithPersistentStore(persistent),
		session.WithPublisher(app.Bus),
		session.WithAnalytics(analytics.New(persistent, g.Analytics, analytics.WithLogger(log))),
	}
	if o.provider != nil {
		managerOpts = append(managerOpts, session.WithIdentityProvider(o.provider))
	}
	app.Manager = session.NewManager(registry, managerOpts...)
	app.Manager.RegisterCommands(app.Commands)

	// An expired volatile session would otherwise be read first and its
	// logout would take a still-valid remembered session with it.
	app.Manager.CleanupExpiredSessions(ctx)
	app.Manager.ResumeExternalSession(ctx)

	return app, nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for _, c := range slices.Backward(a.closers) {
		c()
	}
	a.closers = nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}
