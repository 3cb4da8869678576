package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aprenmaker/hubauth/core/command"
	"github.com/aprenmaker/hubauth/core/config"
	"github.com/aprenmaker/hubauth/core/health"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/server"
	"github.com/aprenmaker/hubauth/core/session"
	"github.com/aprenmaker/hubauth/integration/identity/oauth"
)

type LoginExternalCmd struct {
	Provider string        `help:"Identity provider" enum:"github,google" default:"github"`
	Timeout  time.Duration `help:"How long to wait for the browser sign-in" default:"5m"`
}

func (c *LoginExternalCmd) Run(ctx context.Context, g *Globals) error {
	var oc oauth.Config
	if err := config.Load(&oc); err != nil {
		return err
	}
	oc.Provider = c.Provider

	outcomes := make(chan externalOutcome, 1)
	app, p, err := newExternalApp(ctx, g, oc, withMiddleware(watchExternal(outcomes)))
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	return app.runExternal(ctx, p, oc.RedirectURL, func(ctx context.Context) error {
		return app.awaitExternal(ctx, outcomes)
	})
}

// newExternalApp wires an OAuth provider into the app. The authorization URL
// is printed for the user to open.
func newExternalApp(ctx context.Context, g *Globals, oc oauth.Config, opts ...appOption) (*App, *oauth.Provider, error) {
	if oc.ClientID == "" || oc.ClientSecret == "" {
		return nil, nil, ErrNotConfigured
	}

	out := g.Out
	p, err := oauth.New(oc,
		oauth.WithLogger(newLogger(g)),
		oauth.WithAuthURLHandler(func(u string) {
			_, _ = fmt.Fprintf(out, "Open this URL in your browser to sign in:\n\n  %s\n\n", u)
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	opts = append(opts, withProvider(p), withCloser(p.Close))
	app, err := newApp(ctx, g, opts...)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return app, p, nil
}

// externalOutcome is how one provider flow ended: err for a failure,
// closed for a dismissed flow, neither for a login the manager accepted.
type externalOutcome struct {
	err    error
	closed bool
}

// watchExternal reports the first outcome of a provider flow once the manager
// has handled it. Later outcomes are dropped until the first is read.
func watchExternal(ch chan<- externalOutcome) command.Middleware {
	return command.ObserverMiddleware(func(_ context.Context, payload any, err error) {
		var o externalOutcome
		switch e := payload.(type) {
		case identity.ExternalLogin:
			o.err = err
		case identity.ExternalError:
			o.err = e.Err
		case identity.ExternalClosed:
			o.closed = true
		default:
			return
		}
		select {
		case ch <- o:
		default:
		}
	})
}

// runExternal serves the OAuth callback and pumps provider events into the
// manager while fn runs. Everything stops when fn returns.
func (a *App) runExternal(ctx context.Context, p *oauth.Provider, redirectURL string, fn func(context.Context) error) error {
	addr, path, err := server.CallbackAddr(redirectURL)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(path, p.CallbackHandler())
	mux.Handle("GET /healthz", health.Handler(a.Log, a.checks...))

	srv := server.New(addr, server.WithLogger(a.Log))
	if _, err := srv.Listen(); err != nil {
		return fmt.Errorf("listen for sign-in callback on %s: %w", addr, err)
	}

	adapter := identity.NewAdapter(p, a.Commands, identity.WithAdapterLogger(a.Log))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run(gctx, mux))
	g.Go(func() error {
		err := adapter.Run(gctx)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		if _, err := adapter.Ready().Await(gctx); err != nil {
			return err
		}
		return fn(gctx)
	})

	return g.Wait()
}

// awaitExternal starts the provider flow and waits for its outcome or for
// ctx to end.
func (a *App) awaitExternal(ctx context.Context, outcomes <-chan externalOutcome) error {
	res, err := a.Manager.BeginExternalLogin(ctx)
	a.printf("%s\n", res.Message)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out", ErrLoginAbandoned)
		}
		return ctx.Err()
	case o := <-outcomes:
		switch {
		case o.err != nil:
			a.printf("Sign-in failed.\n")
			return fmt.Errorf("%w: %w", ErrLoginAbandoned, o.err)
		case o.closed:
			a.printf("Sign-in cancelled.\n")
			return ErrLoginAbandoned
		}
	}

	// A repeated login for the signed-in user keeps the current session.
	s, ok := a.Manager.Session(ctx)
	if !ok || s.Origin != session.OriginExternal {
		a.printf("Sign-in failed.\n")
		return ErrLoginAbandoned
	}
	a.printf("Signed in as %s (%s, %s).\n", s.Profile.DisplayName, s.Profile.RoleLabel, s.Profile.Organization)
	return nil
}
