package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aprenmaker/hubauth/core/command"
	"github.com/aprenmaker/hubauth/core/config"
	"github.com/aprenmaker/hubauth/core/event"
	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/logger"
	"github.com/aprenmaker/hubauth/core/session"
	"github.com/aprenmaker/hubauth/integration/identity/oauth"
)

// ShellCmd keeps one session open in an interactive loop. Code logins that
// are not remembered live only as long as the shell.
type ShellCmd struct {
	Remember bool `help:"Remember code logins after the shell exits" short:"r"`
}

func (c *ShellCmd) Run(ctx context.Context, g *Globals) error {
	var oc oauth.Config
	if err := config.Load(&oc); err != nil {
		return err
	}

	out := g.Out
	if out == nil {
		out = os.Stdout
	}
	opts := []appOption{
		withVolatile(kvstore.NewMemory()),
		withMiddleware(command.ObserverMiddleware(func(_ context.Context, payload any, _ error) {
			if e, ok := payload.(identity.ExternalError); ok {
				_, _ = fmt.Fprintf(out, "\nSign-in failed: %v\n", e.Err)
			}
		})),
	}

	var (
		app *App
		p   *oauth.Provider
		err error
	)
	if oc.ClientID != "" && oc.ClientSecret != "" {
		app, p, err = newExternalApp(ctx, g, oc, opts...)
	} else {
		app, err = newApp(ctx, g, opts...)
	}
	if err != nil {
		return err
	}
	defer app.Close()

	in := g.In
	if in == nil {
		in = os.Stdin
	}
	sh := newShell(app, in, c.Remember)
	if p == nil {
		return sh.run(ctx)
	}
	sh.external = true
	return app.runExternal(ctx, p, oc.RedirectURL, sh.run)
}

type ask struct {
	left  time.Duration
	reply chan bool
}

type shell struct {
	app      *App
	in       io.Reader
	remember bool
	external bool
	asks     chan ask
}

func newShell(app *App, in io.Reader, remember bool) *shell {
	return &shell{app: app, in: in, remember: remember, asks: make(chan ask)}
}

// run reads commands until EOF, quit, or ctx ends.
func (s *shell) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := s.app.Bus.Subscribe(event.NewHandlerFunc(func(_ context.Context, e session.LoginEvent) error {
		if e.Session.Origin == session.OriginExternal {
			s.app.printf("\nSigned in as %s (%s, %s).\n", e.Profile.DisplayName, e.Profile.RoleLabel, e.Profile.Organization)
		}
		return nil
	}))
	defer unsubscribe()

	lines := make(chan string)
	go s.read(ctx, lines)

	w := session.NewWatcher(s.app.Manager, s.prompt)
	w.Start(ctx)
	defer w.Stop()

	s.app.printf("hubauth shell. Type \"help\" for commands.\n")
	for {
		s.app.printf("> ")
		select {
		case <-ctx.Done():
			return nil
		case a := <-s.asks:
			s.app.printf("\nSession expires in %s. Extend it? [y/N] ", a.left.Round(time.Second))
			var answer string
			select {
			case <-ctx.Done():
				return nil
			case answer = <-lines:
			}
			a.reply <- isYes(answer)
		case line, ok := <-lines:
			if !ok {
				s.app.printf("\n")
				return nil
			}
			w.Activity(ctx)
			if s.exec(ctx, line) {
				return nil
			}
		}
	}
}

func (s *shell) read(ctx context.Context, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(s.in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

// prompt hands the expiry question to the read loop and waits for the answer.
func (s *shell) prompt(ctx context.Context, left time.Duration) bool {
	a := ask{left: left, reply: make(chan bool, 1)}
	select {
	case s.asks <- a:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-a.reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// exec runs one shell line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		return true
	case "help":
		s.help()
	case "login":
		code, remember := "", s.remember
		for _, a := range args {
			if a == "-r" || a == "--remember" {
				remember = true
				continue
			}
			code = a
		}
		if code == "" {
			s.app.printf("usage: login <code> [-r]\n")
			return false
		}
		err = s.app.login(ctx, code, remember)
	case "external":
		if !s.external {
			s.app.printf("External sign-in is not configured.\n")
			return false
		}
		var res session.Result
		res, err = s.app.Manager.BeginExternalLogin(ctx)
		s.app.printf("%s\n", res.Message)
	case "logout":
		s.app.logout(ctx)
	case "status":
		err = s.app.status(ctx, hasFlag(args, "--json"))
	case "can":
		if len(args) != 1 {
			s.app.printf("usage: can <permission|tool>\n")
			return false
		}
		err = s.app.can(ctx, args[0])
	case "tools":
		s.app.tools(ctx)
	case "extend":
		err = s.app.extend(ctx)
	case "analytics":
		err = s.app.analytics(ctx, hasFlag(args, "--json"))
	case "doctor":
		err = s.app.doctor(ctx)
	case "cleanup":
		s.app.printf("Removed %d expired session(s).\n", s.app.Manager.CleanupExpiredSessions(ctx))
	default:
		s.app.printf("Unknown command %q. Type \"help\" for commands.\n", name)
	}
	if err != nil {
		s.app.Log.DebugContext(ctx, "shell command failed", logger.Action(name), logger.Error(err))
	}
	return false
}

func (s *shell) help() {
	s.app.printf(`Commands:
  login <code> [-r]   sign in with an access code, -r keeps the session
  external            sign in with the configured identity provider
  logout              sign out
  status [--json]     show the current session
  can <name>          check a permission or tool
  tools               list available tools
  extend              extend the session
  analytics [--json]  show usage analytics
  cleanup             remove expired sessions
  doctor              check the registry and stores
  quit                leave the shell
`)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
