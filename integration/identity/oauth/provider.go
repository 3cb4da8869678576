package oauth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/logger"
)

// Supported providers.
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

var (
	_ identity.Provider = (*Provider)(nil)
	_ identity.Restorer = (*Provider)(nil)
)

type endpoints struct {
	userInfo string
	emails   string
}

type pendingAuth struct {
	verifier string
	created  time.Time
}

type fetchFunc func(ctx context.Context, client *http.Client, urls endpoints) (identity.Identity, error)

// Provider runs the OAuth authorization code flow with PKCE against GitHub or
// Google and reports the outcome as identity events.
//
// Open produces the authorization URL and hands it to the AuthURL handler;
// the browser then lands on CallbackHandler, which exchanges the code, reads
// the user profile and emits EventLogin.
type Provider struct {
	name      string
	conf      *oauth2.Config
	urls      endpoints
	fetch     fetchFunc
	client    *http.Client
	stateTTL  time.Duration
	timeout   time.Duration
	onAuthURL func(string)
	log       *slog.Logger
	now       func() time.Time

	state  *identity.MemoryProvider
	closed atomic.Bool

	mu      sync.Mutex
	pending map[string]pendingAuth
	token   *oauth2.Token
}

// Option configures a Provider.
type Option func(*Provider)

// WithEndpoint overrides the authorization and token URLs.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(p *Provider) {
		p.conf.Endpoint = ep
	}
}

// WithUserInfoURL overrides the profile URL and, for GitHub, the emails URL.
func WithUserInfoURL(userInfo, emails string) Option {
	return func(p *Provider) {
		p.urls = endpoints{userInfo: userInfo, emails: emails}
	}
}

// WithHTTPClient sets the client used for the token exchange and profile calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithAuthURLHandler receives the authorization URL on every Open.
func WithAuthURLHandler(fn func(url string)) Option {
	return func(p *Provider) {
		p.onAuthURL = fn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock replaces time.Now for state expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New configures the provider named by cfg.Provider. The provider is ready
// immediately; its EventInit is already queued on Events.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, ErrMissingClient
	}

	p := &Provider{
		name:     strings.ToLower(strings.TrimSpace(cfg.Provider)),
		client:   http.DefaultClient,
		stateTTL: cfg.StateTTL,
		timeout:  cfg.Timeout,
		log:      logger.Discard(),
		now:      time.Now,
		pending:  make(map[string]pendingAuth),
	}
	if p.stateTTL <= 0 {
		p.stateTTL = 10 * time.Minute
	}

	p.conf = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
	}

	switch p.name {
	case ProviderGitHub:
		p.conf.Endpoint = github.Endpoint
		p.urls = endpoints{userInfo: "https://api.github.com/user", emails: "https://api.github.com/user/emails"}
		p.fetch = fetchGitHub
		if len(p.conf.Scopes) == 0 {
			p.conf.Scopes = []string{"read:user", "user:email"}
		}
	case ProviderGoogle:
		p.conf.Endpoint = google.Endpoint
		p.urls = endpoints{userInfo: "https://openidconnect.googleapis.com/v1/userinfo"}
		p.fetch = fetchGoogle
		if len(p.conf.Scopes) == 0 {
			p.conf.Scopes = []string{"openid", "email", "profile"}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	for _, opt := range opts {
		opt(p)
	}

	p.state = identity.NewMemoryProvider(p.name, 16)
	p.state.Init()
	return p, nil
}

func (p *Provider) Name() string                  { return p.name }
func (p *Provider) Ready() <-chan struct{}        { return p.state.Ready() }
func (p *Provider) Events() <-chan identity.Event { return p.state.Events() }

func (p *Provider) CurrentUser() (identity.Identity, bool) {
	return p.state.CurrentUser()
}

// Open starts a new authorization attempt.
func (p *Provider) Open(ctx context.Context) error {
	if p.closed.Load() {
		return identity.ErrClosed
	}

	state := rand.Text()
	verifier := oauth2.GenerateVerifier()

	p.mu.Lock()
	p.expireLocked()
	p.pending[state] = pendingAuth{verifier: verifier, created: p.now()}
	p.mu.Unlock()

	url := p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	p.log.InfoContext(ctx, "authorization started", logger.Provider(p.name))
	if p.onAuthURL != nil {
		p.onAuthURL(url)
	}
	return nil
}

// Callback completes an attempt started by Open. Failures are emitted as
// EventError as well as returned.
func (p *Provider) Callback(ctx context.Context, state, code string) error {
	if err := p.callback(ctx, state, code); err != nil {
		p.log.WarnContext(ctx, "authorization failed", logger.Provider(p.name), logger.Error(err))
		p.state.Fail(err)
		return err
	}
	return nil
}

func (p *Provider) callback(ctx context.Context, state, code string) error {
	p.mu.Lock()
	pa, ok := p.pending[state]
	delete(p.pending, state)
	p.mu.Unlock()

	if !ok || p.now().Sub(pa.created) > p.stateTTL {
		return ErrStateMismatch
	}
	if code == "" {
		return ErrMissingCode
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tok, err := p.conf.Exchange(ctx, code, oauth2.VerifierOption(pa.verifier))
	if err != nil {
		return errors.Join(ErrExchangeFailed, err)
	}

	id, err := p.fetch(ctx, p.conf.Client(ctx, tok), p.urls)
	if err != nil {
		return errors.Join(ErrUserInfo, err)
	}

	p.mu.Lock()
	p.token = tok
	p.mu.Unlock()

	p.log.InfoContext(ctx, "authorization completed", logger.Provider(p.name), logger.Key("external_id", id.ID))
	p.state.SignIn(id)
	return nil
}

// Cancel abandons an attempt and emits EventClose, as when the user denies
// consent on the provider's page.
func (p *Provider) Cancel(state string) {
	p.mu.Lock()
	delete(p.pending, state)
	p.mu.Unlock()
	p.state.Dismiss()
}

// Restore marks id as signed in, as when a remembered session is resumed in
// a new process. No token is held until the next authorization.
func (p *Provider) Restore(id identity.Identity) {
	if id.ID == "" {
		return
	}
	if id.Provider == "" {
		id.Provider = p.name
	}
	p.state.SetUser(&id)
}

// CallbackHandler serves the redirect URL.
func (p *Provider) CallbackHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if q.Get("error") != "" {
			p.Cancel(q.Get("state"))
			_, _ = fmt.Fprintln(w, "Sign-in cancelled. You can close this window.")
			return
		}

		if err := p.Callback(r.Context(), q.Get("state"), q.Get("code")); err != nil {
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}
		_, _ = fmt.Fprintln(w, "Signed in. You can close this window.")
	})
}

// Token returns the access token of the signed-in user.
func (p *Provider) Token() (*oauth2.Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token, p.token != nil
}

// Logout forgets the token and emits EventLogout.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.token = nil
	p.mu.Unlock()
	p.state.SignOut()
	return nil
}

// Close ends the event stream.
func (p *Provider) Close() {
	p.closed.Store(true)
	p.state.Close()
}

func (p *Provider) expireLocked() {
	now := p.now()
	for s, pa := range p.pending {
		if now.Sub(pa.created) > p.stateTTL {
			delete(p.pending, s)
		}
	}
}
