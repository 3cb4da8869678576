// Package oauth is an identity.Provider backed by the OAuth 2.0 authorization
// code flow (with PKCE) against GitHub or Google.
//
// The provider never opens a browser itself. Open hands the authorization URL
// to the function registered with WithAuthURLHandler, and the redirect must
// reach CallbackHandler, typically served on a loopback address by the CLI:
//
//	p, err := oauth.New(cfg, oauth.WithAuthURLHandler(func(u string) {
//		fmt.Println("Open this URL to sign in:", u)
//	}))
//	if err != nil {
//		return err
//	}
//	http.Handle("/callback", p.CallbackHandler())
//
// A successful callback emits identity.EventLogin with the user's stable id,
// email, display name and avatar. Exchange and profile failures emit
// identity.EventError; a denied consent screen emits identity.EventClose.
//
// # Configuration
//
//	OAUTH_PROVIDER       github | google (default: github)
//	OAUTH_CLIENT_ID      (required)
//	OAUTH_CLIENT_SECRET  (required)
//	OAUTH_REDIRECT_URL   (default: http://127.0.0.1:8085/callback)
//	OAUTH_SCOPES         comma separated, provider defaults when empty
//	OAUTH_STATE_TTL      (default: 10m)
//	OAUTH_HTTP_TIMEOUT   (default: 10s)
package oauth
