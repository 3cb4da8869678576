package oauth

import "errors"

var (
	ErrUnknownProvider = errors.New("oauth: unknown provider")
	ErrMissingClient   = errors.New("oauth: client id, client secret and redirect url are required")
	ErrStateMismatch   = errors.New("oauth: unknown or expired state")
	ErrMissingCode     = errors.New("oauth: callback without code")
	ErrExchangeFailed  = errors.New("oauth: code exchange failed")
	ErrUserInfo        = errors.New("oauth: failed to fetch user info")
	ErrNoIdentity      = errors.New("oauth: provider returned no user id")
)
