package server

import (
	"fmt"
	"net"
	"net/url"
)

// CallbackAddr splits an OAuth redirect URL into the address to listen on
// and the path to route, e.g. "http://127.0.0.1:8085/callback" gives
// "127.0.0.1:8085" and "/callback".
func CallbackAddr(redirectURL string) (addr, path string, err error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidRedirectURL, err)
	}
	if u.Scheme != "http" || u.Hostname() == "" {
		return "", "", ErrInvalidRedirectURL
	}

	port := u.Port()
	if port == "" {
		port = "80"
	}
	path = u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return net.JoinHostPort(u.Hostname(), port), path, nil
}
