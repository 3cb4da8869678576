package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aprenmaker/hubauth/core/identity"
)

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type googleUser struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	HD      string `json:"hd"`
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// fetchGitHub reads /user and falls back to the primary verified address from
// /user/emails when the profile email is private.
func fetchGitHub(ctx context.Context, client *http.Client, urls endpoints) (identity.Identity, error) {
	var u githubUser
	if err := getJSON(ctx, client, urls.userInfo, &u); err != nil {
		return identity.Identity{}, err
	}
	if u.ID == 0 {
		return identity.Identity{}, ErrNoIdentity
	}

	if u.Email == "" && urls.emails != "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, urls.emails, &emails); err != nil {
			return identity.Identity{}, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				u.Email = e.Email
				break
			}
		}
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return identity.Identity{
		ID:        strconv.FormatInt(u.ID, 10),
		Email:     u.Email,
		Name:      name,
		AvatarURL: u.AvatarURL,
		Provider:  ProviderGitHub,
		Metadata:  map[string]any{"login": u.Login},
	}, nil
}

func fetchGoogle(ctx context.Context, client *http.Client, urls endpoints) (identity.Identity, error) {
	var u googleUser
	if err := getJSON(ctx, client, urls.userInfo, &u); err != nil {
		return identity.Identity{}, err
	}
	if u.Sub == "" {
		return identity.Identity{}, ErrNoIdentity
	}

	id := identity.Identity{
		ID:        u.Sub,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.Picture,
		Provider:  ProviderGoogle,
	}
	if u.HD != "" {
		id.Metadata = map[string]any{"hd": u.HD}
	}
	return id, nil
}
