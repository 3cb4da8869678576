package profile

import (
	"fmt"
	"slices"
)

// Profile describes an educator: who they are and what they may use.
type Profile struct {
	AccessID               string   `json:"access_id" yaml:"access_id"`
	DisplayName            string   `json:"display_name" yaml:"display_name"`
	RoleLabel              string   `json:"role_label" yaml:"role_label"`
	Organization           string   `json:"organization" yaml:"organization"`
	Level                  Level    `json:"level" yaml:"level"`
	Permissions            []string `json:"permissions" yaml:"permissions"`
	Tools                  []string `json:"tools" yaml:"tools"`
	CapacityLimit          int      `json:"capacity_limit" yaml:"capacity_limit"`
	SessionDurationMinutes int      `json:"session_duration_minutes" yaml:"session_duration_minutes"`
	AvatarURL              string   `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	Email                  string   `json:"email,omitempty" yaml:"email,omitempty"`
	IdentityProvider       string   `json:"identity_provider,omitempty" yaml:"identity_provider,omitempty"`
}

// Validate checks the fields every consumer relies on.
func (p Profile) Validate() error {
	switch {
	case p.AccessID == "":
		return fmt.Errorf("%w: empty access id", ErrInvalidProfile)
	case !p.Level.Valid():
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidProfile, p.AccessID, ErrUnknownLevel, p.Level)
	case p.Permissions == nil:
		return fmt.Errorf("%w: %s: missing permissions", ErrInvalidProfile, p.AccessID)
	case p.Tools == nil:
		return fmt.Errorf("%w: %s: missing tools", ErrInvalidProfile, p.AccessID)
	case p.CapacityLimit < 0:
		return fmt.Errorf("%w: %s: negative capacity", ErrInvalidProfile, p.AccessID)
	}
	return nil
}

// Can reports whether the profile grants token, directly or via the wildcard.
func (p Profile) Can(token string) bool {
	return slices.Contains(p.Permissions, Wildcard) || slices.Contains(p.Permissions, token)
}

// AvailableTools returns the tool set with the wildcard expanded to the catalog.
func (p Profile) AvailableTools() []string {
	if slices.Contains(p.Tools, Wildcard) {
		return Catalog()
	}
	return slices.Clone(p.Tools)
}

// External reports whether the profile was derived from an external identity.
func (p Profile) External() bool {
	return p.IdentityProvider != ""
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	p.Permissions = slices.Clone(p.Permissions)
	p.Tools = slices.Clone(p.Tools)
	return p
}
