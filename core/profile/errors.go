package profile

import "errors"

var (
	ErrUnknownLevel   = errors.New("profile: unknown level")
	ErrDuplicateCode  = errors.New("profile: duplicate access code")
	ErrInvalidProfile = errors.New("profile: invalid profile")
	ErrEmptyRegistry  = errors.New("profile: registry has no access codes")
)
