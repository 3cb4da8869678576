package session

import "github.com/aprenmaker/hubauth/core/profile"

// LoginEvent is published after any successful login.
type LoginEvent struct {
	Profile profile.Profile
	Session Session
}

func (LoginEvent) EventName() string { return "login" }

// LogoutEvent is published when an active session ends.
type LogoutEvent struct{}

func (LogoutEvent) EventName() string { return "logout" }
