package model

import "context"

// AuthState is the process-wide answer to "is anyone logged in, and as whom".
// Status is true exactly when LoggedInUser is set.
type AuthState struct {
	Status       bool
	LoggedInUser *User
}

// Consistent reports whether the state honours the Status/LoggedInUser invariant.
func (s AuthState) Consistent() bool {
	return s.Status == (s.LoggedInUser != nil)
}

// Role returns the logged-in user's role or an empty role.
func (s AuthState) Role() Role {
	if s.LoggedInUser == nil {
		return ""
	}
	return s.LoggedInUser.Role
}

// Hydration is the outcome of the startup session probe.
type Hydration int

const (
	// HydrationPending means the probe has not resolved yet.
	HydrationPending Hydration = iota
	// HydrationAuthenticated means a live session was found.
	HydrationAuthenticated
	// HydrationAnonymous means the server definitively reported no session.
	HydrationAnonymous
	// HydrationUnresolved means the probe failed ambiguously; state was left untouched.
	HydrationUnresolved
)

// String returns the outcome name used in logs.
func (h Hydration) String() string {
	switch h {
	case HydrationAuthenticated:
		return "authenticated"
	case HydrationAnonymous:
		return "anonymous"
	case HydrationUnresolved:
		return "unresolved"
	default:
		return "pending"
	}
}

// CurrentUserProber answers "who am I" against the account service.
type CurrentUserProber interface {
	CurrentUser(ctx context.Context) (User, error)
}

// CaptchaProvider produces an opaque anti-bot token for an action.
type CaptchaProvider interface {
	Token(ctx context.Context, action string) (string, error)
}

// Navigator moves the UI to another route.
type Navigator interface {
	Navigate(path string)
}
