package model

import (
	"context"
	"net/http"
)

// Request is one call to the account service.
type Request struct {
	Method   string
	Endpoint string
	Body     any
	Header   http.Header
}

// Response is the decoded envelope of a successful call.
type Response struct {
	Status   int
	Envelope Envelope
	Header   http.Header
}

// Requester sends requests through the account service gateway.
type Requester interface {
	Do(ctx context.Context, req Request, out any) (*Response, error)
}

// AuthStateHolder exposes the process-wide authentication state.
type AuthStateHolder interface {
	State() AuthState
}

// AuthCommitter commits authentication outcomes to the process-wide state.
type AuthCommitter interface {
	AuthStateHolder
	Login(user User)
	Logout(ctx context.Context)
}

// TwoFactorVerifier answers a pending second-factor challenge.
type TwoFactorVerifier interface {
	VerifyTwoFactor(ctx context.Context, code string) (User, error)
}

// TwoFactorManager enrolls and removes the second factor.
type TwoFactorManager interface {
	TwoFactorStatus(ctx context.Context) (bool, error)
	GenerateTwoFactorSecret(ctx context.Context) (TwoFactorSecret, error)
	ChangeTwoFactor(ctx context.Context, code string) (bool, error)
}

// SessionAPI lists and revokes authenticated devices.
type SessionAPI interface {
	Sessions(ctx context.Context) ([]SessionDevice, error)
	RevokeSession(ctx context.Context, id string) error
	RevokeOtherSessions(ctx context.Context) error
}

// AccountAPI is the typed surface of the account service.
type AccountAPI interface {
	CurrentUserProber
	TwoFactorVerifier
	TwoFactorManager
	SessionAPI
	Signup(ctx context.Context, signup Signup) (User, error)
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Logout(ctx context.Context) error
	ChangeName(ctx context.Context, fullName string) (User, error)
	ChangePassword(ctx context.Context, current, next string) error
}
