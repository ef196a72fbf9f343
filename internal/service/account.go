package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

// Account service endpoints, relative to the API base path.
const (
	EndpointSignup          = "/user/create"
	EndpointLogin           = "/user/login"
	EndpointLogout          = "/user/logout"
	EndpointVerifyTwoFactor = "/user/2fa/verify"
	EndpointProfile         = "/user/profile"
	EndpointTwoFactorStatus = "/user/2fa/status"
	EndpointTwoFactorSecret = "/user/2fa/generate"
	EndpointTwoFactorChange = "/user/2fa/change"
	EndpointChangeName      = "/user/change-name"
	EndpointChangePassword  = "/user/change-pass"
	EndpointSessions        = "/user/sessions"
	EndpointRevokeSession   = "/user/sessions/revoke"
	EndpointRevokeAll       = "/user/sessions/revoke-all"
)

type userPayload struct {
	User *model.User `json:"user"`
}

type loginPayload struct {
	User         *model.User `json:"user"`
	TwofaEnabled bool        `json:"twofaEnabled"`
}

type twoFactorPayload struct {
	TwofaEnabled bool `json:"twofaEnabled"`
}

type sessionsPayload struct {
	Sessions []model.SessionDevice `json:"sessions"`
}

// Account is the typed account service API. Every call goes through the gateway.
type Account struct {
	requester model.Requester
	logger    *logger.Logger
}

// NewAccount creates new Account instance.
func NewAccount(requester model.Requester, logger *logger.Logger) *Account {
	return &Account{
		requester: requester,
		logger:    logger,
	}
}

// Signup creates an account.
func (a *Account) Signup(ctx context.Context, signup model.Signup) (model.User, error) {
	var data userPayload
	body := map[string]any{"user": signup}
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointSignup, Body: body}, &data); err != nil {
		return model.User{}, fmt.Errorf("failed to sign up: %w", err)
	}
	if data.User == nil {
		return model.User{}, missingUser()
	}

	return *data.User, nil
}

// Login checks credentials. TwoFactorRequired is set when a code is still needed.
func (a *Account) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	var data loginPayload
	body := map[string]any{"user": creds}
	resp, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointLogin, Body: body}, &data)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("failed to log in: %w", err)
	}

	if data.TwofaEnabled {
		return model.LoginResult{TwoFactorRequired: true, Message: resp.Envelope.Message}, nil
	}
	if data.User == nil {
		return model.LoginResult{}, missingUser()
	}

	return model.LoginResult{User: data.User, Message: resp.Envelope.Message}, nil
}

// Logout ends the server session.
func (a *Account) Logout(ctx context.Context) error {
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointLogout}, nil); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	return nil
}

// VerifyTwoFactor answers the pending second factor of the ambient session.
func (a *Account) VerifyTwoFactor(ctx context.Context, code string) (model.User, error) {
	var data userPayload
	body := map[string]string{"code": code}
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointVerifyTwoFactor, Body: body}, &data); err != nil {
		return model.User{}, fmt.Errorf("failed to verify code: %w", err)
	}
	if data.User == nil {
		return model.User{}, missingUser()
	}

	return *data.User, nil
}

// CurrentUser asks for the profile behind the ambient session. A success
// envelope without a user is reported as Unauthorized.
func (a *Account) CurrentUser(ctx context.Context) (model.User, error) {
	var data userPayload
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodGet, Endpoint: EndpointProfile}, &data); err != nil {
		return model.User{}, fmt.Errorf("failed to get profile: %w", err)
	}
	if data.User == nil {
		return model.User{}, &model.APIError{Kind: model.KindUnauthorized, Message: "No active session"}
	}

	return *data.User, nil
}

// TwoFactorStatus reports whether 2FA is on.
func (a *Account) TwoFactorStatus(ctx context.Context) (bool, error) {
	var data twoFactorPayload
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodGet, Endpoint: EndpointTwoFactorStatus}, &data); err != nil {
		return false, fmt.Errorf("failed to get 2fa status: %w", err)
	}

	return data.TwofaEnabled, nil
}

// GenerateTwoFactorSecret starts 2FA enrollment.
func (a *Account) GenerateTwoFactorSecret(ctx context.Context) (model.TwoFactorSecret, error) {
	var data model.TwoFactorSecret
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointTwoFactorSecret}, &data); err != nil {
		return model.TwoFactorSecret{}, fmt.Errorf("failed to generate 2fa secret: %w", err)
	}

	return data, nil
}

// ChangeTwoFactor toggles the second factor with a code from the authenticator
// and returns the new status.
func (a *Account) ChangeTwoFactor(ctx context.Context, code string) (bool, error) {
	var data twoFactorPayload
	body := map[string]string{"code": code}
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointTwoFactorChange, Body: body}, &data); err != nil {
		return false, fmt.Errorf("failed to change 2fa status: %w", err)
	}

	return data.TwofaEnabled, nil
}

// ChangeName updates the full name and returns the user.
func (a *Account) ChangeName(ctx context.Context, fullName string) (model.User, error) {
	var data userPayload
	body := map[string]string{"fullName": fullName}
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointChangeName, Body: body}, &data); err != nil {
		return model.User{}, fmt.Errorf("failed to change name: %w", err)
	}
	if data.User == nil {
		return model.User{}, missingUser()
	}

	return *data.User, nil
}

// ChangePassword replaces the password.
func (a *Account) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointChangePassword, Body: body}, nil); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	return nil
}

// Sessions lists the devices of the user.
func (a *Account) Sessions(ctx context.Context) ([]model.SessionDevice, error) {
	var data sessionsPayload
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodGet, Endpoint: EndpointSessions}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	return data.Sessions, nil
}

// RevokeSession ends one session.
func (a *Account) RevokeSession(ctx context.Context, id string) error {
	body := map[string]string{"sessionId": id}
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointRevokeSession, Body: body}, nil); err != nil {
		return fmt.Errorf("failed to logout device: %w", err)
	}

	return nil
}

// RevokeOtherSessions ends every session except the current one.
func (a *Account) RevokeOtherSessions(ctx context.Context) error {
	if _, err := a.requester.Do(ctx, model.Request{Method: http.MethodPost, Endpoint: EndpointRevokeAll}, nil); err != nil {
		return fmt.Errorf("failed to logout other devices: %w", err)
	}

	return nil
}

var _ model.AccountAPI = (*Account)(nil)

func missingUser() error {
	return &model.APIError{Kind: model.KindServer, Message: "Response did not include a user"}
}
