package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

const minPasswordLength = 6

// SessionLister lists the devices of the logged-in user.
type SessionLister interface {
	List(ctx context.Context) ([]model.SessionDevice, error)
}

// SecurityOverview is what the security settings screen loads at once.
type SecurityOverview struct {
	TwoFactorEnabled bool
	Sessions         []model.SessionDevice
}

// Auth runs the account flows that change the process-wide auth state.
type Auth struct {
	api      model.AccountAPI
	store    model.AuthCommitter
	sessions SessionLister
	captcha  model.CaptchaProvider
	logger   *logger.Logger
}

// NewAuth creates new Auth instance.
func NewAuth(
	api model.AccountAPI,
	store model.AuthCommitter,
	sessions SessionLister,
	captcha model.CaptchaProvider,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		api:      api,
		store:    store,
		sessions: sessions,
		captcha:  captcha,
		logger:   logger,
	}
}

// Login checks the primary credentials. A live session is logged out first so a
// pending second factor is never answered by it. When the account has a second
// factor the result asks for it and the auth state is left logged out.
func (a *Auth) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return model.LoginResult{}, err
	}

	if state := a.store.State(); state.Status {
		a.logger.Info("Auth service: ending current session before login",
			"current", state.LoggedInUser.Username, "username", creds.Username)
		a.Logout(ctx)
	}

	token, err := a.captchaToken(ctx, "login")
	if err != nil {
		return model.LoginResult{}, err
	}
	creds.RecaptchaToken = token

	a.logger.Debug("Auth service: logging in", "username", creds.Username, "remember", creds.RememberMe)

	result, err := a.api.Login(ctx, creds)
	if err != nil {
		a.logger.Info("Auth service: login rejected", "username", creds.Username, "error", err.Error())
		return model.LoginResult{}, err
	}

	if result.TwoFactorRequired {
		a.logger.Info("Auth service: second factor required", "username", creds.Username)
		return result, nil
	}

	a.store.Login(*result.User)
	return result, nil
}

// Signup registers a new account. It does not log in.
func (a *Auth) Signup(ctx context.Context, signup model.Signup) (model.User, error) {
	switch {
	case strings.TrimSpace(signup.Username) == "":
		return model.User{}, model.NewValidationError("Username is required")
	case strings.TrimSpace(signup.Email) == "":
		return model.User{}, model.NewValidationError("Email is required")
	case len(signup.Password) < minPasswordLength:
		return model.User{}, model.ErrPasswordTooShort
	}

	token, err := a.captchaToken(ctx, "signup")
	if err != nil {
		return model.User{}, err
	}
	signup.RecaptchaToken = token

	user, err := a.api.Signup(ctx, signup)
	if err != nil {
		a.logger.Info("Auth service: signup rejected", "username", signup.Username, "error", err.Error())
		return model.User{}, err
	}

	a.logger.Info("Auth service: account created", "username", user.Username)
	return user, nil
}

// Logout ends the server session when it can, then always logs out locally.
func (a *Auth) Logout(ctx context.Context) {
	if err := a.api.Logout(ctx); err != nil {
		a.logger.Warn("Auth service: logout failed on server, ignoring", "error", err.Error())
	}

	a.store.Logout(ctx)
}

// ChangeName replaces the full name and commits the returned user.
func (a *Auth) ChangeName(ctx context.Context, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, model.ErrEmptyName
	}

	user, err := a.api.ChangeName(ctx, name)
	if err != nil {
		a.logger.Error("Auth service: failed to change name", "error", err.Error())
		return model.User{}, err
	}

	a.store.Login(user)
	return user, nil
}

// ChangePassword checks the confirmation and length locally, then replaces the password.
func (a *Auth) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if current == "" {
		return model.NewValidationError("Current password is required")
	}
	if next != confirm {
		return model.ErrPasswordMismatch
	}
	if len(next) < minPasswordLength {
		return model.ErrPasswordTooShort
	}

	if err := a.api.ChangePassword(ctx, current, next); err != nil {
		a.logger.Error("Auth service: failed to change password", "error", err.Error())
		return err
	}

	return nil
}

// SecurityOverview loads the 2FA status and the device list concurrently.
func (a *Auth) SecurityOverview(ctx context.Context) (SecurityOverview, error) {
	var overview SecurityOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		enabled, err := a.api.TwoFactorStatus(gctx)
		if err != nil {
			return err
		}
		overview.TwoFactorEnabled = enabled
		return nil
	})
	g.Go(func() error {
		devices, err := a.sessions.List(gctx)
		if err != nil {
			return err
		}
		overview.Sessions = devices
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Auth service: failed to load security overview", "error", err.Error())
		return SecurityOverview{}, fmt.Errorf("failed to load security overview: %w", err)
	}

	return overview, nil
}

func (a *Auth) captchaToken(ctx context.Context, action string) (string, error) {
	if a.captcha == nil {
		return "", model.ErrMissingCaptcha
	}

	token, err := a.captcha.Token(ctx, action)
	if err != nil {
		a.logger.Warn("Auth service: captcha provider failed", "action", action, "error", err.Error())
		return "", fmt.Errorf("%w: %v", model.ErrMissingCaptcha, err)
	}
	if token == "" {
		return "", model.ErrMissingCaptcha
	}

	return token, nil
}

// StaticCaptcha hands out a fixed token, for environments where the anti-bot
// check is configured out of band.
type StaticCaptcha string

// Token returns the fixed token.
func (c StaticCaptcha) Token(context.Context, string) (string, error) {
	return string(c), nil
}
