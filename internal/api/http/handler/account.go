package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-client/internal/api/http/shared"
	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/metrics"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/stub"
)

// AccountService is the in-memory account service behind the handlers.
type AccountService interface {
	Signup(ctx context.Context, in model.Signup, role model.Role) (model.User, error)
	Login(ctx context.Context, creds model.Credentials, device stub.Device) (stub.LoginOutcome, error)
	VerifyTwoFactor(ctx context.Context, challengeToken, code string, device stub.Device) (model.User, stub.Issued, error)
	Logout(ctx context.Context, sessionID string)
	Profile(ctx context.Context, userID string) (model.User, error)
	TwoFactorStatus(ctx context.Context, userID string) (bool, error)
	GenerateTwoFactorSecret(ctx context.Context, userID string) (model.TwoFactorSecret, error)
	ChangeTwoFactor(ctx context.Context, userID, code string) (bool, error)
	ChangeName(ctx context.Context, userID, fullName string) (model.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	Sessions(ctx context.Context, userID, currentSessionID string) []model.SessionDevice
	RevokeSession(ctx context.Context, userID, currentSessionID, id string) error
	RevokeOtherSessions(ctx context.Context, userID, currentSessionID string) int
}

const deviceCookieTTL = 365 * 24 * time.Hour

type userData struct {
	User model.User `json:"user"`
}

type twoFactorData struct {
	TwofaEnabled bool `json:"twofaEnabled"`
}

// Account handles the account service endpoints.
type Account struct {
	service        AccountService
	contextManager model.ContextManager
	metrics        *metrics.Server
	cfg            config.Stub
	logger         *logger.Logger
}

// NewAccount creates a new Account handler.
func NewAccount(service AccountService, contextManager model.ContextManager, metrics *metrics.Server, cfg config.Stub, logger *logger.Logger) *Account {
	return &Account{
		service:        service,
		contextManager: contextManager,
		metrics:        metrics,
		cfg:            cfg,
		logger:         logger,
	}
}

// Signup handles account creation.
func (h *Account) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User model.Signup `json:"user"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Signup(r.Context(), req.User, model.RoleUser)
	if err != nil {
		h.fail(w, r, "signup failed", err)
		return
	}

	h.logger.Info("Account handler: signup completed", "user_id", user.ID)
	shared.WriteJSON(w, http.StatusCreated, "Account created", userData{User: user})
}

// Login sets the session cookie, or the pending challenge cookie when the account has a second factor.
func (h *Account) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User model.Credentials `json:"user"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	h.ensureDeviceCookie(w, r)

	out, err := h.service.Login(r.Context(), req.User, stub.DeviceFromRequest(r))
	if err != nil {
		h.metrics.ObserveLogin("failure")
		h.fail(w, r, "login failed", err)
		return
	}

	if out.ChallengeToken != "" {
		h.metrics.ObserveLogin("twofa")
		h.setCookie(w, stub.ChallengeCookie, out.ChallengeToken, h.cfg.ChallengeTTL)
		shared.WriteJSON(w, http.StatusOK, "Two-factor verification required", twoFactorData{TwofaEnabled: true})
		return
	}

	h.metrics.ObserveLogin("success")
	h.setCookie(w, model.SessionIDCookie, out.Session.Token, out.Session.MaxAge)
	shared.WriteJSON(w, http.StatusOK, "Login successful", userData{User: *out.User})
}

// VerifyTwoFactor answers a pending second factor and issues the session cookie.
func (h *Account) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	var challenge string
	if c, err := r.Cookie(stub.ChallengeCookie); err == nil {
		challenge = c.Value
	}

	user, issued, err := h.service.VerifyTwoFactor(r.Context(), challenge, req.Code, stub.DeviceFromRequest(r))
	if err != nil {
		if errors.Is(err, stub.ErrVerificationExpired) {
			h.clearCookie(w, stub.ChallengeCookie)
		}
		h.fail(w, r, "two-factor verification failed", err)
		return
	}

	h.metrics.ObserveLogin("success")
	h.clearCookie(w, stub.ChallengeCookie)
	h.setCookie(w, model.SessionIDCookie, issued.Token, issued.MaxAge)
	shared.WriteJSON(w, http.StatusOK, "Verification successful", userData{User: user})
}

// Logout ends the session and expires its cookies.
func (h *Account) Logout(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, stub.ErrNotAuthenticated)
		return
	}

	h.service.Logout(r.Context(), sessionID)
	h.clearCookie(w, model.SessionIDCookie)
	shared.WriteJSON(w, http.StatusOK, "Logged out", nil)
}

// Profile returns the authenticated user.
func (h *Account) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "profile lookup failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, "", userData{User: user})
}

// TwoFactorStatus reports whether 2FA is on.
func (h *Account) TwoFactorStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	enabled, err := h.service.TwoFactorStatus(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "two-factor status failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, "", twoFactorData{TwofaEnabled: enabled})
}

// GenerateTwoFactorSecret issues a pending secret and its QR code.
func (h *Account) GenerateTwoFactorSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	secret, err := h.service.GenerateTwoFactorSecret(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "two-factor secret generation failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, "Scan the QR code with your authenticator app", secret)
}

// ChangeTwoFactor toggles 2FA with a code.
func (h *Account) ChangeTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	enabled, err := h.service.ChangeTwoFactor(r.Context(), userID, req.Code)
	if err != nil {
		h.fail(w, r, "two-factor change failed", err)
		return
	}

	message := "Two-factor authentication disabled"
	if enabled {
		message = "Two-factor authentication enabled"
	}
	shared.WriteJSON(w, http.StatusOK, message, twoFactorData{TwofaEnabled: enabled})
}

// ChangeName updates the full name.
func (h *Account) ChangeName(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		FullName string `json:"fullName"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.ChangeName(r.Context(), userID, req.FullName)
	if err != nil {
		h.fail(w, r, "name change failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, "Name updated", userData{User: user})
}

// ChangePassword updates the password.
func (h *Account) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, "password change failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, "Password updated", struct{}{})
}

// Sessions lists the devices of the user.
func (h *Account) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, stub.ErrNotAuthenticated)
		return
	}

	sessions := h.service.Sessions(r.Context(), userID, sessionID)
	shared.WriteJSON(w, http.StatusOK, "", struct {
		Sessions []model.SessionDevice `json:"sessions"`
	}{Sessions: sessions})
}

// RevokeSession ends one other session.
func (h *Account) RevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, stub.ErrNotAuthenticated)
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.RevokeSession(r.Context(), userID, sessionID, req.SessionID); err != nil {
		h.fail(w, r, "session revoke failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, "Device logged out", nil)
}

// RevokeOtherSessions ends every session except the current one.
func (h *Account) RevokeOtherSessions(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, stub.ErrNotAuthenticated)
		return
	}

	n := h.service.RevokeOtherSessions(r.Context(), userID, sessionID)
	h.logger.Info("Account handler: other sessions revoked", "user_id", userID, "count", n)
	shared.WriteJSON(w, http.StatusOK, "Logged out of all other devices", nil)
}

func (h *Account) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, _, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, stub.ErrNotAuthenticated)
	}
	return userID, ok
}

func (h *Account) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		h.logger.Warn("Account handler: invalid request body", "path", r.URL.Path, "error", err.Error())
		shared.WriteError(w, stub.NewInputError("Invalid request body"))
		return false
	}
	return true
}

func (h *Account) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, _ := stub.StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Account handler: "+msg, "path", r.URL.Path, "error", err.Error())
	} else {
		h.logger.Debug("Account handler: "+msg, "path", r.URL.Path, "error", err.Error())
	}
	shared.WriteError(w, err)
}

func (h *Account) ensureDeviceCookie(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(model.DeviceIDCookie); err == nil {
		return
	}
	h.setCookie(w, model.DeviceIDCookie, uuid.NewString(), deviceCookieTTL)
}

// setCookie writes a root-path cookie. A zero maxAge makes it a browser-session cookie.
func (h *Account) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: name != model.DeviceIDCookie,
		Secure:   h.cfg.EnableHTTPS,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Account) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: name != model.DeviceIDCookie,
		Secure:   h.cfg.EnableHTTPS,
	})
}
