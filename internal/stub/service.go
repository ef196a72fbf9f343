// Package stub is an in-memory account service used for development and end-to-end tests.
package stub

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

const minPasswordLength = 6

type account struct {
	user          model.User
	passwordHash  []byte
	totpSecret    string
	pendingSecret string
}

type challenge struct {
	userID   string
	remember bool
}

// LoginOutcome is either an issued session or a pending second-factor challenge.
type LoginOutcome struct {
	User           *model.User
	Session        *Issued
	ChallengeToken string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service holds accounts, device sessions and pending challenges.
type Service struct {
	mu         sync.RWMutex
	accounts   map[string]*account
	byUsername map[string]string
	byEmail    map[string]string

	sessions   *sessionTable
	challenges *gocache.Cache
	tokens     model.TokenManager
	cfg        config.Stub
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates new Service instance.
func NewService(cfg config.Stub, tokens model.TokenManager, logger *logger.Logger, opts ...Option) *Service {
	s := &Service{
		accounts:   make(map[string]*account),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		sessions:   newSessionTable(tokens, cfg.SessionTTL, cfg.RememberTTL),
		challenges: gocache.New(cfg.ChallengeTTL, time.Minute),
		tokens:     tokens,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account. It does not log in.
func (s *Service) Signup(ctx context.Context, in model.Signup, role model.Role) (model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	switch {
	case username == "":
		return model.User{}, NewInputError("Username is required")
	case email == "":
		return model.User{}, NewInputError("Email is required")
	case len(in.Password) < minPasswordLength:
		return model.User{}, NewInputError("Password must be at least 6 characters")
	case in.RecaptchaToken == "":
		return model.User{}, ErrMissingCaptcha
	}
	if !role.Valid() {
		role = model.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[strings.ToLower(username)]; ok {
		return model.User{}, ErrUserExists
	}
	if _, ok := s.byEmail[email]; ok {
		return model.User{}, ErrUserExists
	}

	now := s.now()
	user := model.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  strings.TrimSpace(in.FullName),
		Role:      role,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	s.accounts[user.ID] = &account{user: user, passwordHash: hash}
	s.byUsername[strings.ToLower(username)] = user.ID
	s.byEmail[email] = user.ID

	s.logger.Info("Stub: account created", "user_id", user.ID, "username", username)
	return user, nil
}

// Login checks the password. Accounts with TOTP enabled get a challenge token instead of a session.
func (s *Service) Login(ctx context.Context, creds model.Credentials, device Device) (LoginOutcome, error) {
	if creds.RecaptchaToken == "" {
		return LoginOutcome{}, ErrMissingCaptcha
	}

	s.mu.RLock()
	acc := s.accounts[s.byUsername[strings.ToLower(strings.TrimSpace(creds.Username))]]
	var (
		user    model.User
		hash    []byte
		twofaOn bool
	)
	if acc != nil {
		user, hash, twofaOn = acc.user, acc.passwordHash, acc.totpSecret != ""
	}
	s.mu.RUnlock()

	if acc == nil {
		return LoginOutcome{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)); err != nil {
		return LoginOutcome{}, ErrInvalidCredentials
	}

	if twofaOn {
		id := uuid.NewString()
		tok, err := s.tokens.GenerateChallengeToken(id, s.cfg.ChallengeTTL)
		if err != nil {
			return LoginOutcome{}, err
		}
		s.challenges.Set(id, challenge{userID: user.ID, remember: creds.RememberMe}, s.cfg.ChallengeTTL)

		s.logger.Debug("Stub: second factor required", "user_id", user.ID)
		return LoginOutcome{ChallengeToken: tok}, nil
	}

	issued, err := s.sessions.issue(user.ID, device, creds.RememberMe, s.now())
	if err != nil {
		return LoginOutcome{}, err
	}
	return LoginOutcome{User: &user, Session: &issued}, nil
}

// Pending reports whether challengeToken names a live challenge.
func (s *Service) Pending(challengeToken string) bool {
	if challengeToken == "" {
		return false
	}
	id, err := s.tokens.ParseChallengeToken(challengeToken)
	if err != nil {
		return false
	}
	_, ok := s.challenges.Get(id)
	return ok
}

// VerifyTwoFactor completes a pending challenge and issues the session.
func (s *Service) VerifyTwoFactor(ctx context.Context, challengeToken, code string, device Device) (model.User, Issued, error) {
	if challengeToken == "" {
		return model.User{}, Issued{}, ErrVerificationExpired
	}
	id, err := s.tokens.ParseChallengeToken(challengeToken)
	if err != nil {
		return model.User{}, Issued{}, ErrVerificationExpired
	}
	v, ok := s.challenges.Get(id)
	if !ok {
		return model.User{}, Issued{}, ErrVerificationExpired
	}
	pending := v.(challenge)

	s.mu.RLock()
	acc := s.accounts[pending.userID]
	var (
		user   model.User
		secret string
	)
	if acc != nil {
		user, secret = acc.user, acc.totpSecret
	}
	s.mu.RUnlock()

	if acc == nil {
		s.challenges.Delete(id)
		return model.User{}, Issued{}, ErrVerificationExpired
	}
	if !ValidateTOTP(secret, code, s.now()) {
		return model.User{}, Issued{}, ErrInvalidCode
	}
	s.challenges.Delete(id)

	issued, err := s.sessions.issue(user.ID, device, pending.remember, s.now())
	if err != nil {
		return model.User{}, Issued{}, err
	}
	return user, issued, nil
}

// Authenticate resolves a session cookie to its user and session ID.
func (s *Service) Authenticate(ctx context.Context, sessionToken string, device Device) (model.User, string, error) {
	if sessionToken == "" {
		return model.User{}, "", ErrNotAuthenticated
	}
	sess, err := s.sessions.authenticate(sessionToken, device, s.now())
	if err != nil {
		s.logger.Debug("Stub: session rejected", "error", err.Error())
		return model.User{}, "", ErrNotAuthenticated
	}

	user, err := s.Profile(ctx, sess.userID)
	if err != nil {
		s.sessions.revoke(sess.id)
		return model.User{}, "", ErrNotAuthenticated
	}
	return user, sess.id, nil
}

// Logout ends one session.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	s.sessions.revoke(sessionID)
}

// Profile returns the user.
func (s *Service) Profile(ctx context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return model.User{}, ErrNotAuthenticated
	}
	return acc.user, nil
}

// TwoFactorStatus reports whether TOTP is enabled for the user.
func (s *Service) TwoFactorStatus(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return false, ErrNotAuthenticated
	}
	return acc.totpSecret != "", nil
}

// GenerateTwoFactorSecret starts enrollment with a fresh secret and its QR code as a PNG data URL.
func (s *Service) GenerateTwoFactorSecret(ctx context.Context, userID string) (model.TwoFactorSecret, error) {
	secret, err := GenerateSecret()
	if err != nil {
		return model.TwoFactorSecret{}, err
	}

	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return model.TwoFactorSecret{}, ErrNotAuthenticated
	}
	acc.pendingSecret = secret
	label := acc.user.Username
	s.mu.Unlock()

	png, err := qrcode.Encode(ProvisioningURI(s.cfg.Issuer, label, secret), qrcode.Medium, 256)
	if err != nil {
		return model.TwoFactorSecret{}, fmt.Errorf("failed to render qr code: %w", err)
	}

	return model.TwoFactorSecret{
		Secret: secret,
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// ChangeTwoFactor disables TOTP when it is on and enables the pending secret otherwise.
// It returns whether TOTP is enabled afterwards.
func (s *Service) ChangeTwoFactor(ctx context.Context, userID, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return false, ErrNotAuthenticated
	}

	now := s.now()
	if acc.totpSecret != "" {
		if !ValidateTOTP(acc.totpSecret, code, now) {
			return true, ErrInvalidCode
		}
		acc.totpSecret = ""
		s.logger.Info("Stub: two-factor disabled", "user_id", userID)
		return false, nil
	}

	if acc.pendingSecret == "" {
		return false, ErrNoPendingSecret
	}
	if !ValidateTOTP(acc.pendingSecret, code, now) {
		return false, ErrInvalidCode
	}
	acc.totpSecret, acc.pendingSecret = acc.pendingSecret, ""
	s.logger.Info("Stub: two-factor enabled", "user_id", userID)
	return true, nil
}

// TOTPSecret returns the active secret of a user. Tests use it to compute codes.
func (s *Service) TOTPSecret(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if acc, ok := s.accounts[userID]; ok {
		return acc.totpSecret
	}
	return ""
}

// ChangeName sets a trimmed, non-empty full name.
func (s *Service) ChangeName(ctx context.Context, userID, fullName string) (model.User, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return model.User{}, NewInputError("Name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return model.User{}, ErrNotAuthenticated
	}
	now := s.now()
	acc.user.FullName = name
	acc.user.UpdatedAt = &now
	return acc.user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < minPasswordLength {
		return NewInputError("Password must be at least 6 characters")
	}

	s.mu.RLock()
	acc, ok := s.accounts[userID]
	var hash []byte
	if ok {
		hash = acc.passwordHash
	}
	s.mu.RUnlock()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(current)); err != nil {
		return ErrWrongPassword
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	acc.passwordHash = newHash
	s.mu.Unlock()
	return nil
}

// Sessions lists the live sessions of the user, most recent first.
func (s *Service) Sessions(ctx context.Context, userID, currentSessionID string) []model.SessionDevice {
	return s.sessions.list(userID, currentSessionID, s.now())
}

// RevokeSession ends another session of the same user. The current session is refused.
func (s *Service) RevokeSession(ctx context.Context, userID, currentSessionID, id string) error {
	if id == "" {
		return NewInputError("Session ID is required")
	}
	if id == currentSessionID {
		return ErrCurrentSession
	}
	if !s.sessions.revokeOwned(userID, id) {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeOtherSessions ends every session of the user except the current one.
func (s *Service) RevokeOtherSessions(ctx context.Context, userID, currentSessionID string) int {
	return s.sessions.revokeAllExcept(userID, currentSessionID)
}
