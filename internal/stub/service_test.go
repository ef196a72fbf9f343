package stub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/testutil"
	"github.com/dtroode/account-client/internal/token"
)

var testDevice = Device{IP: "10.0.0.1", Browser: "Firefox 120.0", OS: "Linux x86_64"}

func testConfig() config.Stub {
	return config.Stub{
		JWTSecret:    "secret",
		SessionTTL:   time.Hour,
		RememberTTL:  24 * time.Hour,
		ChallengeTTL: time.Minute,
		Issuer:       "AccountStub",
	}
}

func newTestService(t *testing.T, cfg config.Stub) *Service {
	t.Helper()
	return NewService(cfg, token.NewJWT(cfg.JWTSecret, cfg.Issuer), testutil.MakeNoopLogger())
}

func signup(t *testing.T, s *Service, username string) model.User {
	t.Helper()
	user, err := s.Signup(context.Background(), model.Signup{
		Username:       username,
		Email:          username + "@example.com",
		FullName:       strings.ToUpper(username),
		Password:       "password1",
		RecaptchaToken: "token",
	}, model.RoleUser)
	require.NoError(t, err)
	return user
}

func login(t *testing.T, s *Service, username string, device Device) LoginOutcome {
	t.Helper()
	out, err := s.Login(context.Background(), model.Credentials{
		Username:       username,
		Password:       "password1",
		RecaptchaToken: "token",
	}, device)
	require.NoError(t, err)
	return out
}

func enableTwoFactor(t *testing.T, s *Service, userID string) string {
	t.Helper()
	ctx := context.Background()

	secret, err := s.GenerateTwoFactorSecret(ctx, userID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(secret.QRCode, "data:image/png;base64,"))

	code, err := TOTPCode(secret.Secret, time.Now())
	require.NoError(t, err)
	enabled, err := s.ChangeTwoFactor(ctx, userID, code)
	require.NoError(t, err)
	require.True(t, enabled)
	return secret.Secret
}

func TestService_Signup(t *testing.T) {
	s := newTestService(t, testConfig())
	ctx := context.Background()

	user := signup(t, s, "alice")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)

	tests := []struct {
		name string
		in   model.Signup
		want *Error
	}{
		{
			name: "duplicate username",
			in:   model.Signup{Username: "Alice", Email: "other@example.com", Password: "password1", RecaptchaToken: "t"},
			want: ErrUserExists,
		},
		{
			name: "duplicate email",
			in:   model.Signup{Username: "bob", Email: "ALICE@example.com", Password: "password1", RecaptchaToken: "t"},
			want: ErrUserExists,
		},
		{
			name: "missing captcha",
			in:   model.Signup{Username: "carol", Email: "carol@example.com", Password: "password1"},
			want: ErrMissingCaptcha,
		},
	}

	for _, tt := range tests {
		_, err := s.Signup(ctx, tt.in, model.RoleUser)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	_, err := s.Signup(ctx, model.Signup{Username: "dave", Email: "dave@example.com", Password: "short", RecaptchaToken: "t"}, model.RoleUser)
	status, _ := StatusOf(err)
	assert.Equal(t, 400, status)
}

func TestService_LoginWithoutTwoFactor(t *testing.T) {
	s := newTestService(t, testConfig())
	ctx := context.Background()
	signup(t, s, "alice")

	_, err := s.Login(ctx, model.Credentials{Username: "alice", Password: "wrong", RecaptchaToken: "t"}, testDevice)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	out := login(t, s, "alice", testDevice)
	require.NotNil(t, out.User)
	require.NotNil(t, out.Session)
	assert.Empty(t, out.ChallengeToken)
	assert.Zero(t, out.Session.MaxAge)

	user, sessionID, err := s.Authenticate(ctx, out.Session.Token, testDevice)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, user.ID)
	assert.Equal(t, out.Session.SessionID, sessionID)

	s.Logout(ctx, sessionID)
	_, _, err = s.Authenticate(ctx, out.Session.Token, testDevice)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestService_RememberMe(t *testing.T) {
	s := newTestService(t, testConfig())
	signup(t, s, "alice")

	out, err := s.Login(context.Background(), model.Credentials{
		Username: "alice", Password: "password1", RememberMe: true, RecaptchaToken: "t",
	}, testDevice)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, out.Session.MaxAge)
}

func TestService_TwoFactorLogin(t *testing.T) {
	s := newTestService(t, testConfig())
	ctx := context.Background()
	user := signup(t, s, "alice")
	secret := enableTwoFactor(t, s, user.ID)

	out := login(t, s, "alice", testDevice)
	assert.Nil(t, out.User)
	assert.Nil(t, out.Session)
	require.NotEmpty(t, out.ChallengeToken)
	assert.True(t, s.Pending(out.ChallengeToken))

	_, _, err := s.VerifyTwoFactor(ctx, out.ChallengeToken, "000000", testDevice)
	if err != nil {
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	code, err := TOTPCode(secret, time.Now())
	require.NoError(t, err)
	got, issued, err := s.VerifyTwoFactor(ctx, out.ChallengeToken, code, testDevice)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, issued.Token)
	assert.False(t, s.Pending(out.ChallengeToken))

	_, _, err = s.VerifyTwoFactor(ctx, out.ChallengeToken, code, testDevice)
	assert.ErrorIs(t, err, ErrVerificationExpired)
}

func TestService_ChallengeExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.ChallengeTTL = 50 * time.Millisecond
	s := newTestService(t, cfg)
	ctx := context.Background()
	user := signup(t, s, "alice")
	secret := enableTwoFactor(t, s, user.ID)

	_, _, err := s.VerifyTwoFactor(ctx, "", "123456", testDevice)
	assert.ErrorIs(t, err, ErrVerificationExpired)

	out := login(t, s, "alice", testDevice)
	time.Sleep(100 * time.Millisecond)

	code, err := TOTPCode(secret, time.Now())
	require.NoError(t, err)
	_, _, err = s.VerifyTwoFactor(ctx, out.ChallengeToken, code, testDevice)
	assert.ErrorIs(t, err, ErrVerificationExpired)
}

func TestService_DisableTwoFactor(t *testing.T) {
	s := newTestService(t, testConfig())
	ctx := context.Background()
	user := signup(t, s, "alice")

	_, err := s.ChangeTwoFactor(ctx, user.ID, "123456")
	assert.ErrorIs(t, err, ErrNoPendingSecret)

	secret := enableTwoFactor(t, s, user.ID)
	assert.Equal(t, secret, s.TOTPSecret(user.ID))

	code, err := TOTPCode(secret, time.Now())
	require.NoError(t, err)
	enabled, err := s.ChangeTwoFactor(ctx, user.ID, code)
	require.NoError(t, err)
	assert.False(t, enabled)

	on, err := s.TwoFactorStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestService_Profile(t *testing.T) {
	s := newTestService(t, testConfig())
	ctx := context.Background()
	user := signup(t, s, "alice")

	_, err := s.ChangeName(ctx, user.ID, "   ")
	require.Error(t, err)

	updated, err := s.ChangeName(ctx, user.ID, "  Alice Liddell ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)

	assert.ErrorIs(t, s.ChangePassword(ctx, user.ID, "wrong", "newpass1"), ErrWrongPassword)
	require.NoError(t, s.ChangePassword(ctx, user.ID, "password1", "newpass1"))

	_, err = s.Login(ctx, model.Credentials{Username: "alice", Password: "newpass1", RecaptchaToken: "t"}, testDevice)
	require.NoError(t, err)
}

func TestService_Sessions(t *testing.T) {
	s := newTestService(t, testConfig())
	ctx := context.Background()
	user := signup(t, s, "alice")
	other := signup(t, s, "bob")

	current := login(t, s, "alice", testDevice).Session
	phone := login(t, s, "alice", Device{IP: "10.0.0.2", Browser: "Safari", OS: "iPhone OS"}).Session
	tablet := login(t, s, "alice", Device{IP: "10.0.0.3", Browser: "Chrome", OS: "Android"}).Session
	bobs := login(t, s, "bob", testDevice).Session

	list := s.Sessions(ctx, user.ID, current.SessionID)
	require.Len(t, list, 3)
	var currentCount int
	for _, d := range list {
		if d.IsCurrent {
			currentCount++
			assert.Equal(t, current.SessionID, d.ID)
		}
	}
	assert.Equal(t, 1, currentCount)

	assert.ErrorIs(t, s.RevokeSession(ctx, user.ID, current.SessionID, current.SessionID), ErrCurrentSession)
	assert.ErrorIs(t, s.RevokeSession(ctx, user.ID, current.SessionID, bobs.SessionID), ErrSessionNotFound)
	require.NoError(t, s.RevokeSession(ctx, user.ID, current.SessionID, phone.SessionID))
	assert.Len(t, s.Sessions(ctx, user.ID, current.SessionID), 2)

	assert.Equal(t, 1, s.RevokeOtherSessions(ctx, user.ID, current.SessionID))
	list = s.Sessions(ctx, user.ID, current.SessionID)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsCurrent)

	_, _, err := s.Authenticate(ctx, tablet.Token, testDevice)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Len(t, s.Sessions(ctx, other.ID, ""), 1)
}
