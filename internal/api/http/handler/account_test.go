package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/account-client/internal/api/http/context"
	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/metrics"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/stub"
	"github.com/dtroode/account-client/internal/testutil"
	"github.com/dtroode/account-client/internal/token"
)

func newTestHandler(t *testing.T) (*Account, *stub.Service, config.Stub) {
	t.Helper()

	cfg := config.Stub{
		JWTSecret:    "secret",
		SessionTTL:   time.Hour,
		RememberTTL:  48 * time.Hour,
		ChallengeTTL: 5 * time.Minute,
		Issuer:       "AccountStub",
	}
	lg := testutil.MakeNoopLogger()
	svc := stub.NewService(cfg, token.NewJWT(cfg.JWTSecret, cfg.Issuer), lg)
	_, err := svc.Signup(context.Background(), model.Signup{
		Username: "alice", Email: "alice@example.com", Password: "password1", RecaptchaToken: "t",
	}, model.RoleUser)
	require.NoError(t, err)

	return NewAccount(svc, httpctx.NewManager(), metrics.NewServer(nil), cfg, lg), svc, cfg
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestAccount_LoginCookies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remember   bool
		wantMaxAge int
	}{
		{name: "browser session", wantMaxAge: 0},
		{name: "remember me", remember: true, wantMaxAge: int((48 * time.Hour).Seconds())},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _, _ := newTestHandler(t)
			body := `{"user":{"username":"alice","password":"password1","recaptchaToken":"t","rememberMe":` + strconv.FormatBool(tt.remember) + `}}`

			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(body)))

			require.Equal(t, http.StatusOK, rec.Code)
			cookies := cookiesByName(rec)
			require.Contains(t, cookies, model.SessionIDCookie)
			require.Contains(t, cookies, model.DeviceIDCookie)
			assert.True(t, cookies[model.SessionIDCookie].HttpOnly)
			assert.False(t, cookies[model.DeviceIDCookie].HttpOnly)
			assert.Equal(t, "/", cookies[model.SessionIDCookie].Path)
			assert.Equal(t, tt.wantMaxAge, cookies[model.SessionIDCookie].MaxAge)
		})
	}
}

func TestAccount_LoginKeepsDeviceCookie(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login",
		strings.NewReader(`{"user":{"username":"alice","password":"password1","recaptchaToken":"t"}}`))
	req.AddCookie(&http.Cookie{Name: model.DeviceIDCookie, Value: "known-device"})

	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, cookiesByName(rec), model.DeviceIDCookie)
}

func TestAccount_LoginFailure(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user/login",
		strings.NewReader(`{"user":{"username":"alice","password":"wrong","recaptchaToken":"t"}}`)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var env model.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid username or password", env.Message)
	assert.NotContains(t, cookiesByName(rec), model.SessionIDCookie)
}

func TestAccount_VerifyWithoutChallenge(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.VerifyTwoFactor(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user/2fa/verify", strings.NewReader(`{"code":"123456"}`)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	cookies := cookiesByName(rec)
	require.Contains(t, cookies, stub.ChallengeCookie)
	assert.Equal(t, -1, cookies[stub.ChallengeCookie].MaxAge)
}

func TestAccount_PrivateEndpointsNeedSession(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	handlers := map[string]http.HandlerFunc{
		"logout":     h.Logout,
		"profile":    h.Profile,
		"status":     h.TwoFactorStatus,
		"generate":   h.GenerateTwoFactorSecret,
		"sessions":   h.Sessions,
		"revoke-all": h.RevokeOtherSessions,
	}
	for name, fn := range handlers {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}
