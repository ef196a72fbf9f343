package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/account-client/internal/mocks"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/testutil"
)

func request(method, endpoint string) interface{} {
	return mock.MatchedBy(func(r model.Request) bool {
		return r.Method == method && r.Endpoint == endpoint
	})
}

func fill(t *testing.T, payload string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		require.NoError(t, json.Unmarshal([]byte(payload), args.Get(2)))
	}
}

func okResponse(message string) *model.Response {
	return &model.Response{Status: http.StatusOK, Envelope: model.Envelope{Success: true, Message: message}}
}

func TestAccount_Login(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		expectedUser string
		twoFactor    bool
		wantErr      error
	}{
		{
			name:         "user returned",
			payload:      `{"user":{"_id":"u1","username":"alice","role":"user"}}`,
			expectedUser: "alice",
		},
		{
			name:      "second factor required",
			payload:   `{"user":null,"twofaEnabled":true}`,
			twoFactor: true,
		},
		{
			name:    "no user and no second factor",
			payload: `{}`,
			wantErr: model.ErrServer,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := mocks.NewRequester(t)
			req.On("Do", mock.Anything, mock.MatchedBy(func(r model.Request) bool {
				body, ok := r.Body.(map[string]any)
				if !ok {
					return false
				}
				creds, ok := body["user"].(model.Credentials)
				return ok && r.Endpoint == EndpointLogin && creds.Username == "alice"
			}), mock.Anything).Run(fill(t, tt.payload)).Return(okResponse("Login successful"), nil).Once()

			a := NewAccount(req, testutil.MakeNoopLogger())
			res, err := a.Login(context.Background(), model.Credentials{Username: "alice", Password: "secret"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.twoFactor, res.TwoFactorRequired)
			assert.Equal(t, "Login successful", res.Message)
			if tt.expectedUser != "" {
				require.NotNil(t, res.User)
				assert.Equal(t, tt.expectedUser, res.User.Username)
			} else {
				assert.Nil(t, res.User)
			}
		})
	}
}

func TestAccount_CurrentUser(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodGet, EndpointProfile), mock.Anything).
			Run(fill(t, `{"user":{"_id":"u1","username":"alice","role":"admin"}}`)).
			Return(okResponse(""), nil).Once()

		user, err := NewAccount(req, testutil.MakeNoopLogger()).CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
	})

	t.Run("success without user is unauthorized", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodGet, EndpointProfile), mock.Anything).
			Return(okResponse(""), nil).Once()

		_, err := NewAccount(req, testutil.MakeNoopLogger()).CurrentUser(context.Background())
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("verification incomplete is preserved", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodGet, EndpointProfile), mock.Anything).
			Return(nil, &model.APIError{Kind: model.KindUnauthorized, Status: 401, Message: "2FA verification incomplete"}).Once()

		_, err := NewAccount(req, testutil.MakeNoopLogger()).CurrentUser(context.Background())
		assert.True(t, model.IsVerificationIncomplete(err))
		assert.Contains(t, err.Error(), "failed to get profile")
	})
}

func TestAccount_Endpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("two factor status", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodGet, EndpointTwoFactorStatus), mock.Anything).
			Run(fill(t, `{"twofaEnabled":true}`)).Return(okResponse(""), nil).Once()

		enabled, err := NewAccount(req, testutil.MakeNoopLogger()).TwoFactorStatus(ctx)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("generate secret", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodPost, EndpointTwoFactorSecret), mock.Anything).
			Run(fill(t, `{"secret":"JBSWY3DPEHPK3PXP","qrCode":"data:image/png;base64,AAA"}`)).Return(okResponse(""), nil).Once()

		secret, err := NewAccount(req, testutil.MakeNoopLogger()).GenerateTwoFactorSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", secret.Secret)
		assert.Equal(t, "data:image/png;base64,AAA", secret.QRCode)
	})

	t.Run("change two factor", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, mock.MatchedBy(func(r model.Request) bool {
			body, ok := r.Body.(map[string]string)
			return ok && r.Endpoint == EndpointTwoFactorChange && body["code"] == "123456"
		}), mock.Anything).Run(fill(t, `{"twofaEnabled":false}`)).Return(okResponse(""), nil).Once()

		enabled, err := NewAccount(req, testutil.MakeNoopLogger()).ChangeTwoFactor(ctx, "123456")
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("sessions", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodGet, EndpointSessions), mock.Anything).
			Run(fill(t, `{"sessions":[{"id":"s1","ip":"1.1.1.1","browser":"Chrome","os":"Linux","lastSeen":"2026-01-02T03:04:05Z","isCurrent":true,"remember":false}]}`)).
			Return(okResponse(""), nil).Once()

		devices, err := NewAccount(req, testutil.MakeNoopLogger()).Sessions(ctx)
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.True(t, devices[0].IsCurrent)
		assert.Equal(t, 2026, devices[0].LastSeen.Year())
	})

	t.Run("revoke session", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, mock.MatchedBy(func(r model.Request) bool {
			body, ok := r.Body.(map[string]string)
			return ok && r.Endpoint == EndpointRevokeSession && body["sessionId"] == "s2"
		}), nil).Return(okResponse(""), nil).Once()

		require.NoError(t, NewAccount(req, testutil.MakeNoopLogger()).RevokeSession(ctx, "s2"))
	})

	t.Run("revoke all failure is wrapped", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, request(http.MethodPost, EndpointRevokeAll), nil).
			Return(nil, &model.APIError{Kind: model.KindServer, Status: 500, Message: "boom"}).Once()

		err := NewAccount(req, testutil.MakeNoopLogger()).RevokeOtherSessions(ctx)
		assert.ErrorIs(t, err, model.ErrServer)
		assert.Contains(t, err.Error(), "failed to logout other devices")
	})

	t.Run("change password", func(t *testing.T) {
		req := mocks.NewRequester(t)
		req.On("Do", mock.Anything, mock.MatchedBy(func(r model.Request) bool {
			body, ok := r.Body.(map[string]string)
			return ok && r.Endpoint == EndpointChangePassword && body["currentPassword"] == "old" && body["newPassword"] == "newpass"
		}), nil).Return(okResponse(""), nil).Once()

		require.NoError(t, NewAccount(req, testutil.MakeNoopLogger()).ChangePassword(ctx, "old", "newpass"))
	})
}
