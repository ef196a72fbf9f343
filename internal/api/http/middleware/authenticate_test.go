package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/account-client/internal/api/http/context"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/stub"
	"github.com/dtroode/account-client/internal/testutil"
)

type sessionSvcStub struct {
	valid   map[string]string
	pending map[string]bool
}

func (s sessionSvcStub) Authenticate(_ context.Context, token string, _ stub.Device) (model.User, string, error) {
	userID, ok := s.valid[token]
	if !ok {
		return model.User{}, "", stub.ErrNotAuthenticated
	}
	return model.User{ID: userID}, "sess-" + userID, nil
}

func (s sessionSvcStub) Pending(token string) bool {
	return s.pending[token]
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	svc := sessionSvcStub{
		valid:   map[string]string{"good": "u1"},
		pending: map[string]bool{"waiting": true},
	}
	ctxMgr := httpctx.NewManager()
	mw := NewAuthenticate(svc, ctxMgr, testutil.MakeNoopLogger())

	tests := []struct {
		name        string
		cookies     []*http.Cookie
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "valid session",
			cookies:    []*http.Cookie{{Name: model.SessionIDCookie, Value: "good"}},
			wantStatus: http.StatusOK,
		},
		{
			name:        "no cookies",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Not authenticated",
		},
		{
			name:        "pending second factor",
			cookies:     []*http.Cookie{{Name: stub.ChallengeCookie, Value: "waiting"}},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "2FA verification incomplete",
		},
		{
			name:        "stale challenge",
			cookies:     []*http.Cookie{{Name: stub.ChallengeCookie, Value: "gone"}},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Not authenticated",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser, gotSession string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, gotSession, _ = ctxMgr.GetSessionFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			rec := httptest.NewRecorder()
			mw.Handle(next).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "u1", gotUser)
				assert.Equal(t, "sess-u1", gotSession)
				return
			}

			var env model.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}
