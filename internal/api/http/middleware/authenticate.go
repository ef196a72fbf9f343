package middleware

import (
	"context"
	"net/http"

	"github.com/dtroode/account-client/internal/api/http/shared"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/stub"
)

// SessionService resolves session cookies.
type SessionService interface {
	Authenticate(ctx context.Context, sessionToken string, device stub.Device) (model.User, string, error)
	Pending(challengeToken string) bool
}

// Authenticate validates the session cookie and injects user and session IDs into context.
type Authenticate struct {
	sessions       SessionService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(sessions SessionService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{sessions: sessions, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a live session. A caller still owing a second
// factor is told so, which is how clients resume an interrupted challenge.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, sessionID, err := m.sessions.Authenticate(ctx, cookieValue(r, model.SessionIDCookie), stub.DeviceFromRequest(r))
		if err != nil {
			if m.sessions.Pending(cookieValue(r, stub.ChallengeCookie)) {
				shared.WriteError(w, stub.ErrVerificationIncomplete)
				return
			}
			m.logger.Debug("Authenticate: request rejected", "path", r.URL.Path, "error", err.Error())
			shared.WriteError(w, err)
			return
		}

		ctx = m.contextManager.SetSessionToContext(ctx, user.ID, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
