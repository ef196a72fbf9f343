package context

import (
	"context"

	"github.com/dtroode/account-client/internal/model"
)

type sessionKey struct{}

type sessionValue struct {
	userID    string
	sessionID string
}

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated session of a request in its context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetSessionToContext returns a copy of ctx carrying the user and session IDs.
func (m *Manager) SetSessionToContext(ctx context.Context, userID, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionValue{userID: userID, sessionID: sessionID})
}

// GetSessionFromContext retrieves the user and session IDs set by SetSessionToContext.
func (m *Manager) GetSessionFromContext(ctx context.Context) (string, string, bool) {
	v, ok := ctx.Value(sessionKey{}).(sessionValue)
	if !ok || v.userID == "" {
		return "", "", false
	}
	return v.userID, v.sessionID, true
}
