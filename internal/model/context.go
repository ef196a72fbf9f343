package model

import "context"

// ContextManager carries the authenticated stub-server session through a request context.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, userID, sessionID string) context.Context
	GetSessionFromContext(ctx context.Context) (userID, sessionID string, ok bool)
}
