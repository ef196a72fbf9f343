package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_SessionRoundtrip(t *testing.T) {
	t.Parallel()

	m := NewManager()

	_, _, ok := m.GetSessionFromContext(context.Background())
	assert.False(t, ok)

	ctx := m.SetSessionToContext(context.Background(), "u1", "s1")
	userID, sessionID, ok := m.GetSessionFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "s1", sessionID)
}

func TestManager_EmptyUserIsMissing(t *testing.T) {
	t.Parallel()

	m := NewManager()
	ctx := m.SetSessionToContext(context.Background(), "", "s1")

	_, _, ok := m.GetSessionFromContext(ctx)
	assert.False(t, ok)
}
