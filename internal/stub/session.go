package stub

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-client/internal/model"
)

// ChallengeCookie carries the pending second-factor challenge between login and verify.
const ChallengeCookie = "twofa_session"

type session struct {
	id        string
	userID    string
	device    Device
	remember  bool
	issuedAt  time.Time
	lastSeen  time.Time
	expiresAt time.Time
}

// Issued is a freshly created session and the cookie value that carries it.
type Issued struct {
	SessionID string
	Token     string
	// MaxAge is zero for a browser-session cookie.
	MaxAge time.Duration
}

// sessionTable issues, authenticates and revokes device sessions.
// Token validity is checked by the TokenManager; the table decides revocation.
type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]*session
	manager  model.TokenManager
	ttl      time.Duration
	remember time.Duration
}

func newSessionTable(manager model.TokenManager, ttl, remember time.Duration) *sessionTable {
	return &sessionTable{
		sessions: make(map[string]*session),
		manager:  manager,
		ttl:      ttl,
		remember: remember,
	}
}

func (t *sessionTable) issue(userID string, device Device, remember bool, now time.Time) (Issued, error) {
	ttl := t.ttl
	if remember {
		ttl = t.remember
	}

	id := uuid.NewString()
	tok, err := t.manager.GenerateSessionToken(id, ttl)
	if err != nil {
		return Issued{}, fmt.Errorf("issue session: %w", err)
	}

	t.mu.Lock()
	t.sessions[id] = &session{
		id:        id,
		userID:    userID,
		device:    device,
		remember:  remember,
		issuedAt:  now,
		lastSeen:  now,
		expiresAt: now.Add(ttl),
	}
	t.mu.Unlock()

	issued := Issued{SessionID: id, Token: tok}
	if remember {
		issued.MaxAge = ttl
	}
	return issued, nil
}

// authenticate resolves a presented token to its live session and refreshes last-seen.
func (t *sessionTable) authenticate(token string, device Device, now time.Time) (session, error) {
	id, err := t.manager.ParseSessionToken(token)
	if err != nil {
		return session{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.sessions[id]
	if err := validateSession(s, now); err != nil {
		if s != nil {
			delete(t.sessions, id)
		}
		return session{}, err
	}

	s.lastSeen = now
	if device.IP != "" {
		s.device.IP = device.IP
	}
	return *s, nil
}

func (t *sessionTable) revoke(id string) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

func (t *sessionTable) revokeOwned(userID, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok || s.userID != userID {
		return false
	}
	delete(t.sessions, id)
	return true
}

func (t *sessionTable) revokeAllExcept(userID, keep string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var n int
	for id, s := range t.sessions {
		if s.userID == userID && id != keep {
			delete(t.sessions, id)
			n++
		}
	}
	return n
}

// list returns the live sessions of userID, most recently seen first.
func (t *sessionTable) list(userID, current string, now time.Time) []model.SessionDevice {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.SessionDevice, 0)
	for id, s := range t.sessions {
		if s.userID != userID {
			continue
		}
		if validateSession(s, now) != nil {
			delete(t.sessions, id)
			continue
		}
		out = append(out, model.SessionDevice{
			ID:        s.id,
			IP:        s.device.IP,
			Browser:   s.device.Browser,
			OS:        s.device.OS,
			LastSeen:  s.lastSeen,
			IsCurrent: s.id == current,
			Remember:  s.remember,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func validateSession(s *session, now time.Time) error {
	if s == nil {
		return model.ErrTokenRevoked
	}
	if now.After(s.expiresAt) {
		return model.ErrTokenExpired
	}
	return nil
}
