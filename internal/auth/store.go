// Package auth holds the process-wide authentication state.
package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

const hydrateKey = "hydrate"

// Store is the single source of truth for "who is logged in".
// It is mutated only through Login and Logout.
type Store struct {
	storage model.LocalStorage
	cookies model.CookiePurger
	logger  *logger.Logger

	mu          sync.RWMutex
	state       model.AuthState
	hydration   model.Hydration
	subscribers map[uint64]func(model.AuthState)
	nextSubID   uint64

	group     singleflight.Group
	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore creates a logged-out Store whose readiness signal is still open.
func NewStore(storage model.LocalStorage, cookies model.CookiePurger, logger *logger.Logger) *Store {
	return &Store{
		storage:     storage,
		cookies:     cookies,
		logger:      logger,
		subscribers: make(map[uint64]func(model.AuthState)),
		ready:       make(chan struct{}),
	}
}

// State returns a copy of the current state.
func (s *Store) State() model.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneState(s.state)
}

// Login records user as the logged-in user. It has no network side effects.
func (s *Store) Login(user model.User) {
	u := user

	s.mu.Lock()
	s.state = model.AuthState{Status: true, LoggedInUser: &u}
	state := cloneState(s.state)
	subs := s.subscriberList()
	s.mu.Unlock()

	s.logger.Debug("AuthStore: logged in", "user", u.Username, "role", string(u.Role))
	notify(subs, state)
}

// Logout clears the state and purges locally held auth artifacts.
// It is idempotent and never fails; purge errors are logged.
// Subscribers are notified only when a user was actually logged in.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	changed := s.state.Status
	s.state = model.AuthState{}
	subs := s.subscriberList()
	s.mu.Unlock()

	s.purge(ctx)

	if changed {
		s.logger.Debug("AuthStore: logged out")
		notify(subs, model.AuthState{})
	}
}

func (s *Store) purge(ctx context.Context) {
	if s.storage != nil {
		if err := s.storage.Remove(ctx, model.AccessTokenKey, model.RefreshTokenKey); err != nil {
			s.logger.Warn("AuthStore: failed to remove local tokens", "error", err.Error())
		}
	}
	if s.cookies != nil {
		if err := s.cookies.Expire(model.DeviceIDCookie, model.SessionIDCookie); err != nil {
			s.logger.Warn("AuthStore: failed to expire cookies", "error", err.Error())
		}
	}
}

// Initialize probes the account service for an existing session exactly once per
// Store lifetime. Concurrent callers share the in-flight probe and later callers
// get the recorded outcome. Ready is closed whatever the outcome.
func (s *Store) Initialize(ctx context.Context, prober model.CurrentUserProber) model.Hydration {
	if h := s.Hydration(); h != model.HydrationPending {
		return h
	}

	v, _, _ := s.group.Do(hydrateKey, func() (any, error) {
		if h := s.Hydration(); h != model.HydrationPending {
			return h, nil
		}

		h := s.hydrate(ctx, prober)

		s.mu.Lock()
		s.hydration = h
		s.mu.Unlock()
		s.markReady()

		return h, nil
	})

	return v.(model.Hydration)
}

func (s *Store) hydrate(ctx context.Context, prober model.CurrentUserProber) model.Hydration {
	user, err := prober.CurrentUser(ctx)
	switch {
	case err == nil:
		s.Login(user)
		return model.HydrationAuthenticated
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrCredentialExpired):
		s.logger.Debug("AuthStore: no active session", "reason", model.Message(err))
		s.Logout(ctx)
		return model.HydrationAnonymous
	default:
		s.logger.Warn("AuthStore: session probe failed, keeping current state", "error", err.Error())
		return model.HydrationUnresolved
	}
}

// Hydration returns the outcome of Initialize, or HydrationPending before it resolves.
func (s *Store) Hydration() model.Hydration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hydration
}

// Ready is closed once the startup probe has resolved, or on Teardown.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until Ready is closed or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to be called after every state transition.
// fn is called outside the Store lock and may read the Store.
func (s *Store) Subscribe(fn func(model.AuthState)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Teardown drops every subscriber and releases readiness waiters.
func (s *Store) Teardown() {
	s.mu.Lock()
	s.subscribers = make(map[uint64]func(model.AuthState))
	s.mu.Unlock()

	s.markReady()
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Store) subscriberList() []func(model.AuthState) {
	subs := make([]func(model.AuthState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(model.AuthState), state model.AuthState) {
	for _, fn := range subs {
		fn(cloneState(state))
	}
}

func cloneState(state model.AuthState) model.AuthState {
	if state.LoggedInUser == nil {
		return model.AuthState{}
	}
	u := *state.LoggedInUser
	return model.AuthState{Status: true, LoggedInUser: &u}
}
