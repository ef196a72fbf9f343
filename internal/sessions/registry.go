// Package sessions keeps the list of authenticated devices of the current user.
package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

// Registry caches the device list and enforces revoke preconditions locally.
type Registry struct {
	api    model.SessionAPI
	logger *logger.Logger

	mu      sync.Mutex
	devices []model.SessionDevice
}

// NewRegistry creates new Registry instance.
func NewRegistry(api model.SessionAPI, logger *logger.Logger) *Registry {
	return &Registry{
		api:    api,
		logger: logger,
	}
}

// List fetches the devices, replaces the cache and returns a copy of it.
func (r *Registry) List(ctx context.Context) ([]model.SessionDevice, error) {
	devices, err := r.api.Sessions(ctx)
	if err != nil {
		r.logger.Error("Sessions: failed to list sessions", "error", err.Error())
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	r.mu.Lock()
	r.devices = append([]model.SessionDevice(nil), devices...)
	out := r.copyLocked()
	r.mu.Unlock()

	return out, nil
}

// Cached returns a copy of the last fetched list.
func (r *Registry) Cached() []model.SessionDevice {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.copyLocked()
}

// Revoke ends the session id. Only ids from the last List are accepted, and the
// current session is refused; both checks are local. Logging out is the way to
// end the current session.
func (r *Registry) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	known, current := false, false
	for _, d := range r.devices {
		if d.ID == id {
			known, current = true, d.IsCurrent
			break
		}
	}
	r.mu.Unlock()

	switch {
	case !known:
		return model.ErrUnknownSession
	case current:
		return model.ErrCurrentSessionRevoke
	}

	if err := r.api.RevokeSession(ctx, id); err != nil {
		r.logger.Error("Sessions: failed to revoke session", "session_id", id, "error", err.Error())
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	r.mu.Lock()
	kept := r.devices[:0]
	for _, d := range r.devices {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	r.devices = kept
	r.mu.Unlock()

	r.logger.Info("Sessions: session revoked", "session_id", id)
	return nil
}

// RevokeAllOthers ends every session except the current one.
func (r *Registry) RevokeAllOthers(ctx context.Context) error {
	if err := r.api.RevokeOtherSessions(ctx); err != nil {
		r.logger.Error("Sessions: failed to revoke other sessions", "error", err.Error())
		return fmt.Errorf("failed to revoke other sessions: %w", err)
	}

	r.mu.Lock()
	kept := r.devices[:0]
	for _, d := range r.devices {
		if d.IsCurrent {
			kept = append(kept, d)
		}
	}
	r.devices = kept
	r.mu.Unlock()

	r.logger.Info("Sessions: other sessions revoked")
	return nil
}

func (r *Registry) copyLocked() []model.SessionDevice {
	out := make([]model.SessionDevice, len(r.devices))
	copy(out, r.devices)
	return out
}
