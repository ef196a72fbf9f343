// Package memory provides process-local stores used when no store file is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dtroode/account-client/internal/model"
)

var (
	_ model.CookieStore  = (*CookieStore)(nil)
	_ model.LocalStorage = (*ValueStore)(nil)
)

type cookieKey struct {
	host, path, name string
}

// CookieStore keeps cookies in memory.
type CookieStore struct {
	mu      sync.RWMutex
	cookies map[cookieKey]model.StoredCookie
}

// NewCookieStore creates new CookieStore instance.
func NewCookieStore() *CookieStore {
	return &CookieStore{cookies: make(map[cookieKey]model.StoredCookie)}
}

// Load returns every stored cookie.
func (s *CookieStore) Load(context.Context) ([]model.StoredCookie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.StoredCookie, 0, len(s.cookies))
	for _, c := range s.cookies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Host != out[j].Host {
			return out[i].Host < out[j].Host
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Save inserts or replaces a cookie.
func (s *CookieStore) Save(_ context.Context, cookie model.StoredCookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cookies[cookieKey{cookie.Host, cookie.Path, cookie.Name}] = cookie
	return nil
}

// Delete removes a cookie.
func (s *CookieStore) Delete(_ context.Context, host, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cookies, cookieKey{host, path, name})
	return nil
}

// ValueStore keeps local values in memory.
type ValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewValueStore creates new ValueStore instance.
func NewValueStore() *ValueStore {
	return &ValueStore{values: make(map[string]string)}
}

// Get returns the value of key, or model.ErrNotFound.
func (s *ValueStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", model.ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *ValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove deletes keys. Missing keys are ignored.
func (s *ValueStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
