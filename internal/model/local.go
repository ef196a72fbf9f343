package model

import (
	"context"
	"time"
)

// Keys of locally held auth artifacts purged on logout.
const (
	AccessTokenKey  = "access-token"
	RefreshTokenKey = "refresh-token"
)

// Client-readable cookies cleared on logout.
const (
	DeviceIDCookie  = "device_id"
	SessionIDCookie = "session_id"
)

// LocalStorage persists small client-side values.
type LocalStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// CookiePurger clears client-visible cookies by name.
type CookiePurger interface {
	Expire(names ...string) error
}

// CookieStore persists cookies across process restarts.
type CookieStore interface {
	Load(ctx context.Context) ([]StoredCookie, error)
	Save(ctx context.Context, cookie StoredCookie) error
	Delete(ctx context.Context, host, path, name string) error
}

// StoredCookie is one persisted cookie.
type StoredCookie struct {
	Host     string
	Path     string
	Name     string
	Value    string
	Expires  *time.Time
	Secure   bool
	HTTPOnly bool
}

// Expired reports whether the cookie is past its expiry at now.
func (c StoredCookie) Expired(now time.Time) bool {
	return c.Expires != nil && !c.Expires.After(now)
}
