// Package cookiejar keeps the ambient session cookies across process restarts.
package cookiejar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	stdjar "net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

const storeTimeout = 5 * time.Second

var (
	_ http.CookieJar     = (*Jar)(nil)
	_ model.CookiePurger = (*Jar)(nil)
)

// Jar is an http.CookieJar that mirrors every change into a model.CookieStore.
type Jar struct {
	jar    *stdjar.Jar
	store  model.CookieStore
	base   *url.URL
	logger *logger.Logger
	now    func() time.Time
}

// New creates a Jar for the service at baseURL and replays persisted cookies into it.
// Expired rows are dropped from the store.
func New(ctx context.Context, baseURL string, store model.CookieStore, logger *logger.Logger) (*Jar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	inner, err := stdjar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	j := &Jar{
		jar:    inner,
		store:  store,
		base:   base,
		logger: logger,
		now:    time.Now,
	}

	if err := j.replay(ctx); err != nil {
		return nil, err
	}

	return j, nil
}

func (j *Jar) replay(ctx context.Context) error {
	stored, err := j.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}

	now := j.now()
	for _, c := range stored {
		if c.Expired(now) {
			if err := j.store.Delete(ctx, c.Host, c.Path, c.Name); err != nil {
				j.logger.Warn("Cookie jar: failed to drop expired cookie", "name", c.Name, "error", err.Error())
			}
			continue
		}

		cookie := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires != nil {
			cookie.Expires = *c.Expires
		}
		j.jar.SetCookies(originOf(c.Host, c.Secure, j.base), []*http.Cookie{cookie})
	}

	j.logger.Debug("Cookie jar: replayed persisted cookies", "count", len(stored))
	return nil
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	now := j.now()
	for _, c := range cookies {
		stored := model.StoredCookie{
			Host:     u.Hostname(),
			Path:     cookiePath(c, u),
			Name:     c.Name,
			Value:    c.Value,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}

		var err error
		switch {
		case c.MaxAge < 0, !c.Expires.IsZero() && !c.Expires.After(now):
			err = j.store.Delete(ctx, stored.Host, stored.Path, stored.Name)
		default:
			if c.MaxAge > 0 {
				exp := now.Add(time.Duration(c.MaxAge) * time.Second)
				stored.Expires = &exp
			} else if !c.Expires.IsZero() {
				exp := c.Expires
				stored.Expires = &exp
			}
			err = j.store.Save(ctx, stored)
		}
		if err != nil {
			j.logger.Warn("Cookie jar: failed to persist cookie", "name", c.Name, "error", err.Error())
		}
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// Expire clears the named cookies of the service origin, in memory and in the store.
func (j *Jar) Expire(names ...string) error {
	cookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		cookies = append(cookies, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
	}
	j.jar.SetCookies(j.base, cookies)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var errs []error
	for _, name := range names {
		if err := j.store.Delete(ctx, j.base.Hostname(), "/", name); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete cookie %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// cookiePath applies the default-path rule of RFC 6265 section 5.1.4.
func cookiePath(c *http.Cookie, u *url.URL) string {
	if c.Path != "" && c.Path[0] == '/' {
		return c.Path
	}
	p := u.Path
	if p == "" || p[0] != '/' {
		return "/"
	}
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			if i == 0 {
				return "/"
			}
			return p[:i]
		}
	}
	return "/"
}

func originOf(host string, secure bool, base *url.URL) *url.URL {
	scheme := base.Scheme
	if secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: host, Path: "/"}
	if host == base.Hostname() && base.Port() != "" {
		u.Host = base.Host
	}
	return u
}
