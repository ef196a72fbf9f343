// Package client assembles the session and authorization core for one process.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dtroode/account-client/internal/auth"
	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/cookiejar"
	"github.com/dtroode/account-client/internal/gateway"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/metrics"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/repository/memory"
	"github.com/dtroode/account-client/internal/repository/sqlite"
	"github.com/dtroode/account-client/internal/route"
	"github.com/dtroode/account-client/internal/service"
	"github.com/dtroode/account-client/internal/sessions"
	"github.com/dtroode/account-client/internal/twofa"
)

type options struct {
	transport http.RoundTripper
	registry  prometheus.Registerer
	captcha   model.CaptchaProvider
	routes    *route.Table
	twofaOpts []twofa.ChallengeOption
}

// Option configures New.
type Option func(*options)

// WithTransport replaces the HTTP transport of the gateway.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithRegisterer registers gateway metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithCaptcha replaces the static captcha token taken from the config.
func WithCaptcha(p model.CaptchaProvider) Option {
	return func(o *options) {
		o.captcha = p
	}
}

// WithRoutes replaces the default route table.
func WithRoutes(t *route.Table) Option {
	return func(o *options) {
		o.routes = t
	}
}

// WithChallengeOptions is applied to every challenge made by NewChallenge.
func WithChallengeOptions(opts ...twofa.ChallengeOption) Option {
	return func(o *options) {
		o.twofaOpts = append(o.twofaOpts, opts...)
	}
}

// Client owns every component of the core and the stores behind them.
type Client struct {
	Jar        *cookiejar.Jar
	Store      *auth.Store
	Gateway    *gateway.Gateway
	Account    *service.Account
	Auth       *service.Auth
	Sessions   *sessions.Registry
	Gate       *route.Gate
	Enrollment *twofa.Enrollment

	cfg     config.TwoFA
	logger  *logger.Logger
	opts    options
	closers []io.Closer
}

// New wires a Client from cfg. With an empty StorePath cookies and local
// values live only as long as the process.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger, opts ...Option) (*Client, error) {
	o := options{captcha: service.StaticCaptcha(cfg.RecaptchaToken)}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		cfg:    cfg.TwoFA,
		logger: logger,
		opts:   o,
	}

	var (
		cookieStore model.CookieStore
		values      model.LocalStorage
	)
	if cfg.StorePath == "" {
		cookieStore = memory.NewCookieStore()
		values = memory.NewValueStore()
	} else {
		db, err := sqlite.NewConnection(ctx, cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		c.closers = append(c.closers, db)
		cookieStore = sqlite.NewCookieRepository(db)
		values = sqlite.NewValueRepository(db)
	}

	jar, err := cookiejar.New(ctx, cfg.API.BaseURL(), cookieStore, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c.Jar = jar
	c.Store = auth.NewStore(values, jar, logger)

	gwOpts := []gateway.Option{gateway.WithMetrics(metrics.NewGateway(o.registry))}
	if o.transport != nil {
		gwOpts = append(gwOpts, gateway.WithTransport(o.transport))
	}
	c.Gateway = gateway.New(cfg.API, jar, c.Store, logger, gwOpts...)

	c.Account = service.NewAccount(c.Gateway, logger)
	c.Sessions = sessions.NewRegistry(c.Account, logger)
	c.Auth = service.NewAuth(c.Account, c.Store, c.Sessions, o.captcha, logger)
	c.Gate = route.NewGate(c.Store, o.routes, logger)
	c.Enrollment = twofa.NewEnrollment(c.Account, logger)

	return c, nil
}

// Initialize runs the startup session probe once.
func (c *Client) Initialize(ctx context.Context) model.Hydration {
	return c.Store.Initialize(ctx, c.Account)
}

// NewChallenge creates a second-factor challenge that routes through nav.
func (c *Client) NewChallenge(nav model.Navigator, opts ...twofa.ChallengeOption) *twofa.Challenge {
	all := append(append([]twofa.ChallengeOption{}, c.opts.twofaOpts...), opts...)
	return twofa.NewChallenge(c.Account, c.Account, c.Store, nav, c.cfg, c.logger, all...)
}

// Close releases subscribers and the local store.
func (c *Client) Close() error {
	if c.Store != nil {
		c.Store.Teardown()
	}

	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
