package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/account-client/internal/api/http/handler"
	"github.com/dtroode/account-client/internal/api/http/middleware"
	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/metrics"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/service"
)

const requestTimeout = 30 * time.Second

// AccountService is everything the account routes need from the stub service.
type AccountService interface {
	handler.AccountService
	middleware.SessionService
}

// Router builds the HTTP routes of the stub account service.
type Router struct {
	service        AccountService
	contextManager model.ContextManager
	metrics        *metrics.Server
	gatherer       prometheus.Gatherer
	basePath       string
	cfg            config.Stub
	logger         *logger.Logger
}

// New creates a Router serving the account endpoints under basePath.
// A nil gatherer exposes the default prometheus registry; nil metrics are kept unregistered.
func New(
	service AccountService,
	contextManager model.ContextManager,
	m *metrics.Server,
	gatherer prometheus.Gatherer,
	basePath string,
	cfg config.Stub,
	logger *logger.Logger,
) *Router {
	if m == nil {
		m = metrics.NewServer(nil)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		service:        service,
		contextManager: contextManager,
		metrics:        m,
		gatherer:       gatherer,
		basePath:       "/" + strings.Trim(basePath, "/"),
		cfg:            cfg,
		logger:         logger,
	}
}

// Register wires middleware and routes.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.service, r.contextManager, r.logger)
	account := handler.NewAccount(r.service, r.contextManager, r.metrics, r.cfg, r.logger)

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(chimw.Recoverer)
	root.Use(logging.Handle)
	root.Use(chimw.Timeout(requestTimeout))

	root.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	root.Route(r.basePath, func(api chi.Router) {
		api.Use(r.metrics.InstrumentHandler)

		api.Post(service.EndpointSignup, account.Signup)
		api.Post(service.EndpointLogin, account.Login)
		api.Post(service.EndpointVerifyTwoFactor, account.VerifyTwoFactor)

		api.Group(func(private chi.Router) {
			private.Use(authenticate.Handle)

			private.Post(service.EndpointLogout, account.Logout)
			private.Get(service.EndpointProfile, account.Profile)
			private.Get(service.EndpointTwoFactorStatus, account.TwoFactorStatus)
			private.Post(service.EndpointTwoFactorSecret, account.GenerateTwoFactorSecret)
			private.Post(service.EndpointTwoFactorChange, account.ChangeTwoFactor)
			private.Post(service.EndpointChangeName, account.ChangeName)
			private.Post(service.EndpointChangePassword, account.ChangePassword)
			private.Get(service.EndpointSessions, account.Sessions)
			private.Post(service.EndpointRevokeSession, account.RevokeSession)
			private.Post(service.EndpointRevokeAll, account.RevokeOtherSessions)
		})
	})

	return root
}
