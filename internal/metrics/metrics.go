package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway provides observability for outgoing account service calls.
type Gateway struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	InFlight       prometheus.Gauge
	SessionExpired prometheus.Counter
}

// NewGateway creates gateway collectors registered on reg.
// A nil reg leaves the collectors unregistered.
func NewGateway(reg prometheus.Registerer) *Gateway {
	return &Gateway{
		Requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_client_requests_total",
			Help: "Total number of account service requests by status code and method",
		}, []string{"code", "method"})),
		Duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_client_request_duration_seconds",
			Help:    "Duration of account service requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"code", "method"})),
		InFlight: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "account_client_requests_in_flight",
			Help: "Number of account service requests currently in flight",
		})),
		SessionExpired: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "account_client_session_expired_total",
			Help: "Total number of forced logouts caused by a 401 while logged in",
		})),
	}
}

// InstrumentTransport wraps next with request counting, latency and in-flight tracking.
func (g *Gateway) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(g.InFlight,
		promhttp.InstrumentRoundTripperCounter(g.Requests,
			promhttp.InstrumentRoundTripperDuration(g.Duration, next)))
}

// IncrementSessionExpired records a forced logout.
func (g *Gateway) IncrementSessionExpired() {
	g.SessionExpired.Inc()
}

// Server provides observability for the stub account server.
type Server struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Logins   *prometheus.CounterVec
}

// NewServer creates stub server collectors registered on reg.
func NewServer(reg prometheus.Registerer) *Server {
	return &Server{
		Requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_stub_requests_total",
			Help: "Total number of handled requests by status code and method",
		}, []string{"code", "method"})),
		Duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_stub_request_duration_seconds",
			Help:    "Duration of handled requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"})),
		Logins: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_stub_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"})),
	}
}

// InstrumentHandler wraps next with request counting and latency tracking.
func (s *Server) InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(s.Requests,
		promhttp.InstrumentHandlerDuration(s.Duration, next))
}

// ObserveLogin records a login attempt outcome ("success", "twofa", "failure").
func (s *Server) ObserveLogin(outcome string) {
	s.Logins.WithLabelValues(outcome).Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}
