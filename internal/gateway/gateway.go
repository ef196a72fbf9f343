// Package gateway is the single chokepoint for account service calls.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/metrics"
	"github.com/dtroode/account-client/internal/model"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodySize     = 1 << 20
	networkMessage  = "Network error. Please check your connection."
	tracerName      = "github.com/dtroode/account-client/internal/gateway"
)

// Session is the part of the auth store the gateway needs for 401 interception.
type Session interface {
	State() model.AuthState
	Logout(ctx context.Context)
}

// Gateway sends JSON requests to the account service and turns every failure
// into a *model.APIError. A 401 received while logged in forces exactly one logout.
type Gateway struct {
	client  *http.Client
	baseURL string
	session Session
	logger  *logger.Logger
	metrics *metrics.Gateway
	tracer  trace.Tracer

	// serializes 401 handling so one expiry episode logs out once
	expiryMu sync.Mutex
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTransport sets the base round tripper wrapped by metrics instrumentation.
func WithTransport(rt http.RoundTripper) Option {
	return func(g *Gateway) {
		g.client.Transport = rt
	}
}

// WithMetrics sets the collectors the gateway reports to.
func WithMetrics(m *metrics.Gateway) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = t
	}
}

// New creates a Gateway for cfg. jar carries the ambient session cookies.
func New(cfg config.API, jar http.CookieJar, session Session, logger *logger.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:  &http.Client{Timeout: cfg.Timeout, Jar: jar},
		baseURL: strings.TrimRight(cfg.BaseURL(), "/"),
		session: session,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = metrics.NewGateway(nil)
	}
	g.client.Transport = g.metrics.InstrumentTransport(g.client.Transport)

	return g
}

// URL returns the absolute address of endpoint.
func (g *Gateway) URL(endpoint string) string {
	return g.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Do sends req and decodes the envelope's data into out when out is non-nil.
func (g *Gateway) Do(ctx context.Context, req model.Request, out any) (*model.Response, error) {
	requestID := uuid.NewString()
	url := g.URL(req.Endpoint)

	ctx, span := g.tracer.Start(ctx, req.Method+" "+req.Endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", url),
		attribute.String("request.id", requestID),
	)

	httpReq, err := g.newRequest(ctx, req, url, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error("Gateway: request failed", "method", req.Method, "endpoint", req.Endpoint, "request_id", requestID, "error", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, &model.APIError{Kind: model.KindNetwork, Message: networkMessage, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	g.logger.Debug("Gateway: response received", "method", req.Method, "endpoint", req.Endpoint, "status", resp.StatusCode, "request_id", requestID)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		span.RecordError(err)
		return nil, &model.APIError{Kind: model.KindNetwork, Status: resp.StatusCode, Message: networkMessage, Err: err}
	}

	env, decodeErr := decodeEnvelope(body)

	if resp.StatusCode == http.StatusUnauthorized {
		span.SetStatus(codes.Error, "unauthorized")
		return nil, g.handleUnauthorized(ctx, env.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &model.APIError{
			Kind:    model.KindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: messageOr(env.Message, http.StatusText(resp.StatusCode)),
		}
		span.SetStatus(codes.Error, apiErr.Kind.String())
		g.logger.Debug("Gateway: request rejected", "endpoint", req.Endpoint, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	if decodeErr != nil {
		g.logger.Error("Gateway: failed to decode envelope", "endpoint", req.Endpoint, "error", decodeErr.Error())
		return nil, &model.APIError{Kind: model.KindServer, Status: resp.StatusCode, Message: "Invalid response from server", Err: decodeErr}
	}

	if !env.Success {
		return nil, &model.APIError{Kind: model.KindValidation, Status: resp.StatusCode, Message: messageOr(env.Message, "Request failed")}
	}

	if out != nil && env.HasData() {
		if err := json.Unmarshal(env.Data, out); err != nil {
			g.logger.Error("Gateway: failed to decode data", "endpoint", req.Endpoint, "error", err.Error())
			return nil, &model.APIError{Kind: model.KindServer, Status: resp.StatusCode, Message: "Invalid response from server", Err: err}
		}
	}

	return &model.Response{Status: resp.StatusCode, Envelope: env, Header: resp.Header}, nil
}

func (g *Gateway) newRequest(ctx context.Context, req model.Request, url, requestID string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)

	return httpReq, nil
}

// handleUnauthorized logs out at most once per expiry episode. The logout
// completes before the error is returned to the caller.
func (g *Gateway) handleUnauthorized(ctx context.Context, message string) error {
	g.expiryMu.Lock()
	defer g.expiryMu.Unlock()

	if !g.session.State().Status {
		return &model.APIError{Kind: model.KindUnauthorized, Status: http.StatusUnauthorized, Message: messageOr(message, "Unauthorized")}
	}

	g.session.Logout(context.WithoutCancel(ctx))
	g.metrics.IncrementSessionExpired()
	g.logger.Warn("Gateway: session expired, logged out", "server_message", message)

	return &model.APIError{Kind: model.KindCredentialExpired, Status: http.StatusUnauthorized, Message: model.SessionExpiredMessage}
}

func decodeEnvelope(body []byte) (model.Envelope, error) {
	var env model.Envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return model.Envelope{Success: true}, nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return model.Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return env, nil
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
