package httputil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/ainavigator/backend/pkg/logger"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

// Transport logs outbound requests and optionally waits on a shared
// Redis rate limit before sending. It never retries.
// ⭐ SSOT: outbound HTTP goes through this transport
type Transport struct {
	base         http.RoundTripper
	logger       *logger.Logger
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig
}

// Option configures a Transport
type Option func(*Transport)

// WithRateLimiter makes every request wait for a slot in a shared window
func WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) Option {
	return func(t *Transport) {
		t.rateLimiter = limiter
		t.rateLimitCfg = &cfg
	}
}

// WithBase replaces the underlying round tripper
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

// NewTransport creates a logging transport over http.DefaultTransport
func NewTransport(log *logger.Logger, opts ...Option) *Transport {
	t := &Transport{
		base:   http.DefaultTransport,
		logger: log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// New creates an http.Client using Transport
// ⭐ SSOT: http.Client instances are created only here
func New(timeout time.Duration, log *logger.Logger, opts ...Option) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(log, opts...),
	}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.rateLimiter != nil && t.rateLimitCfg != nil {
		if err := t.rateLimiter.Wait(req.Context(), *t.rateLimitCfg); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	// host and path only: query strings may carry credentials
	fields := map[string]interface{}{
		"method": req.Method,
		"host":   req.URL.Host,
		"path":   req.URL.Path,
	}
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	fields["duration"] = time.Since(start)

	if err != nil {
		fields["error"] = err.Error()
		t.logger.WithFields(fields).Warn("HTTP request failed")
		return nil, err
	}

	fields["status_code"] = resp.StatusCode
	if IsRetryableError(resp.StatusCode) {
		t.logger.WithFields(fields).Warn("HTTP request returned retryable status")
	} else {
		t.logger.WithFields(fields).Debug("HTTP request completed")
	}
	return resp, nil
}

// IsRetryableError checks if a status should be retried
func IsRetryableError(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
