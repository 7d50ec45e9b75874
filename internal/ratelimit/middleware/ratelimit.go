// Package middleware throttles endpoints per requester, or per client IP for
// anonymous callers.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"usersearch/internal/ratelimit/metrics"
	"usersearch/internal/ratelimit/models"
	"usersearch/pkg/platform/circuit"
	"usersearch/pkg/platform/httputil"
	"usersearch/pkg/requestcontext"
)

// Store checks and records one request against a bucket.
type Store interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

type Middleware struct {
	primary       Store
	fallback      Store
	breaker       *circuit.Breaker
	anonymous     models.Limit
	authenticated models.Limit
	logger        *slog.Logger
	metrics       *metrics.Metrics
	disabled      bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback serves checks from store while the primary is failing. The
// breaker decides when to switch.
func WithFallback(store Store, breaker *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.fallback = store
		m.breaker = breaker
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// New builds the middleware. Anonymous callers share a budget per client IP;
// authenticated callers get their own.
func New(primary Store, anonymous, authenticated models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary:       primary,
		anonymous:     anonymous,
		authenticated: authenticated,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit returns middleware for one endpoint. It must run after the auth
// middleware so the requester is known.
func (m *Middleware) Limit(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			kind, subject, limit := models.SubjectIP, requestcontext.ClientIP(ctx), m.anonymous
			if uid := requestcontext.UserID(ctx); !uid.IsNil() {
				kind, subject, limit = models.SubjectRequester, uid.String(), m.authenticated
			}

			result, degraded, err := m.check(ctx, models.NewKey(endpoint, kind, subject), limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"subject", kind,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}
			if !result.Allowed {
				m.metrics.IncrementRejected(string(kind))
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// check asks the primary store unless the breaker is open, falling back to
// the in-memory store on failure when one is configured.
func (m *Middleware) check(ctx context.Context, key string, limit models.Limit) (*models.Result, bool, error) {
	if m.breaker != nil && !m.breaker.Allow() {
		return m.checkFallback(ctx, key, limit, nil)
	}

	result, err := m.primary.Allow(ctx, key, limit)
	if err != nil {
		if m.breaker != nil {
			if _, change := m.breaker.RecordFailure(); change.Opened {
				m.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "breaker", m.breaker.Name())
			}
		}
		return m.checkFallback(ctx, key, limit, err)
	}
	if m.breaker != nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.logger.InfoContext(ctx, "rate limit store recovered", "breaker", m.breaker.Name())
		}
	}
	return result, false, nil
}

func (m *Middleware) checkFallback(ctx context.Context, key string, limit models.Limit, cause error) (*models.Result, bool, error) {
	if m.fallback == nil {
		return nil, false, cause
	}
	m.metrics.IncrementDegraded()
	result, err := m.fallback.Allow(ctx, key, limit)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many searches. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
