package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"usersearch/internal/platform/config"
	ratelimitmetrics "usersearch/internal/ratelimit/metrics"
	"usersearch/internal/ratelimit/middleware"
	"usersearch/internal/ratelimit/models"
	"usersearch/internal/ratelimit/store/bucket"
	"usersearch/pkg/platform/circuit"
)

// NewRateLimiter builds the search rate limiter. With Redis available the
// budget is shared across nodes and an in-memory store takes over while Redis
// is failing; otherwise the in-memory store is the only one.
func NewRateLimiter(cfg config.RateLimitConfig, b *Backends, logger *slog.Logger, reg prometheus.Registerer) *middleware.Middleware {
	anonymous := models.Limit{Requests: cfg.AnonymousRequests, Window: cfg.Window}
	authenticated := models.Limit{Requests: cfg.AuthenticatedRequests, Window: cfg.Window}

	opts := []middleware.Option{middleware.WithDisabled(!cfg.Enabled)}
	if reg != nil {
		opts = append(opts, middleware.WithMetrics(ratelimitmetrics.New(reg)))
	}

	if b.Redis == nil {
		return middleware.New(bucket.NewInMemory(), anonymous, authenticated, logger, opts...)
	}

	var breakerOpts []circuit.Option
	if cfg.FailureThreshold > 0 {
		breakerOpts = append(breakerOpts, circuit.WithFailureThreshold(cfg.FailureThreshold))
	}
	if cfg.BreakerCooldown > 0 {
		breakerOpts = append(breakerOpts, circuit.WithCooldown(cfg.BreakerCooldown))
	}
	opts = append(opts, middleware.WithFallback(bucket.NewInMemory(), circuit.New("ratelimit", breakerOpts...)))
	return middleware.New(bucket.NewRedis(b.Redis.Client), anonymous, authenticated, logger, opts...)
}
