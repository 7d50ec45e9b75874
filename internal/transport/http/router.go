// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"usersearch/internal/platform/metrics"
	"usersearch/pkg/platform/httputil"
	authmw "usersearch/pkg/platform/middleware/auth"
	"usersearch/pkg/platform/middleware/metadata"
	request "usersearch/pkg/platform/middleware/request"
	"usersearch/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Routes mounts endpoints on a router.
type Routes interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Limiter throttles an endpoint.
type Limiter interface {
	Limit(endpoint string) func(http.Handler) http.Handler
}

// Deps carries everything the router mounts. Limiter, Metrics and Health are
// optional.
type Deps struct {
	Search    Routes
	Validator authmw.JWTValidator
	Limiter   Limiter
	Metrics   *metrics.Metrics
	Health    HealthChecker
	Logger    *slog.Logger
}

// NewRouter wires middleware and endpoints. Search accepts anonymous callers;
// a bearer token, when present, must be valid and names the requester.
func NewRouter(d Deps) chi.Router {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/health", healthHandler(d.Health, logger))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuth(d.Validator, logger))
		if d.Limiter != nil {
			r.Use(d.Limiter.Limit("search"))
		}
		d.Search.Register(r)
	})
	return r
}

func healthHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := checker.Health(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
