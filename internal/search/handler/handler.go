// Package handler exposes identity search over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"usersearch/internal/search/service"
	"usersearch/pkg/platform/httputil"
	"usersearch/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service runs a search for the handler.
type Service interface {
	Search(ctx context.Context, q service.Query) (*service.Result, error)
}

// Handler wires the search endpoint to the search service.
type Handler struct {
	service    Service
	logger     *slog.Logger
	maxPerPage int
}

// New constructs a search handler. maxPerPage bounds the resultsPerPage
// parameter.
func New(service Service, logger *slog.Logger, maxPerPage int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:    service,
		logger:     logger,
		maxPerPage: maxPerPage,
	}
}

// Register mounts the search endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/users/search", h.HandleSearch)
}

// HandleSearch handles GET /api/users/search. Anonymous requests are served;
// an authenticated requester additionally enables remote resolution and
// block annotation.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	q, err := ParseSearchRequest(r.URL.Query(), h.maxPerPage)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid search request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	q.Requester = requestcontext.UserID(ctx)

	result, err := h.service.Search(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"search_by", q.SearchBy,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "search served",
		"request_id", requestID,
		"search_by", q.SearchBy,
		"matches", result.MatchCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}
