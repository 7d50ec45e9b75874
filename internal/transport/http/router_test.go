package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "usersearch/internal/jwt_token"
	"usersearch/internal/platform/metrics"
	ratelimit "usersearch/internal/ratelimit/middleware"
	"usersearch/internal/ratelimit/models"
	"usersearch/internal/ratelimit/store/bucket"
	"usersearch/internal/search/handler"
	"usersearch/internal/search/service"
	id "usersearch/pkg/domain"
	request "usersearch/pkg/platform/middleware/request"
	"usersearch/pkg/testutil"
)

type recordingService struct {
	last service.Query
}

func (s *recordingService) Search(_ context.Context, q service.Query) (*service.Result, error) {
	s.last = q
	return &service.Result{Timing: "0.00"}, nil
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, health HealthChecker) (http.Handler, *recordingService, *jwttoken.JWTService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwttoken.NewJWTService("test-key", "usersearch", "usersearch")
	svc := &recordingService{}

	r := NewRouter(Deps{
		Search:    handler.New(svc, logger, 0),
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Health:    health,
		Logger:    logger,
	})
	return r, svc, jwtService
}

func TestAnonymousSearch(t *testing.T) {
	r, svc, _ := newTestRouter(t, nil)

	rr := testutil.DoRequest(r, testutil.NewSearchRequest(url.Values{"query": {"ali"}}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
	assert.Equal(t, "ali", svc.last.Text)
	assert.True(t, svc.last.Requester.IsNil())
}

func TestBearerTokenNamesRequester(t *testing.T) {
	r, svc, jwtService := newTestRouter(t, nil)
	token, err := jwtService.GenerateAccessToken(id.LocalUID(5), time.Minute)
	require.NoError(t, err)

	req := testutil.NewSearchRequest(url.Values{"query": {"alice@remote.example"}})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := testutil.DoRequest(r, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id.UID("5"), svc.last.Requester)
}

func TestInvalidBearerTokenIsRejected(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	req := testutil.NewSearchRequest(url.Values{"query": {"ali"}})
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestSearchIsRateLimited(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwttoken.NewJWTService("test-key", "usersearch", "usersearch")
	limiter := ratelimit.New(bucket.NewInMemory(),
		models.Limit{Requests: 1, Window: time.Minute},
		models.Limit{Requests: 2, Window: time.Minute},
		logger)
	r := NewRouter(Deps{
		Search:    handler.New(&recordingService{}, logger, 0),
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Limiter:   limiter,
		Logger:    logger,
	})

	search := func() *http.Request { return testutil.NewSearchRequest(url.Values{"query": {"ali"}}) }
	require.Equal(t, http.StatusOK, testutil.DoRequest(r, search()).Code)
	rr := testutil.DoRequest(r, search())
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	token, err := jwtService.GenerateAccessToken(id.LocalUID(5), time.Minute)
	require.NoError(t, err)
	authed := search()
	authed.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, testutil.DoRequest(r, authed).Code, "requesters have their own budget")

	rr = testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "health is not limited")
}

func TestHealth(t *testing.T) {
	t.Run("no backing store", func(t *testing.T) {
		r, _, _ := newTestRouter(t, nil)
		rr := testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("store down", func(t *testing.T) {
		r, _, _ := newTestRouter(t, healthFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))
		rr := testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "unavailable", testutil.DecodeJSON[map[string]string](t, rr)["status"])
	})
}

type panickingRoutes struct{}

func (panickingRoutes) Register(r chi.Router) {
	r.Get("/api/users/search", func(http.ResponseWriter, *http.Request) {
		panic("slice bounds out of range")
	})
}

func TestPanickingHandlerStillAnswers(t *testing.T) {
	r := NewRouter(Deps{
		Search:    panickingRoutes{},
		Validator: jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService("test-key", "usersearch", "usersearch")),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rr := testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/api/users/search?query=ali", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
