package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/ratelimit/metrics"
	"usersearch/internal/ratelimit/models"
	"usersearch/internal/ratelimit/store/bucket"
	id "usersearch/pkg/domain"
	"usersearch/pkg/platform/circuit"
	"usersearch/pkg/requestcontext"
)

var (
	anonymous     = models.Limit{Requests: 2, Window: time.Minute}
	authenticated = models.Limit{Requests: 4, Window: time.Minute}
)

type failingStore struct{ calls int }

func (f *failingStore) Allow(context.Context, string, models.Limit) (*models.Result, error) {
	f.calls++
	return nil, errors.New("redis: connection refused")
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(h http.Handler, ip, uid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/users/search?query=a", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test")
	if uid != "" {
		ctx = requestcontext.WithUserID(ctx, id.UID(uid))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func newHandler(m *Middleware) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return m.Limit("search")(ok)
}

func TestAnonymousCallersAreLimitedPerIP(t *testing.T) {
	h := newHandler(New(bucket.NewInMemory(), anonymous, authenticated, discard(),
		WithMetrics(metrics.New(prometheus.NewRegistry()))))

	for range anonymous.Requests {
		rr := serve(h, "10.0.0.1", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := serve(h, "10.0.0.1", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.2", "").Code, "other addresses keep their budget")
}

func TestRequestersGetTheirOwnBudget(t *testing.T) {
	h := newHandler(New(bucket.NewInMemory(), anonymous, authenticated, discard()))

	for range authenticated.Requests {
		require.Equal(t, http.StatusOK, serve(h, "10.0.0.1", "7").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1", "7").Code)
	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1", "").Code, "anonymous budget on the same address is separate")
}

func TestStoreFailureFailsOpenWithoutFallback(t *testing.T) {
	h := newHandler(New(&failingStore{}, anonymous, authenticated, discard()))

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1", "").Code)
	}
}

func TestStoreFailureUsesFallback(t *testing.T) {
	primary := &failingStore{}
	breaker := circuit.New("ratelimit", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	h := newHandler(New(primary, anonymous, authenticated, discard(),
		WithFallback(bucket.NewInMemory(), breaker)))

	rr := serve(h, "10.0.0.1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "degraded", rr.Header().Get("X-RateLimit-Status"))

	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1", "").Code)
	assert.Equal(t, 1, primary.calls, "open breaker stops calling the primary store")
}

func TestDisabled(t *testing.T) {
	h := newHandler(New(&failingStore{}, anonymous, authenticated, discard(), WithDisabled(true)))
	for range 5 {
		rr := serve(h, "10.0.0.1", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	}
}
