package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"usersearch/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Run("configured timeouts", func(t *testing.T) {
		srv := New(config.Server{Addr: ":9000", WriteTimeout: 45 * time.Second}, http.NotFoundHandler())
		assert.Equal(t, ":9000", srv.Addr)
		assert.Equal(t, 45*time.Second, srv.WriteTimeout)
		assert.Equal(t, 10*time.Second, srv.ReadTimeout)
		assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	})

	t.Run("zero config falls back", func(t *testing.T) {
		srv := New(config.Server{}, http.NotFoundHandler())
		assert.Equal(t, time.Minute, srv.IdleTimeout)
	})
}
