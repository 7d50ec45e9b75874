// Package requesttime pins one "now" per request.
package requesttime

import (
	"net/http"
	"time"

	"usersearch/pkg/requestcontext"
)

// Middleware stamps each request with the wall clock.
var Middleware = New(time.Now)

// New stamps each request with now() taken once on entry.
func New(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), now())))
		})
	}
}
