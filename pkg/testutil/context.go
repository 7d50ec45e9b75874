package testutil

import (
	"context"
	"net/http"

	id "usersearch/pkg/domain"
	"usersearch/pkg/requestcontext"
)

// WithUserID marks the request as authenticated for uid, the way the auth
// middleware does. Non-local ids are ignored.
func WithUserID(req *http.Request, uid string) *http.Request {
	parsed, err := id.ParseUID(uid)
	if err != nil || !parsed.IsLocal() {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
