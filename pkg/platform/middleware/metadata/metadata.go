// Package metadata records the caller's address and user agent on the request
// context. The rate limiter keys anonymous budgets on the address and the audit
// trail stores it next to privileged lookups.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"usersearch/pkg/requestcontext"
)

func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the first parseable address from X-Forwarded-For, then
// X-Real-IP, then the connection's remote address. Unparseable header values
// are skipped. The result is empty when nothing parses.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, ok := parseAddr(first); ok {
			return addr
		}
	}
	if addr, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
		return addr
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if addr, ok := parseAddr(host); ok {
		return addr
	}
	return ""
}

func parseAddr(raw string) (string, bool) {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}
