package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"usersearch/pkg/requestcontext"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote ipv4", remoteAddr: "192.0.2.7:51000", want: "192.0.2.7"},
		{name: "remote ipv6", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "mapped ipv4 is unwrapped", remoteAddr: "[::ffff:10.0.0.9]:80", want: "10.0.0.9"},
		{
			name:       "first forwarded hop wins",
			remoteAddr: "10.1.1.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.4, 10.1.1.1"},
			want:       "198.51.100.4",
		},
		{
			name:       "garbage forwarded header falls through to real ip",
			remoteAddr: "10.1.1.1:80",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{name: "nothing parses", remoteAddr: "pipe", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestClientMetadataPopulatesContext(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.50:1234"
	req.Header.Set("User-Agent", "searchctl/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.50", gotIP)
	assert.Equal(t, "searchctl/1.0", gotUA)
}
