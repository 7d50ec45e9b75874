package federation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectNonPublic(t *testing.T) {
	tests := []struct {
		address string
		allowed bool
	}{
		{address: "93.184.216.34:443", allowed: true},
		{address: "[2606:4700::1111]:443", allowed: true},
		{address: "127.0.0.1:443"},
		{address: "[::1]:443"},
		{address: "10.1.2.3:443"},
		{address: "192.168.0.10:80"},
		{address: "172.16.5.5:80"},
		{address: "169.254.169.254:80"},
		{address: "[fe80::1]:443"},
		{address: "[fc00::1]:443"},
		{address: "0.0.0.0:443"},
		{address: "[::ffff:127.0.0.1]:443"},
		{address: "224.0.0.1:443"},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := rejectNonPublic("tcp", tt.address, nil)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrNonPublicAddress)
		})
	}
}

func TestPublicHTTPClientRefusesLoopback(t *testing.T) {
	hit := false
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
	}))
	defer internal.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, internal.URL, nil)
	require.NoError(t, err)
	_, err = PublicHTTPClient(time.Second).Do(req)

	assert.ErrorIs(t, err, ErrNonPublicAddress)
	assert.False(t, hit)
}

func TestWebfingerClientDoesNotReachInternalHosts(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("internal host was contacted")
	}))
	defer internal.Close()

	client := NewWebfingerClient(NewMemoryActorCache(time.Hour))
	_, err := client.Discover(context.Background(), []string{internal.URL + "/users/admin"})
	assert.ErrorIs(t, err, ErrNonPublicAddress)
}
