package federation

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrNonPublicAddress is returned when a remote host resolves to an address
// the server must not reach on a requester's behalf.
var ErrNonPublicAddress = errors.New("non-public address")

// PublicHTTPClient only connects to globally routable unicast addresses. The
// check runs on the resolved address at dial time, so redirects and DNS
// answers pointing inward are refused too.
func PublicHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: rejectNonPublic,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

func rejectNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, ErrNonPublicAddress)
	}
	if !isPublic(addr.Unmap()) {
		return fmt.Errorf("dial %s: %w", address, ErrNonPublicAddress)
	}
	return nil
}

func isPublic(addr netip.Addr) bool {
	return addr.IsGlobalUnicast() && !addr.IsPrivate()
}
