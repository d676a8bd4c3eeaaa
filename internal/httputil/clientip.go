// Package httputil holds small helpers shared by the HTTP layer.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the client address for request logging. With
// trustProxy set (SATTRACK_TRUST_PROXY) the forwarding headers written
// by a reverse proxy win over the socket peer; never set it when the
// service is reachable directly, as the headers are caller-controlled.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedFor(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in handler tests.
		return r.RemoteAddr
	}
	return host
}

// forwardedFor returns the leftmost X-Forwarded-For entry, then
// X-Real-IP, then empty.
func forwardedFor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
