package audit

import (
	"net"
	"net/http"
)

// ClientIP returns the caller's host. Proxy headers are expected to have
// been folded into RemoteAddr by the router's RealIP middleware.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
