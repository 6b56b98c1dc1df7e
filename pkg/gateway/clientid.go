package gateway

import (
	"net"
	"net/http"
	"strings"
)

// UnknownCaller is the key used when no address can be determined.
const UnknownCaller = "unknown"

// ClientKey derives a best-effort caller identity from request metadata.
//
// The first entry of X-Forwarded-For wins, then X-Real-IP, then the host of
// RemoteAddr. Headers are not authenticated; any client can claim any
// address. That is acceptable for cost control but not for security-grade
// throttling.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		if host != "" {
			return host
		}
	}

	return UnknownCaller
}
