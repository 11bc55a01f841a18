package controllers

import (
	"net"
	"net/http"
	"strings"
)

// clientIP extracts the caller's IP for rate limiting, preferring the
// first X-Forwarded-For hop when the service runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
