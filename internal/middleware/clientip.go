package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

const (
	// HeaderXForwardedFor is the header name for forwarded client IP.
	HeaderXForwardedFor = "X-Forwarded-For"
	// HeaderXRealIP is the header name for real client IP.
	HeaderXRealIP = "X-Real-IP"
)

// ProxyConfig controls whether forwarding headers are believed.
type ProxyConfig struct {
	TrustProxy     bool
	TrustedProxies []string // empty means any proxy when TrustProxy is set
}

type ipResolver struct {
	trustProxy bool
	trusted    map[string]bool
}

func newIPResolver(cfg ProxyConfig) ipResolver {
	trusted := make(map[string]bool, len(cfg.TrustedProxies))
	for _, ip := range cfg.TrustedProxies {
		trusted[ip] = true
	}
	return ipResolver{trustProxy: cfg.TrustProxy, trusted: trusted}
}

// ClientIP stores the resolved client address in the request context.
func ClientIP(cfg ProxyConfig) Middleware {
	resolver := newIPResolver(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPKey, resolver.resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve prefers the first X-Forwarded-For entry, then X-Real-IP, then
// RemoteAddr. Headers are ignored unless the peer is a trusted proxy.
func (res ipResolver) resolve(r *http.Request) string {
	remoteIP := hostOnly(r.RemoteAddr)

	if !res.trustProxy {
		return remoteIP
	}
	if len(res.trusted) > 0 && !res.trusted[remoteIP] {
		return remoteIP
	}

	if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get(HeaderXRealIP)); xri != "" {
		return xri
	}

	return remoteIP
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
