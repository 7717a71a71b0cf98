package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/samplecodes/testkata/internal/metrics"
)

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Metrics records request count, latency and in-flight requests.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			metrics.ActiveConnections.Inc()
			defer metrics.ActiveConnections.Dec()

			next.ServeHTTP(rw, r)

			metrics.RecordRequest(r.Method, normalizePath(r.URL.Path), rw.statusCode, time.Since(start))
		})
	}
}

var calcOps = map[string]bool{"add": true, "subtract": true, "multiply": true, "divide": true}

// normalizePath maps a request path to a low-cardinality route label.
func normalizePath(path string) string {
	switch path {
	case "/health", "/ready", "/metrics",
		"/api/v1/usernames/validate", "/api/v1/members/active-adults":
		return path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 4 || segments[0] != "api" || segments[1] != "v1" || segments[3] == "" {
		return "/other"
	}

	switch {
	case segments[2] == "calc" && len(segments) == 4 && calcOps[segments[3]]:
		return path
	case segments[2] == "users" && len(segments) == 4:
		return "/api/v1/users/{id}"
	case segments[2] == "users" && len(segments) == 5 && segments[4] == "display":
		return "/api/v1/users/{id}/display"
	case segments[2] == "profiles" && len(segments) == 4:
		return "/api/v1/profiles/{id}"
	}
	return "/other"
}
