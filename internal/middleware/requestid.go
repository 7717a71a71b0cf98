package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// HeaderXRequestID is the header name for request ID.
const HeaderXRequestID = "X-Request-ID"

const requestIDMaxLength = 128

var validRequestIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// RequestID tags each request with an ID, echoed in X-Request-ID.
// A valid incoming X-Request-ID is kept; otherwise a UUID v4 is generated.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if !isValidRequestID(requestID) {
				requestID = uuid.New().String()
			}

			w.Header().Set(HeaderXRequestID, requestID)
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isValidRequestID(id string) bool {
	if id == "" || len(id) > requestIDMaxLength {
		return false
	}
	return validRequestIDRegex.MatchString(id)
}
