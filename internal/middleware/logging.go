package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/samplecodes/testkata/pkg/logger"
)

// Logger writes one access log entry per request. 5xx responses log at
// error level and 4xx at warn.
func Logger(log *zap.Logger) Middleware {
	log = logger.OrNop(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("client_ip", GetClientIP(r.Context())),
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				log.Error("request completed", fields...)
			case rw.statusCode >= http.StatusBadRequest:
				log.Warn("request completed", fields...)
			default:
				log.Info("request completed", fields...)
			}
		})
	}
}

// Recover turns a panicking handler into a 500 response.
func Recover(log *zap.Logger) Middleware {
	log = logger.OrNop(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("handler panicked",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "internal server error",
					"code":  "INTERNAL_ERROR",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
