package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/samplecodes/testkata/internal/metrics"
	"github.com/samplecodes/testkata/internal/ratelimit"
	"github.com/samplecodes/testkata/pkg/logger"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	Proxy        ProxyConfig
	APIKeyHeader string // e.g. "X-API-Key"; empty disables key-based limiting
}

// RateLimitResponse is the JSON body of a 429 response.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retry_after"`
}

// RateLimit rejects requests the limiter does not allow with 429.
// Limiter errors fail open.
func RateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig, log *zap.Logger) Middleware {
	resolver := newIPResolver(cfg.Proxy)
	log = logger.OrNop(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := rateLimitKey(r, cfg.APIKeyHeader, resolver)

			result, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("identifier", identifier), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)

			if !result.Allowed {
				metrics.RecordRateLimited()
				writeRateLimitResponse(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request, apiKeyHeader string, resolver ipResolver) string {
	if apiKeyHeader != "" {
		if key := r.Header.Get(apiKeyHeader); key != "" {
			return "api:" + key
		}
	}
	if ip := GetClientIP(r.Context()); ip != "" {
		return "ip:" + ip
	}
	return "ip:" + resolver.resolve(r)
}

func retrySeconds(d time.Duration) int {
	s := int(d.Seconds())
	if s < 1 {
		return 1
	}
	return s
}

func setRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

	if result.ResetAfter > 0 {
		reset := time.Now().Add(result.ResetAfter).Unix()
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
	}

	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(result.RetryAfter)))
	}
}

func writeRateLimitResponse(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(RateLimitResponse{
		Error:      ratelimit.ErrRateLimitExceeded.Error(),
		Code:       "RATE_LIMIT_EXCEEDED",
		RetryAfter: retrySeconds(result.RetryAfter),
	})
}
