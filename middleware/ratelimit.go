package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"orion-chatbot/utils"
)

// WithRateLimit limits each client IP to limit requests per window. A
// non-positive limit disables limiting.
func WithRateLimit(limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if logger == nil {
		logger = slog.Default()
	}
	limitLogger := logger.With("component", "ratelimit")
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			limitLogger.Warn("rate limit exceeded",
				"request_id", utils.RequestID(r.Context()),
				"path", r.URL.Path,
				"remote_ip", utils.ClientIP(r),
			)
			utils.JSONErr(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}
