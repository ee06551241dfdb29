package middleware

import (
	"log/slog"
	"net/http"

	"orion-chatbot/utils"
)

// WithAuth authenticates the request and, for anything other than GET and
// HEAD, validates the CSRF token before calling next with the claims.
func WithAuth[C any](
	authenticate func(*http.Request) (C, error),
	requireCSRF func(*http.Request) error,
	onError func(http.ResponseWriter, int, string),
	next func(http.ResponseWriter, *http.Request, C),
	logger *slog.Logger,
) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	authLogger := logger.With("component", "auth")
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := authenticate(r)
		if err != nil {
			authLogger.Warn("request authentication failed",
				"request_id", utils.RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			onError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if err := requireCSRF(r); err != nil {
				authLogger.Warn("csrf validation failed",
					"request_id", utils.RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"error", err,
				)
				onError(w, http.StatusForbidden, err.Error())
				return
			}
		}
		next(w, r, claims)
	}
}
