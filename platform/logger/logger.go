// Package logger builds the service's slog.Logger: a coloured single-line
// text handler for development and JSON elsewhere. Attributes whose key
// names a credential are redacted by both handlers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger output format and level.
type Config struct {
	Service     string
	Environment string
	Level       string
	Format      string
	AddSource   bool
	Color       bool
	Output      io.Writer
}

const redacted = "[REDACTED]"

var secretKeys = []string{"password", "secret", "token", "api_key", "apikey", "authorization", "cookie"}

// IsSecretKey reports whether an attribute key must never be logged verbatim.
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindGroup && IsSecretKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func New(cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text", "console", "pretty":
		handler = NewPrettyHandler(out, PrettyHandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
			Color:     cfg.Color,
		})
	default:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       level,
			AddSource:   cfg.AddSource,
			ReplaceAttr: redact,
		})
	}

	logger := slog.New(handler)
	attrs := make([]any, 0, 4)
	if svc := strings.TrimSpace(cfg.Service); svc != "" {
		attrs = append(attrs, "service", svc)
	}
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		attrs = append(attrs, "env", env)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
