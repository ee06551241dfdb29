package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Service: "orion-chatbot", Environment: "test", Format: "json", Output: &buf})
	log.Info("admin logged in", "email", "admin@example.com", "admin_password", "hunter2")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "admin logged in", rec["msg"])
	assert.Equal(t, "orion-chatbot", rec["service"])
	assert.Equal(t, "test", rec["env"])
	assert.Equal(t, "admin@example.com", rec["email"])
	assert.Equal(t, redacted, rec["admin_password"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "warn", Output: &buf})
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Service: "orion-chatbot", Format: "text", Output: &buf})
	log.With("component", "http").WithGroup("req").Warn("request completed",
		"status", 404, "path", "/api/widget/x/config", "csrf_token", "abc", "error", errors.New("not found"))

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "WARN  request completed | ")
	assert.Contains(t, line, "service=orion-chatbot")
	assert.Contains(t, line, "component=http")
	assert.Contains(t, line, "req.status=404")
	assert.Contains(t, line, "req.path=/api/widget/x/config")
	assert.Contains(t, line, "req.csrf_token="+redacted)
	assert.Contains(t, line, `req.error="not found"`)
	assert.NotContains(t, line, "\x1b[")
}

func TestPrettyHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "text", Color: true, Output: &buf}).Error("boom")
	assert.Contains(t, buf.String(), ansiRed)
}

func TestIsSecretKey(t *testing.T) {
	for _, k := range []string{"password", "OPENAI_API_KEY", "Authorization", "set_cookie", "token_hash"} {
		assert.True(t, IsSecretKey(k), k)
	}
	for _, k := range []string{"email", "chatbot_id", "status"} {
		assert.False(t, IsSecretKey(k), k)
	}
}
