package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGray   = "\x1b[90m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiCyan   = "\x1b[36m"
	ansiBold   = "\x1b[1m"
)

type PrettyHandlerOptions struct {
	Level     slog.Leveler
	AddSource bool
	Color     bool
}

// prettyHandler writes one line per record:
//
//	2006-01-02 15:04:05.000 INFO  message | key=value group.key=value
//
// Attributes bound with WithAttrs are formatted once, when bound.
type prettyHandler struct {
	out    io.Writer
	opts   PrettyHandlerOptions
	prefix string
	bound  []string
	mu     *sync.Mutex
}

func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) slog.Handler {
	if out == nil {
		out = io.Discard
	}
	return &prettyHandler{out: out, opts: opts, mu: &sync.Mutex{}}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *prettyHandler) Handle(_ context.Context, rec slog.Record) error {
	t := rec.Time
	if t.IsZero() {
		t = time.Now()
	}
	msg := rec.Message
	if msg == "" {
		msg = "-"
	}
	level := padLevel(rec.Level.String())

	var b strings.Builder
	if h.opts.Color {
		fmt.Fprintf(&b, "%s%s%s %s%s%s %s%s%s", ansiGray, t.Format("2006-01-02 15:04:05.000"), ansiReset,
			levelColor(rec.Level), level, ansiReset, ansiBold, msg, ansiReset)
	} else {
		fmt.Fprintf(&b, "%s %s %s", t.Format("2006-01-02 15:04:05.000"), level, msg)
	}

	parts := append([]string(nil), h.bound...)
	rec.Attrs(func(a slog.Attr) bool {
		parts = h.appendAttr(parts, h.prefix, a)
		return true
	})
	if h.opts.AddSource && rec.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{rec.PC}).Next()
		parts = append(parts, h.pair("source", filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line)))
	}
	if len(parts) > 0 {
		b.WriteString(" | ")
		b.WriteString(strings.Join(parts, " "))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.bound = append([]string(nil), h.bound...)
	for _, a := range attrs {
		next.bound = h.appendAttr(next.bound, h.prefix, a)
	}
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *prettyHandler) appendAttr(parts []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return parts
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			parts = h.appendAttr(parts, prefix, ga)
		}
		return parts
	}
	if a.Key == "" {
		return parts
	}
	if IsSecretKey(a.Key) {
		return append(parts, h.pair(prefix+a.Key, redacted))
	}
	return append(parts, h.pair(prefix+a.Key, formatValue(a.Value)))
}

func (h *prettyHandler) pair(key, value string) string {
	if h.opts.Color {
		return ansiCyan + key + ansiReset + "=" + value
	}
	return key + "=" + value
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprintf("%v", v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\r\n=\"|") {
		return strconv.Quote(s)
	}
	return s
}

func levelColor(lv slog.Level) string {
	switch {
	case lv >= slog.LevelError:
		return ansiRed
	case lv >= slog.LevelWarn:
		return ansiYellow
	case lv < slog.LevelInfo:
		return ansiGray
	}
	return ansiGreen
}

func padLevel(level string) string {
	l := strings.ToUpper(strings.TrimSpace(level))
	if len(l) >= 5 {
		return l
	}
	return l + strings.Repeat(" ", 5-len(l))
}
