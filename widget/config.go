package widget

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Position is the viewport corner the widget is pinned to.
type Position string

const (
	BottomRight Position = "bottom-right"
	BottomLeft  Position = "bottom-left"
	TopRight    Position = "top-right"
	TopLeft     Position = "top-left"
)

const (
	DefaultPosition     = BottomRight
	DefaultMargin       = 20
	MaxMargin           = 200
	DefaultPrimaryColor = "#4f46e5"
	DefaultChatIcon     = "💬"
)

var ErrInvalidPosition = errors.New("widget: invalid position")

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func ParsePosition(raw string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(raw))); p {
	case BottomRight, BottomLeft, TopRight, TopLeft:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPosition, raw)
	}
}

// VerticalEdge returns "top" or "bottom".
func (p Position) VerticalEdge() string {
	if strings.HasPrefix(string(p), "top") {
		return "top"
	}
	return "bottom"
}

// HorizontalEdge returns "left" or "right".
func (p Position) HorizontalEdge() string {
	if strings.HasSuffix(string(p), "left") {
		return "left"
	}
	return "right"
}

// Configuration is the per-chatbot widget appearance served to the loader.
// It is fetched once per page load and never mutated by the embed.
type Configuration struct {
	ID             string   `json:"id"`
	Position       Position `json:"position"`
	MarginX        int      `json:"margin_x"`
	MarginY        int      `json:"margin_y"`
	PrimaryColor   string   `json:"primary_color"`
	ChatIcon       string   `json:"chat_icon"`
	BotName        string   `json:"bot_name,omitempty"`
	WelcomeMessage string   `json:"welcome_message,omitempty"`
	Layout         *Layout  `json:"layout,omitempty"`
}

// Normalize replaces out-of-range or malformed values with defaults.
func (c Configuration) Normalize() Configuration {
	if p, err := ParsePosition(string(c.Position)); err == nil {
		c.Position = p
	} else {
		c.Position = DefaultPosition
	}
	c.MarginX = clampMargin(c.MarginX)
	c.MarginY = clampMargin(c.MarginY)
	c.PrimaryColor = strings.TrimSpace(c.PrimaryColor)
	if !hexColor.MatchString(c.PrimaryColor) {
		c.PrimaryColor = DefaultPrimaryColor
	}
	c.ChatIcon = strings.TrimSpace(c.ChatIcon)
	if c.ChatIcon == "" {
		c.ChatIcon = DefaultChatIcon
	}
	return c
}

// WithLayout returns the normalized configuration with its computed layout attached.
func (c Configuration) WithLayout() Configuration {
	c = c.Normalize()
	l := ComputeLayout(c)
	c.Layout = &l
	return c
}

// IconIsURL reports whether ChatIcon points at an image rather than a glyph.
func (c Configuration) IconIsURL() bool {
	icon := strings.ToLower(strings.TrimSpace(c.ChatIcon))
	return strings.HasPrefix(icon, "https://") || strings.HasPrefix(icon, "http://") || strings.HasPrefix(icon, "/")
}

func clampMargin(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxMargin {
		return MaxMargin
	}
	return v
}
