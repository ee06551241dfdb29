package widget

import "fmt"

// Frame and spacing constants, in CSS pixels.
const (
	LauncherSize   = 60
	ChatMaxWidth   = 380
	ChatMaxHeight  = 600
	ChatGap        = 16
	containerZIdx  = "2147483000"
	chatOffsetEdge = LauncherSize + ChatGap
)

// Style is a set of CSS declarations keyed by property name.
type Style map[string]string

// Layout holds the inline styles the loader applies to the host container
// and both frames.
type Layout struct {
	Container Style `json:"container"`
	Launcher  Style `json:"launcher"`
	Chat      Style `json:"chat"`
}

// ComputeLayout derives frame geometry from a configuration. Only the two
// edges named by the position are set on the container; the opposite edges
// stay unset. The chat frame opens on the far side of the launcher and never
// exceeds the viewport minus the configured margins.
func ComputeLayout(cfg Configuration) Layout {
	cfg = cfg.Normalize()
	v := cfg.Position.VerticalEdge()
	h := cfg.Position.HorizontalEdge()

	container := Style{
		"position": "fixed",
		"z-index":  containerZIdx,
		"width":    "0",
		"height":   "0",
		v:          px(cfg.MarginY),
		h:          px(cfg.MarginX),
	}

	launcher := Style{
		"position":      "absolute",
		"width":         px(LauncherSize),
		"height":        px(LauncherSize),
		"border":        "none",
		"border-radius": "50%",
		"box-shadow":    "0 4px 16px rgba(0, 0, 0, 0.2)",
		"background":    "transparent",
		v:               "0",
		h:               "0",
	}

	chat := Style{
		"position":      "absolute",
		"width":         px(ChatMaxWidth),
		"height":        px(ChatMaxHeight),
		"max-width":     fmt.Sprintf("calc(100vw - %dpx)", 2*cfg.MarginX),
		"max-height":    fmt.Sprintf("calc(100vh - %dpx)", 2*cfg.MarginY+chatOffsetEdge),
		"border":        "none",
		"border-radius": "16px",
		"box-shadow":    "0 12px 48px rgba(0, 0, 0, 0.18)",
		"background":    "#ffffff",
		v:               px(chatOffsetEdge),
		h:               "0",
	}

	return Layout{Container: container, Launcher: launcher, Chat: chat}
}

func px(n int) string {
	if n == 0 {
		return "0"
	}
	return fmt.Sprintf("%dpx", n)
}
