package widget

import (
	"sync"
	"time"
)

// TransitionDuration is how long a frame fades before it is removed from
// layout.
const TransitionDuration = 250 * time.Millisecond

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Source identifies the frame a message came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceLauncher
	SourceChat
)

// Transition reports the effect of one handled message.
type Transition struct {
	From    State
	To      State
	Changed bool
}

// Bridge is the host-side open/closed state machine. Messages from unknown
// sources never change state. The loader script mirrors these rules in the
// browser.
type Bridge struct {
	mu    sync.Mutex
	state State
}

// NewBridge starts closed.
func NewBridge() *Bridge {
	return &Bridge{state: StateClosed}
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bridge) IsOpen() bool { return b.State() == StateOpen }

func (b *Bridge) Handle(src Source, msg Message) Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	if src != SourceLauncher && src != SourceChat {
		return Transition{From: from, To: from}
	}
	switch msg.Type {
	case MessageToggle:
		if b.state == StateOpen {
			b.state = StateClosed
		} else {
			b.state = StateOpen
		}
	case MessageOpen:
		b.state = StateOpen
	case MessageClose:
		b.state = StateClosed
	}
	return Transition{From: from, To: b.state, Changed: from != b.state}
}

// FrameStyles are the visibility styles for both frames in one state.
type FrameStyles struct {
	Launcher Style `json:"launcher"`
	Chat     Style `json:"chat"`
}

var (
	shownStyle = Style{
		"opacity":        "1",
		"transform":      "none",
		"pointer-events": "auto",
	}
	hiddenLauncherStyle = Style{
		"opacity":        "0",
		"transform":      "scale(0.6)",
		"pointer-events": "none",
	}
	hiddenChatStyle = Style{
		"opacity":        "0",
		"transform":      "translateY(16px) scale(0.96)",
		"pointer-events": "none",
	}
)

// Styles returns the frame styles for a state. Exactly one frame is
// interactive in either state.
func Styles(s State) FrameStyles {
	if s == StateOpen {
		return FrameStyles{Launcher: clone(hiddenLauncherStyle), Chat: clone(shownStyle)}
	}
	return FrameStyles{Launcher: clone(shownStyle), Chat: clone(hiddenChatStyle)}
}

func clone(s Style) Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
