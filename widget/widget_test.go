package widget

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		raw     string
		want    Position
		wantErr bool
	}{
		{"bottom-right", BottomRight, false},
		{" Top-Left ", TopLeft, false},
		{"top-right", TopRight, false},
		{"bottom-left", BottomLeft, false},
		{"", "", true},
		{"middle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePosition(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPosition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfiguration_Normalize(t *testing.T) {
	cfg := Configuration{Position: "nowhere", MarginX: -5, MarginY: 999, PrimaryColor: "red", ChatIcon: "  "}.Normalize()
	assert.Equal(t, BottomRight, cfg.Position)
	assert.Equal(t, 0, cfg.MarginX)
	assert.Equal(t, MaxMargin, cfg.MarginY)
	assert.Equal(t, DefaultPrimaryColor, cfg.PrimaryColor)
	assert.Equal(t, DefaultChatIcon, cfg.ChatIcon)

	kept := Configuration{Position: TopLeft, MarginX: 12, MarginY: 30, PrimaryColor: "#0af", ChatIcon: "🤖"}.Normalize()
	assert.Equal(t, TopLeft, kept.Position)
	assert.Equal(t, 12, kept.MarginX)
	assert.Equal(t, "#0af", kept.PrimaryColor)
	assert.Equal(t, "🤖", kept.ChatIcon)
}

func TestConfiguration_IconIsURL(t *testing.T) {
	assert.True(t, Configuration{ChatIcon: "https://cdn.example.com/i.png"}.IconIsURL())
	assert.True(t, Configuration{ChatIcon: "/static/icon.svg"}.IconIsURL())
	assert.False(t, Configuration{ChatIcon: "💬"}.IconIsURL())
}

func TestComputeLayout_BottomRightUsesMargins(t *testing.T) {
	for _, m := range []struct{ x, y int }{{20, 20}, {0, 45}, {200, 7}} {
		l := ComputeLayout(Configuration{Position: BottomRight, MarginX: m.x, MarginY: m.y})
		assert.Equal(t, px(m.x), l.Container["right"])
		assert.Equal(t, px(m.y), l.Container["bottom"])
		_, hasLeft := l.Container["left"]
		_, hasTop := l.Container["top"]
		assert.False(t, hasLeft)
		assert.False(t, hasTop)
	}
}

func TestComputeLayout_Corners(t *testing.T) {
	tests := []struct {
		pos        Position
		set, unset []string
	}{
		{BottomLeft, []string{"bottom", "left"}, []string{"top", "right"}},
		{TopRight, []string{"top", "right"}, []string{"bottom", "left"}},
		{TopLeft, []string{"top", "left"}, []string{"bottom", "right"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			l := ComputeLayout(Configuration{Position: tt.pos, MarginX: 10, MarginY: 10})
			for _, edge := range tt.set {
				assert.Equal(t, "10px", l.Container[edge])
				assert.Contains(t, l.Chat, edge)
			}
			for _, edge := range tt.unset {
				assert.NotContains(t, l.Container, edge)
				assert.NotContains(t, l.Chat, edge)
			}
		})
	}
}

func TestComputeLayout_Frames(t *testing.T) {
	l := ComputeLayout(Configuration{Position: TopLeft, MarginX: 24, MarginY: 16})

	assert.Equal(t, "60px", l.Launcher["width"])
	assert.Equal(t, "60px", l.Launcher["height"])
	assert.Equal(t, "50%", l.Launcher["border-radius"])

	assert.Equal(t, "380px", l.Chat["width"])
	assert.Equal(t, "600px", l.Chat["height"])
	assert.Equal(t, "calc(100vw - 48px)", l.Chat["max-width"])
	assert.Equal(t, "calc(100vh - 108px)", l.Chat["max-height"])
	// opens below a top launcher
	assert.Equal(t, "76px", l.Chat["top"])
}

func TestConfiguration_WithLayout(t *testing.T) {
	cfg := Configuration{ID: "bot1", Position: "bogus"}.WithLayout()
	require.NotNil(t, cfg.Layout)
	assert.Equal(t, BottomRight, cfg.Position)
	assert.Equal(t, "0", cfg.Layout.Container["right"])
}

func TestParseMessage(t *testing.T) {
	for _, raw := range []string{`{"type":"toggle"}`, `{"type":"open"}`, `{"type":"close","extra":1}`} {
		_, err := ParseMessage([]byte(raw))
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{`{"type":"resize"}`, `{}`, `"toggle"`, `not json`} {
		_, err := ParseMessage([]byte(raw))
		assert.ErrorIs(t, err, ErrUnknownMessage, raw)
	}
}

func TestBridge_ToggleTwiceRestoresState(t *testing.T) {
	for _, src := range []Source{SourceLauncher, SourceChat} {
		b := NewBridge()
		initial := b.State()
		first := b.Handle(src, Message{Type: MessageToggle})
		assert.True(t, first.Changed)
		assert.Equal(t, StateOpen, first.To)
		b.Handle(src, Message{Type: MessageToggle})
		assert.Equal(t, initial, b.State())
	}
}

func TestBridge_UnknownSourceIgnored(t *testing.T) {
	b := NewBridge()
	for _, typ := range []MessageType{MessageToggle, MessageOpen, MessageClose} {
		tr := b.Handle(SourceUnknown, Message{Type: typ})
		assert.False(t, tr.Changed)
		assert.False(t, b.IsOpen())
	}

	b.Handle(SourceChat, Message{Type: MessageOpen})
	tr := b.Handle(SourceUnknown, Message{Type: MessageClose})
	assert.False(t, tr.Changed)
	assert.True(t, b.IsOpen())
}

func TestBridge_OpenCloseForce(t *testing.T) {
	b := NewBridge()
	assert.False(t, b.Handle(SourceChat, Message{Type: MessageClose}).Changed)
	assert.True(t, b.Handle(SourceLauncher, Message{Type: MessageOpen}).Changed)
	assert.False(t, b.Handle(SourceLauncher, Message{Type: MessageOpen}).Changed)
	assert.True(t, b.Handle(SourceChat, Message{Type: MessageClose}).Changed)
	assert.Equal(t, "closed", b.State().String())
}

func TestStyles_ExactlyOneFrameInteractive(t *testing.T) {
	closed := Styles(StateClosed)
	assert.Equal(t, "auto", closed.Launcher["pointer-events"])
	assert.Equal(t, "none", closed.Chat["pointer-events"])
	assert.Equal(t, "0", closed.Chat["opacity"])

	open := Styles(StateOpen)
	assert.Equal(t, "none", open.Launcher["pointer-events"])
	assert.Equal(t, "auto", open.Chat["pointer-events"])
	assert.Equal(t, "1", open.Chat["opacity"])

	// callers may mutate the result freely
	open.Chat["opacity"] = "0.5"
	assert.Equal(t, "1", Styles(StateOpen).Chat["opacity"])
}

func TestLoader_Script(t *testing.T) {
	l := NewLoader("https://chat.example.com/")
	body, err := l.Script()
	require.NoError(t, err)
	js := string(body)

	assert.Contains(t, js, `var BASE_URL = "https://chat.example.com";`)
	assert.Contains(t, js, `var CONTAINER_ID = "`+DefaultContainerID+`";`)
	assert.Contains(t, js, `var TOGGLE = "toggle";`)
	assert.Contains(t, js, `var TRANSITION_MS = 250;`)
	assert.Contains(t, js, `isOpen: false`)
	assert.Contains(t, js, `"pointer-events":"none"`)
	assert.NotContains(t, js, "{{")

	again, err := l.Script()
	require.NoError(t, err)
	assert.Equal(t, body, again)
}

func TestLoader_GuardsAgainstDoubleMount(t *testing.T) {
	body, err := NewLoader("").Script()
	require.NoError(t, err)
	js := string(body)

	start := strings.Index(js, "function start()")
	fetchAt := strings.Index(js, "fetch(BASE_URL + CONFIG_PATH")
	require.Positive(t, start)
	require.Positive(t, fetchAt)

	guard := js[start:fetchAt]
	// the one-shot flag and the DOM check both run before any network or DOM work
	assert.Contains(t, guard, "if (widget.started)")
	assert.Contains(t, guard, "document.getElementById(CONTAINER_ID)")
	assert.Less(t, strings.Index(guard, "document.getElementById(CONTAINER_ID)"), strings.Index(guard, "resolveChatbotId()"))
}

func TestPages_Render(t *testing.T) {
	p := NewPages("https://chat.example.com")
	cfg := Configuration{ID: "bot_1", BotName: "<b>Shop</b>", PrimaryColor: "#112233", WelcomeMessage: "سلام!"}

	var launcher bytes.Buffer
	require.NoError(t, p.Launcher(&launcher, cfg))
	assert.Contains(t, launcher.String(), "#112233")
	assert.Contains(t, launcher.String(), DefaultChatIcon)
	assert.Contains(t, launcher.String(), `var TOGGLE = "toggle";`)
	assert.NotContains(t, launcher.String(), "<b>Shop</b>")

	var chat bytes.Buffer
	require.NoError(t, p.Chat(&chat, cfg))
	assert.Contains(t, chat.String(), `var CLOSE = "close";`)
	assert.Contains(t, chat.String(), `var CHATBOT_ID = "bot_1";`)
	assert.Contains(t, chat.String(), "&lt;b&gt;Shop&lt;/b&gt;")
}

func TestPages_ImageIcon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPages("").Launcher(&buf, Configuration{ID: "x", ChatIcon: "https://cdn.example.com/i.png"}))
	assert.Contains(t, buf.String(), `<img src="https://cdn.example.com/i.png"`)
}

func TestEmbedSnippets(t *testing.T) {
	snippets := EmbedSnippets("https://chat.example.com/", "bot_42")
	require.Len(t, snippets, 5)

	var frameworks []string
	for _, s := range snippets {
		frameworks = append(frameworks, s.Framework)
		assert.Contains(t, s.Code, "https://chat.example.com/widget.js", s.Framework)
		assert.Contains(t, s.Code, "bot_42", s.Framework)
		assert.Contains(t, s.Code, ChatbotIDAttribute, s.Framework)
	}
	assert.Equal(t, []string{"html", "react", "vue", "nextjs", "wordpress"}, frameworks)
}
