package widget

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	texttemplate "text/template"
)

//go:embed templates
var templateFS embed.FS

// DefaultContainerID is the element id that marks an already-mounted widget.
const DefaultContainerID = "orion-chatbot-widget"

// ChatbotIDAttribute is the script-tag attribute carrying the chatbot id.
const ChatbotIDAttribute = "data-chatbot-id"

// Loader renders the host-page script. The output depends only on the
// public base URL, so it is rendered once and reused.
type Loader struct {
	baseURL     string
	containerID string

	once sync.Once
	body []byte
	err  error
}

func NewLoader(baseURL string) *Loader {
	return &Loader{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		containerID: DefaultContainerID,
	}
}

// Script returns the rendered loader.
func (l *Loader) Script() ([]byte, error) {
	l.once.Do(func() {
		l.body, l.err = l.render()
	})
	return l.body, l.err
}

type loaderData struct {
	BaseURL       string
	ContainerID   string
	IDAttribute   string
	ConfigPath    string
	LauncherPath  string
	ChatPath      string
	Toggle        string
	Open          string
	Close         string
	TransitionMS  int64
	OpenStyles    string
	ClosedStyles  string
	InitiallyOpen bool
}

func (l *Loader) render() ([]byte, error) {
	tmpl, err := texttemplate.ParseFS(templateFS, "templates/loader.js.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse loader template: %w", err)
	}
	data := loaderData{
		BaseURL:       jsString(l.baseURL),
		ContainerID:   jsString(l.containerID),
		IDAttribute:   jsString(ChatbotIDAttribute),
		ConfigPath:    jsString("/api/widget/"),
		LauncherPath:  jsString("/launcher/"),
		ChatPath:      jsString("/widget/"),
		Toggle:        jsString(string(MessageToggle)),
		Open:          jsString(string(MessageOpen)),
		Close:         jsString(string(MessageClose)),
		TransitionMS:  TransitionDuration.Milliseconds(),
		OpenStyles:    jsValue(Styles(StateOpen)),
		ClosedStyles:  jsValue(Styles(StateClosed)),
		InitiallyOpen: NewBridge().IsOpen(),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render loader: %w", err)
	}
	return buf.Bytes(), nil
}

// jsValue marshals v as a JavaScript literal. encoding/json escapes <, >
// and & so the result is safe inside a script body.
func jsValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func jsString(s string) string { return jsValue(s) }
