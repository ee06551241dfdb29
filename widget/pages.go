package widget

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
)

// Pages renders the documents loaded inside the launcher and chat frames.
type Pages struct {
	baseURL string

	once sync.Once
	tmpl *template.Template
	err  error
}

func NewPages(baseURL string) *Pages {
	return &Pages{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

type pageData struct {
	ChatbotID   string
	BaseURL     string
	Config      Configuration
	Toggle      string
	Close       string
	Placeholder string
}

func (p *Pages) templates() (*template.Template, error) {
	p.once.Do(func() {
		p.tmpl, p.err = template.ParseFS(templateFS, "templates/launcher.html.tmpl", "templates/chat.html.tmpl")
		if p.err != nil {
			p.err = fmt.Errorf("parse page templates: %w", p.err)
		}
	})
	return p.tmpl, p.err
}

// Launcher writes the launcher button document.
func (p *Pages) Launcher(w io.Writer, cfg Configuration) error {
	return p.render(w, "launcher.html.tmpl", cfg)
}

// Chat writes the chat panel document.
func (p *Pages) Chat(w io.Writer, cfg Configuration) error {
	return p.render(w, "chat.html.tmpl", cfg)
}

func (p *Pages) render(w io.Writer, name string, cfg Configuration) error {
	tmpl, err := p.templates()
	if err != nil {
		return err
	}
	cfg = cfg.Normalize()
	data := pageData{
		ChatbotID:   cfg.ID,
		BaseURL:     p.baseURL,
		Config:      cfg,
		Toggle:      string(MessageToggle),
		Close:       string(MessageClose),
		Placeholder: "پیام خود را بنویسید...",
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
