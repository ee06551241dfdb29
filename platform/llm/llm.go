package llm

import (
	"context"
	"strings"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Client produces one assistant reply for a conversation.
type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient returns an OpenAI-backed client when an API key is configured and
// the canned fallback otherwise.
func NewClient(opts Options) Client {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Fallback{}
	}
	return NewOpenAIClient(opts)
}

// Conversation builds the message list sent for one visitor turn. History is
// oldest first and is trimmed to the most recent maxHistory entries.
func Conversation(systemPrompt string, history []Message, userMessage string, maxHistory int) []Message {
	if maxHistory > 0 && len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	out := make([]Message, 0, len(history)+2)
	if p := strings.TrimSpace(systemPrompt); p != "" {
		out = append(out, Message{Role: RoleSystem, Content: p})
	}
	out = append(out, history...)
	out = append(out, Message{Role: RoleUser, Content: userMessage})
	return out
}
