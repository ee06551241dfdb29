package store

import (
	"encoding/json"
	"time"

	"orion-chatbot/matcher"
	"orion-chatbot/widget"
)

type Chatbot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	SystemPrompt string    `json:"system_prompt"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Settings is the admin-editable widget appearance of one chatbot.
type Settings struct {
	Position       widget.Position `json:"position"`
	MarginX        int             `json:"margin_x"`
	MarginY        int             `json:"margin_y"`
	PrimaryColor   string          `json:"primary_color"`
	ChatIcon       string          `json:"chat_icon"`
	BotName        string          `json:"bot_name"`
	WelcomeMessage string          `json:"welcome_message"`
}

// DefaultSettings mirrors the column defaults.
func DefaultSettings() Settings {
	return Settings{
		Position:     widget.DefaultPosition,
		MarginX:      widget.DefaultMargin,
		MarginY:      widget.DefaultMargin,
		PrimaryColor: widget.DefaultPrimaryColor,
		ChatIcon:     widget.DefaultChatIcon,
	}
}

// Widget returns the public configuration served to the loader.
func (b Chatbot) Widget() widget.Configuration {
	return widget.Configuration{
		ID:             b.ID,
		Position:       b.Settings.Position,
		MarginX:        b.Settings.MarginX,
		MarginY:        b.Settings.MarginY,
		PrimaryColor:   b.Settings.PrimaryColor,
		ChatIcon:       b.Settings.ChatIcon,
		BotName:        b.Settings.BotName,
		WelcomeMessage: b.Settings.WelcomeMessage,
	}.Normalize()
}

type Product struct {
	ID          string    `json:"id"`
	ChatbotID   string    `json:"chatbot_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Link        string    `json:"link"`
	CTALabel    string    `json:"cta_label"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Catalog converts products to matcher entries, keeping order.
func Catalog(products []Product) []matcher.Product {
	out := make([]matcher.Product, 0, len(products))
	for _, p := range products {
		out = append(out, matcher.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Link:        p.Link,
			CTALabel:    p.CTALabel,
		})
	}
	return out
}

type Conversation struct {
	ID                 string     `json:"id"`
	ChatbotID          string     `json:"chatbot_id"`
	VisitorID          string     `json:"visitor_id"`
	MessageCount       int        `json:"message_count"`
	LastMessagePreview string     `json:"last_message_preview"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             int64           `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Metadata       json.RawMessage `json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
}

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

type Ticket struct {
	ID             string       `json:"id"`
	ChatbotID      string       `json:"chatbot_id"`
	ConversationID *string      `json:"conversation_id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Subject        string       `json:"subject"`
	Message        string       `json:"message"`
	Status         TicketStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type TicketReply struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketFilter struct {
	Status    TicketStatus
	ChatbotID string
	Limit     int
	Offset    int
}

// Event is one widget analytics record, as buffered in redis.
type Event struct {
	ChatbotID string         `json:"chatbot_id"`
	Type      string         `json:"event_type"`
	Data      map[string]any `json:"event_data"`
	IP        string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	Referer   string         `json:"referer_url"`
}

type Analytics struct {
	ChatbotID       string           `json:"chatbot_id,omitempty"`
	Days            int              `json:"days"`
	Conversations   int64            `json:"conversations"`
	Messages        int64            `json:"messages"`
	TicketsByStatus map[string]int64 `json:"tickets_by_status"`
	EventsByType    map[string]int64 `json:"events_by_type"`
}
