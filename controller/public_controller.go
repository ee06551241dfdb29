package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"orion-chatbot/matcher"
	"orion-chatbot/platform/llm"
	"orion-chatbot/platform/rediscache"
	"orion-chatbot/store"
	"orion-chatbot/utils"
	"orion-chatbot/widget"
)

const (
	maxChatMessageRunes = 2000
	llmReplyTimeout     = 30 * time.Second
)

// Widget event types accepted from the public events endpoint.
const (
	EventWidgetLoaded = "widget_loaded"
	EventWidgetOpen   = "widget_open"
	EventWidgetClose  = "widget_close"
	EventProductClick = "product_click"
	EventMessageSent  = "message_sent"
	EventTicketOpened = "ticket_created"
)

var visitorEvents = map[string]bool{
	EventWidgetOpen:   true,
	EventWidgetClose:  true,
	EventProductClick: true,
}

// WidgetJS serves the host-page loader. It is never cached so settings
// changes reach host pages on the next load.
func (c *Controller) WidgetJS(w http.ResponseWriter, r *http.Request) {
	body, err := c.loader.Script()
	if err != nil {
		c.logRequestError(r, "widget loader render failed", err)
		http.Error(w, "// widget unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// widgetConfig loads the public configuration of an active chatbot,
// preferring the redis copy.
func (c *Controller) widgetConfig(ctx context.Context, chatbotID string) (widget.Configuration, error) {
	if c.redis != nil {
		cached, err := c.redis.Get(ctx, rediscache.WidgetConfigKey(chatbotID)).Bytes()
		if err == nil {
			var cfg widget.Configuration
			if jsonErr := json.Unmarshal(cached, &cfg); jsonErr == nil {
				return cfg, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("widget config cache read failed", "chatbot_id", chatbotID, "error", err)
		}
	}
	bot, err := c.repo.ActiveChatbot(ctx, chatbotID)
	if err != nil {
		return widget.Configuration{}, err
	}
	cfg := bot.Widget().WithLayout()
	if c.redis != nil {
		if b, err := json.Marshal(cfg); err == nil {
			if err := c.redis.Set(ctx, rediscache.WidgetConfigKey(chatbotID), b, c.cacheTTL()).Err(); err != nil {
				c.logger.Warn("widget config cache write failed", "chatbot_id", chatbotID, "error", err)
			}
		}
	}
	return cfg, nil
}

func (c *Controller) invalidateWidgetConfig(r *http.Request, chatbotID string) {
	if c.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.redis.Del(ctx, rediscache.WidgetConfigKey(chatbotID)).Err(); err != nil {
		c.logRequestWarn(r, "widget config cache invalidation failed", err, "chatbot_id", chatbotID)
	}
}

func (c *Controller) PublicWidgetConfig(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "chatbotID")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	cfg, err := c.widgetConfig(ctx, id)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "public widget config query failed", "chatbot_id", id)
		return
	}
	c.trackEvent(r, id, EventWidgetLoaded, nil)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(cfg)
}

func (c *Controller) LauncherPage(w http.ResponseWriter, r *http.Request) {
	c.renderPage(w, r, c.pages.Launcher)
}

func (c *Controller) ChatPage(w http.ResponseWriter, r *http.Request) {
	c.renderPage(w, r, c.pages.Chat)
}

func (c *Controller) renderPage(w http.ResponseWriter, r *http.Request, render func(w io.Writer, cfg widget.Configuration) error) {
	id := urlParam(r, "chatbotID")
	cfg, err := c.widgetConfig(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "chatbot not found", http.StatusNotFound)
			return
		}
		c.logRequestError(r, "widget page config lookup failed", err, "chatbot_id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, cfg); err != nil {
		c.logRequestError(r, "widget page render failed", err, "chatbot_id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	VisitorID      string `json:"visitor_id"`
}

// PublicChat answers one visitor message and attaches matching products
// under suggested_products.
func (c *Controller) PublicChat(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "chatbotID")
	var body chatRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	message := strings.TrimSpace(body.Message)
	if message == "" {
		utils.JSONErr(w, http.StatusBadRequest, "message is required")
		return
	}
	if utf8.RuneCountInString(message) > maxChatMessageRunes {
		utils.JSONErr(w, http.StatusBadRequest, fmt.Sprintf("message must be at most %d characters", maxChatMessageRunes))
		return
	}
	bot, err := c.repo.ActiveChatbot(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "public chat chatbot lookup failed", "chatbot_id", id)
		return
	}
	conv, err := c.repo.EnsureConversation(r.Context(), bot.ID, strings.TrimSpace(body.ConversationID), strings.TrimSpace(body.VisitorID))
	if err != nil {
		c.logRequestError(r, "public chat conversation upsert failed", err, "chatbot_id", bot.ID)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}

	suggestions := []matcher.Product{}
	products, err := c.repo.ListProducts(r.Context(), bot.ID, true)
	if err != nil {
		c.logRequestWarn(r, "public chat product lookup failed", err, "chatbot_id", bot.ID)
	} else {
		suggestions = c.matcher.FindMatchingProducts(message, store.Catalog(products))
	}

	history, err := c.repo.RecentMessages(r.Context(), conv.ID, c.cfg.ChatHistoryLimit)
	if err != nil {
		c.logRequestWarn(r, "public chat history lookup failed", err, "conversation_id", conv.ID)
	}
	reply := c.generateReply(r, bot, history, message, suggestions)

	meta, _ := json.Marshal(map[string]interface{}{"suggested_products": productIDs(suggestions)})
	if err := c.repo.AppendMessages(r.Context(), conv.ID,
		store.Message{Role: store.RoleUser, Content: message},
		store.Message{Role: store.RoleAssistant, Content: reply, Metadata: meta},
	); err != nil {
		c.logRequestWarn(r, "public chat message insert failed", err, "conversation_id", conv.ID)
	}
	c.trackEvent(r, bot.ID, EventMessageSent, map[string]interface{}{"conversation_id": conv.ID, "suggestions": len(suggestions)})

	utils.JSONOK(w, map[string]interface{}{
		"success":            true,
		"conversation_id":    conv.ID,
		"visitor_id":         conv.VisitorID,
		"reply":              reply,
		"suggested_products": suggestions,
	})
}

func (c *Controller) generateReply(r *http.Request, bot store.Chatbot, history []store.Message, message string, suggestions []matcher.Product) string {
	prompt := coalesce(bot.SystemPrompt, c.cfg.SystemPrompt)
	if len(suggestions) > 0 {
		var b strings.Builder
		b.WriteString(prompt)
		b.WriteString("\n\nProducts shown to the visitor next to your reply:\n")
		for _, p := range suggestions {
			fmt.Fprintf(&b, "- %s (%.0f)\n", p.Name, p.Price)
		}
		prompt = strings.TrimSpace(b.String())
	}
	turns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}
	ctx, cancel := context.WithTimeout(r.Context(), llmReplyTimeout)
	defer cancel()
	reply, err := c.llm.Generate(ctx, llm.Conversation(prompt, turns, message, c.cfg.ChatHistoryLimit))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err == nil {
			err = errors.New("empty reply")
		}
		c.logRequestWarn(r, "public chat reply generation failed", err, "chatbot_id", bot.ID)
		return llm.FallbackReply
	}
	return reply
}

func productIDs(products []matcher.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func (c *Controller) PublicTicket(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "chatbotID")
	var body struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Subject        string `json:"subject"`
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	email := utils.NormalizeEmail(body.Email)
	if !utils.ValidateEmail(email) {
		utils.JSONErr(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if strings.TrimSpace(body.Subject) == "" || strings.TrimSpace(body.Message) == "" {
		utils.JSONErr(w, http.StatusBadRequest, "subject and message are required")
		return
	}
	bot, err := c.repo.ActiveChatbot(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "public ticket chatbot lookup failed", "chatbot_id", id)
		return
	}
	t := store.Ticket{
		ChatbotID: bot.ID,
		Name:      utils.Truncate(strings.TrimSpace(body.Name), 200),
		Email:     email,
		Subject:   utils.Truncate(strings.TrimSpace(body.Subject), 200),
		Message:   utils.Truncate(strings.TrimSpace(body.Message), 5000),
	}
	if conv := strings.TrimSpace(body.ConversationID); conv != "" {
		t.ConversationID = &conv
	}
	ticket, err := c.repo.CreateTicket(r.Context(), t)
	if err != nil {
		c.logRequestError(r, "public ticket insert failed", err, "chatbot_id", bot.ID)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	c.trackEvent(r, bot.ID, EventTicketOpened, map[string]interface{}{"ticket_id": ticket.ID})
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"success": true, "ticket": map[string]interface{}{
		"id": ticket.ID, "status": ticket.Status, "created_at": ticket.CreatedAt,
	}})
}

func (c *Controller) PublicEvent(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "chatbotID")
	var body struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !visitorEvents[body.Type] {
		utils.JSONErr(w, http.StatusBadRequest, "unsupported event type")
		return
	}
	if len(body.Data) > 20 {
		utils.JSONErr(w, http.StatusBadRequest, "too many event attributes")
		return
	}
	if _, err := c.widgetConfig(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "chatbot not found", "public event chatbot lookup failed", "chatbot_id", id)
		return
	}
	c.trackEvent(r, id, body.Type, body.Data)
	utils.JSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
}

// trackEvent buffers an analytics event in redis for the flush worker, or
// writes it directly when redis is not configured.
func (c *Controller) trackEvent(r *http.Request, chatbotID, eventType string, data map[string]interface{}) {
	evt := store.Event{
		ChatbotID: chatbotID,
		Type:      eventType,
		Data:      data,
		IP:        utils.ClientIP(r),
		UserAgent: utils.Truncate(r.UserAgent(), 512),
		Referer:   utils.Truncate(r.Referer(), 2048),
	}
	if c.redis == nil {
		if err := c.repo.InsertEvent(r.Context(), evt); err != nil {
			c.logRequestWarn(r, "analytics event insert failed", err, "chatbot_id", chatbotID, "event_type", eventType)
		}
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		c.logRequestWarn(r, "analytics event encode failed", err, "event_type", eventType)
		return
	}
	if err := c.redis.LPush(r.Context(), rediscache.AnalyticsBufferKey, b).Err(); err != nil {
		c.logRequestWarn(r, "analytics event buffer failed", err, "chatbot_id", chatbotID, "event_type", eventType)
	}
}
