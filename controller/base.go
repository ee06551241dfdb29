package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"orion-chatbot/config"
	"orion-chatbot/matcher"
	"orion-chatbot/platform/llm"
	"orion-chatbot/platform/pdf"
	"orion-chatbot/store"
	"orion-chatbot/utils"
	"orion-chatbot/widget"
)

// Repository is the persistence surface the handlers need. *store.Store
// implements it.
type Repository interface {
	Ping(ctx context.Context) error

	ListChatbots(ctx context.Context) ([]store.Chatbot, error)
	GetChatbot(ctx context.Context, id string) (store.Chatbot, error)
	ActiveChatbot(ctx context.Context, id string) (store.Chatbot, error)
	CreateChatbot(ctx context.Context, b store.Chatbot) (store.Chatbot, error)
	UpdateChatbot(ctx context.Context, id, name string, isActive bool, systemPrompt string) (store.Chatbot, error)
	UpdateSettings(ctx context.Context, id string, st store.Settings) (store.Chatbot, error)
	DeleteChatbot(ctx context.Context, id string) error

	ListProducts(ctx context.Context, chatbotID string, activeOnly bool) ([]store.Product, error)
	GetProduct(ctx context.Context, id string) (store.Product, error)
	CreateProduct(ctx context.Context, p store.Product) (store.Product, error)
	UpdateProduct(ctx context.Context, p store.Product) (store.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	EnsureConversation(ctx context.Context, chatbotID, conversationID, visitorID string) (store.Conversation, error)
	AppendMessages(ctx context.Context, conversationID string, msgs ...store.Message) error
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]store.Message, error)
	ListConversations(ctx context.Context, chatbotID string, limit, offset int) ([]store.Conversation, error)
	GetConversation(ctx context.Context, id string) (store.Conversation, []store.Message, error)

	CreateTicket(ctx context.Context, t store.Ticket) (store.Ticket, error)
	ListTickets(ctx context.Context, f store.TicketFilter) ([]store.Ticket, error)
	GetTicket(ctx context.Context, id string) (store.Ticket, []store.TicketReply, error)
	UpdateTicketStatus(ctx context.Context, id string, status store.TicketStatus) (store.Ticket, error)
	AddTicketReply(ctx context.Context, r store.TicketReply) (store.TicketReply, error)
	DeleteTicket(ctx context.Context, id string) error

	InsertEvent(ctx context.Context, e store.Event) error
	PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error)
	Analytics(ctx context.Context, chatbotID string, days int) (store.Analytics, error)
	Totals(ctx context.Context) (store.Totals, error)

	CreateAdminSession(ctx context.Context, email, tokenHash string, expiresAt time.Time, ip, userAgent string) (int64, error)
	AdminSessionActive(ctx context.Context, tokenHash string) (bool, error)
	RevokeAdminSession(ctx context.Context, tokenHash string) error
	RevokeExpiredAdminSessions(ctx context.Context) (int64, error)
}

// Controller holds all dependencies for request handlers.
type Controller struct {
	cfg    config.Config
	repo   Repository
	redis  *redis.Client
	logger *slog.Logger

	matcher *matcher.Matcher
	llm     llm.Client
	pdf     pdf.Generator
	loader  *widget.Loader
	pages   *widget.Pages
}

// New wires the handlers. redisClient may be nil, in which case caching is
// skipped, analytics events are written straight to the database and CSRF
// validation fails closed.
func New(cfg config.Config, repo Repository, redisClient *redis.Client, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		cfg:    cfg,
		repo:   repo,
		redis:  redisClient,
		logger: logger,
		llm: llm.NewClient(llm.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
		}),
		pdf:    pdf.New(cfg.PDFFontPath),
		loader: widget.NewLoader(cfg.PublicBaseURL),
		pages:  widget.NewPages(cfg.PublicBaseURL),
	}

	tables := matcher.DefaultKeywordTables()
	if path := strings.TrimSpace(cfg.KeywordTablesPath); path != "" {
		loaded, err := matcher.LoadKeywordTables(path)
		if err != nil {
			logger.Warn("keyword tables could not be loaded, using defaults", "path", path, "error", err)
		} else {
			tables = loaded
		}
	}
	c.matcher = matcher.New(tables, matcher.Weights{})
	return c
}

const adminTokenType = "admin"

// TokenClaims holds the JWT payload of an admin session.
type TokenClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

func (c *Controller) cacheTTL() time.Duration {
	if c.cfg.WidgetConfigCacheSec <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.cfg.WidgetConfigCacheSec) * time.Second
}

// dbErr maps a repository error to a response. Not-found becomes 404 with
// notFoundMsg; anything else is logged and becomes a 500.
func (c *Controller) dbErr(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, logMsg string, attrs ...any) {
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONErr(w, http.StatusNotFound, notFoundMsg)
		return
	}
	c.logRequestError(r, logMsg, err, attrs...)
	utils.JSONErr(w, http.StatusInternalServerError, "db error")
}

func queryInt(r *http.Request, key string, fallback, min, max int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

func pagination(r *http.Request) (limit, offset int) {
	return queryInt(r, "limit", 50, 1, 200), queryInt(r, "offset", 0, 0, 1_000_000)
}

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func coalesce(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
