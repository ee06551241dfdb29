package app

import (
	"time"

	"github.com/go-chi/chi/v5"

	"orion-chatbot/middleware"
)

func (a *App) registerRoutes(r chi.Router) {
	// Health / readiness
	r.Get("/health", a.ctrl.Health)
	r.Get("/health/detailed", a.ctrl.HealthDetailed)
	r.Get("/ready", a.ctrl.Ready)
	r.Get("/live", a.ctrl.Live)
	r.Get("/metrics", a.ctrl.Metrics)

	// Widget surface embedded in host pages
	r.Group(a.mapWidgetAssets)
	r.Route("/api/widget/{chatbotID}", a.mapPublicWidgetRoutes)

	r.Route("/api/admin", a.mapAdminRoutes)
}

func (a *App) mapWidgetAssets(r chi.Router) {
	r.Use(middleware.WithRateLimit(a.cfg.PublicRateLimitPerMinute, time.Minute, a.logger))
	r.Get("/widget.js", a.ctrl.WidgetJS)
	r.Get("/embed.js", a.ctrl.WidgetJS)
	r.Get("/launcher/{chatbotID}", a.ctrl.LauncherPage)
	r.Get("/widget/{chatbotID}", a.ctrl.ChatPage)
}

// Public widget API (no auth, per-IP limits)
func (a *App) mapPublicWidgetRoutes(r chi.Router) {
	r.Use(middleware.WithRateLimit(a.cfg.PublicRateLimitPerMinute, time.Minute, a.logger))
	r.Get("/config", a.ctrl.PublicWidgetConfig)
	r.Post("/events", a.ctrl.PublicEvent)
	r.Post("/tickets", a.ctrl.PublicTicket)
	r.With(middleware.WithRateLimit(a.cfg.ChatRateLimitPerMinute, time.Minute, a.logger)).Post("/chat", a.ctrl.PublicChat)
}

// Admin panel
func (a *App) mapAdminRoutes(r chi.Router) {
	r.Get("/csrf-token", a.ctrl.GetCSRFToken)
	r.With(middleware.WithRateLimit(10, time.Minute, a.logger)).Post("/login", a.ctrl.AdminLogin)
	r.Post("/logout", a.auth(a.ctrl.AdminLogout))
	r.Get("/me", a.auth(a.ctrl.AdminMe))

	r.Get("/chatbots", a.auth(a.ctrl.ListChatbots))
	r.Post("/chatbots", a.auth(a.ctrl.CreateChatbot))
	r.Get("/chatbots/{id}", a.auth(a.ctrl.GetChatbot))
	r.Put("/chatbots/{id}", a.auth(a.ctrl.UpdateChatbot))
	r.Delete("/chatbots/{id}", a.auth(a.ctrl.DeleteChatbot))
	r.Get("/chatbots/{id}/settings", a.auth(a.ctrl.GetChatbotSettings))
	r.Put("/chatbots/{id}/settings", a.auth(a.ctrl.UpdateChatbotSettings))
	r.Get("/chatbots/{id}/embed-code", a.auth(a.ctrl.ChatbotEmbedCode))

	r.Get("/chatbots/{id}/products", a.auth(a.ctrl.ListProducts))
	r.Post("/chatbots/{id}/products", a.auth(a.ctrl.CreateProduct))
	r.Post("/chatbots/{id}/products/match", a.auth(a.ctrl.MatchProducts))
	r.Put("/products/{productID}", a.auth(a.ctrl.UpdateProduct))
	r.Delete("/products/{productID}", a.auth(a.ctrl.DeleteProduct))

	r.Get("/chatbots/{id}/conversations", a.auth(a.ctrl.ListConversations))
	r.Get("/conversations/{conversationID}", a.auth(a.ctrl.GetConversation))
	r.Get("/conversations/{conversationID}/transcript.pdf", a.auth(a.ctrl.ConversationTranscript))

	r.Get("/tickets", a.auth(a.ctrl.ListTickets))
	r.Get("/tickets/{ticketID}", a.auth(a.ctrl.GetTicket))
	r.Patch("/tickets/{ticketID}/status", a.auth(a.ctrl.UpdateTicketStatus))
	r.Post("/tickets/{ticketID}/replies", a.auth(a.ctrl.AddTicketReply))
	r.Delete("/tickets/{ticketID}", a.auth(a.ctrl.DeleteTicket))
	r.Get("/tickets/{ticketID}/transcript.pdf", a.auth(a.ctrl.TicketTranscript))

	r.Get("/analytics", a.auth(a.ctrl.Analytics))
}
