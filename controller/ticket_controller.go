package controller

import (
	"net/http"
	"strings"
	"time"

	"orion-chatbot/platform/pdf"
	"orion-chatbot/store"
	"orion-chatbot/utils"
)

func (c *Controller) ListTickets(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	q := r.URL.Query()
	status := store.TicketStatus(strings.TrimSpace(q.Get("status")))
	if status != "" && !status.Valid() {
		utils.JSONErr(w, http.StatusBadRequest, "invalid status")
		return
	}
	limit, offset := pagination(r)
	tickets, err := c.repo.ListTickets(r.Context(), store.TicketFilter{
		Status:    status,
		ChatbotID: strings.TrimSpace(q.Get("chatbot_id")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		c.logRequestError(r, "list tickets query failed", err)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "tickets": tickets, "limit": limit, "offset": offset})
}

func (c *Controller) GetTicket(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "ticketID")
	t, replies, err := c.repo.GetTicket(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "ticket not found", "get ticket query failed", "ticket_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "ticket": t, "replies": replies})
}

func (c *Controller) UpdateTicketStatus(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "ticketID")
	var body struct {
		Status store.TicketStatus `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil || !body.Status.Valid() {
		utils.JSONErr(w, http.StatusBadRequest, "status must be one of open, in_progress, resolved, closed")
		return
	}
	t, err := c.repo.UpdateTicketStatus(r.Context(), id, body.Status)
	if err != nil {
		c.dbErr(w, r, err, "ticket not found", "update ticket status failed", "ticket_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "ticket": t})
}

func (c *Controller) AddTicketReply(w http.ResponseWriter, r *http.Request, claims TokenClaims) {
	id := urlParam(r, "ticketID")
	var body struct {
		Body string `json:"body"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil || strings.TrimSpace(body.Body) == "" {
		utils.JSONErr(w, http.StatusBadRequest, "body is required")
		return
	}
	reply, err := c.repo.AddTicketReply(r.Context(), store.TicketReply{
		TicketID: id,
		Author:   coalesce(claims.Email, "admin"),
		Body:     utils.Truncate(strings.TrimSpace(body.Body), 5000),
	})
	if err != nil {
		c.dbErr(w, r, err, "ticket not found", "add ticket reply failed", "ticket_id", id)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"success": true, "reply": reply})
}

func (c *Controller) DeleteTicket(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "ticketID")
	if err := c.repo.DeleteTicket(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "ticket not found", "delete ticket failed", "ticket_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true})
}

func (c *Controller) TicketTranscript(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "ticketID")
	t, replies, err := c.repo.GetTicket(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "ticket not found", "ticket transcript query failed", "ticket_id", id)
		return
	}
	doc := pdf.Transcript{
		Title: t.Subject,
		Meta: []string{
			"Ticket: " + t.ID,
			"Chatbot: " + t.ChatbotID,
			"From: " + t.Email,
			"Status: " + string(t.Status),
		},
		GeneratedAt: time.Now(),
	}
	for _, e := range store.TicketThread(t, replies) {
		doc.Entries = append(doc.Entries, pdf.Entry{Author: e.Author, At: e.CreatedAt, Body: e.Body})
	}
	c.writePDF(w, r, "ticket-"+t.ID+".pdf", doc)
}
