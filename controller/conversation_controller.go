package controller

import (
	"fmt"
	"net/http"
	"time"

	"orion-chatbot/platform/pdf"
	"orion-chatbot/store"
	"orion-chatbot/utils"
)

func (c *Controller) ListConversations(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	limit, offset := pagination(r)
	convs, err := c.repo.ListConversations(r.Context(), id, limit, offset)
	if err != nil {
		c.logRequestError(r, "list conversations query failed", err, "chatbot_id", id)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "conversations": convs, "limit": limit, "offset": offset})
}

func (c *Controller) GetConversation(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "conversationID")
	conv, msgs, err := c.repo.GetConversation(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "conversation not found", "get conversation query failed", "conversation_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "conversation": conv, "messages": msgs})
}

func (c *Controller) ConversationTranscript(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "conversationID")
	conv, msgs, err := c.repo.GetConversation(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "conversation not found", "conversation transcript query failed", "conversation_id", id)
		return
	}
	t := pdf.Transcript{
		Title: "Conversation " + conv.ID,
		Meta: []string{
			"Chatbot: " + conv.ChatbotID,
			"Visitor: " + conv.VisitorID,
			"Started: " + conv.CreatedAt.UTC().Format(time.RFC1123),
		},
		GeneratedAt: time.Now(),
	}
	for _, m := range msgs {
		author := "Visitor"
		if m.Role == store.RoleAssistant {
			author = "Assistant"
		}
		t.Entries = append(t.Entries, pdf.Entry{Author: author, At: m.CreatedAt, Body: m.Content})
	}
	c.writePDF(w, r, "conversation-"+conv.ID+".pdf", t)
}

func (c *Controller) writePDF(w http.ResponseWriter, r *http.Request, filename string, t pdf.Transcript) {
	b, err := c.pdf.Transcript(t)
	if err != nil {
		c.logRequestError(r, "transcript render failed", err, "file", filename)
		utils.JSONErr(w, http.StatusInternalServerError, "failed to render transcript")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}
