package controller

import (
	"net/http"
	"strings"

	"orion-chatbot/utils"
)

func (c *Controller) Analytics(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	chatbotID := strings.TrimSpace(r.URL.Query().Get("chatbot_id"))
	days := queryInt(r, "days", 30, 1, 365)
	summary, err := c.repo.Analytics(r.Context(), chatbotID, days)
	if err != nil {
		c.logRequestError(r, "analytics query failed", err, "chatbot_id", chatbotID, "days", days)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "analytics": summary})
}
