package controller

import (
	"net/http"
	"regexp"
	"strings"

	"orion-chatbot/store"
	"orion-chatbot/utils"
	"orion-chatbot/widget"
)

var chatbotIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type chatbotPayload struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	IsActive     *bool           `json:"is_active"`
	SystemPrompt *string         `json:"system_prompt"`
	Settings     *store.Settings `json:"settings"`
}

func (c *Controller) ListChatbots(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	bots, err := c.repo.ListChatbots(r.Context())
	if err != nil {
		c.logRequestError(r, "list chatbots query failed", err)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "chatbots": bots})
}

func (c *Controller) CreateChatbot(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	var body chatbotPayload
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		utils.JSONErr(w, http.StatusBadRequest, "name is required")
		return
	}
	id := strings.TrimSpace(body.ID)
	if id != "" && !chatbotIDPattern.MatchString(id) {
		utils.JSONErr(w, http.StatusBadRequest, "id may only contain letters, digits, '-' and '_' (max 64)")
		return
	}
	settings := store.DefaultSettings()
	if body.Settings != nil {
		var err error
		if settings, err = validateSettings(*body.Settings); err != nil {
			utils.JSONErr(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	prompt := ""
	if body.SystemPrompt != nil {
		prompt = strings.TrimSpace(*body.SystemPrompt)
	}
	bot, err := c.repo.CreateChatbot(r.Context(), store.Chatbot{
		ID:           id,
		Name:         name,
		IsActive:     active,
		SystemPrompt: prompt,
		Settings:     settings,
	})
	if err != nil {
		c.logRequestError(r, "create chatbot insert failed", err, "chatbot_id", id)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"success": true, "chatbot": bot})
}

func (c *Controller) GetChatbot(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	bot, err := c.repo.GetChatbot(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "get chatbot query failed", "chatbot_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "chatbot": bot})
}

func (c *Controller) UpdateChatbot(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	var body chatbotPayload
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	current, err := c.repo.GetChatbot(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "update chatbot lookup failed", "chatbot_id", id)
		return
	}
	// Omitted fields keep their stored values; an explicit "" clears the prompt.
	active := current.IsActive
	if body.IsActive != nil {
		active = *body.IsActive
	}
	prompt := current.SystemPrompt
	if body.SystemPrompt != nil {
		prompt = strings.TrimSpace(*body.SystemPrompt)
	}
	bot, err := c.repo.UpdateChatbot(r.Context(), id, coalesce(strings.TrimSpace(body.Name), current.Name), active, prompt)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "update chatbot failed", "chatbot_id", id)
		return
	}
	c.invalidateWidgetConfig(r, id)
	utils.JSONOK(w, map[string]interface{}{"success": true, "chatbot": bot})
}

func (c *Controller) DeleteChatbot(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	if err := c.repo.DeleteChatbot(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "chatbot not found", "delete chatbot failed", "chatbot_id", id)
		return
	}
	c.invalidateWidgetConfig(r, id)
	utils.JSONOK(w, map[string]interface{}{"success": true})
}

func (c *Controller) GetChatbotSettings(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	bot, err := c.repo.GetChatbot(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "get chatbot settings query failed", "chatbot_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "settings": bot.Settings, "preview": bot.Widget().WithLayout()})
}

func (c *Controller) UpdateChatbotSettings(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	var body store.Settings
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	settings, err := validateSettings(body)
	if err != nil {
		utils.JSONErr(w, http.StatusBadRequest, err.Error())
		return
	}
	bot, err := c.repo.UpdateSettings(r.Context(), id, settings)
	if err != nil {
		c.dbErr(w, r, err, "chatbot not found", "update chatbot settings failed", "chatbot_id", id)
		return
	}
	c.invalidateWidgetConfig(r, id)
	utils.JSONOK(w, map[string]interface{}{"success": true, "settings": bot.Settings, "preview": bot.Widget().WithLayout()})
}

// validateSettings rejects an unknown position and normalises everything
// else the way the widget would.
func validateSettings(in store.Settings) (store.Settings, error) {
	pos := widget.DefaultPosition
	if strings.TrimSpace(string(in.Position)) != "" {
		p, err := widget.ParsePosition(string(in.Position))
		if err != nil {
			return store.Settings{}, err
		}
		pos = p
	}
	cfg := widget.Configuration{
		Position:       pos,
		MarginX:        in.MarginX,
		MarginY:        in.MarginY,
		PrimaryColor:   in.PrimaryColor,
		ChatIcon:       in.ChatIcon,
		BotName:        in.BotName,
		WelcomeMessage: in.WelcomeMessage,
	}.Normalize()
	return store.Settings{
		Position:       cfg.Position,
		MarginX:        cfg.MarginX,
		MarginY:        cfg.MarginY,
		PrimaryColor:   cfg.PrimaryColor,
		ChatIcon:       cfg.ChatIcon,
		BotName:        utils.Truncate(strings.TrimSpace(cfg.BotName), 80),
		WelcomeMessage: utils.Truncate(strings.TrimSpace(cfg.WelcomeMessage), 500),
	}, nil
}

func (c *Controller) ChatbotEmbedCode(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	if _, err := c.repo.GetChatbot(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "chatbot not found", "embed code chatbot lookup failed", "chatbot_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "snippets": widget.EmbedSnippets(c.cfg.PublicBaseURL, id)})
}
