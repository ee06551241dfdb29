package controller

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"orion-chatbot/store"
	"orion-chatbot/utils"
)

type productPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    string   `json:"image_url"`
	Link        string   `json:"link"`
	CTALabel    string   `json:"cta_label"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   *int     `json:"sort_order"`
}

// apply copies the payload onto p. Pointer fields left nil keep p's value.
func (b productPayload) apply(p store.Product) (store.Product, error) {
	if name := strings.TrimSpace(b.Name); name != "" {
		p.Name = utils.Truncate(name, 200)
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	p.Description = utils.Truncate(strings.TrimSpace(b.Description), 4000)
	if b.Price != nil {
		if *b.Price < 0 || math.IsNaN(*b.Price) || math.IsInf(*b.Price, 0) {
			return p, errors.New("price must be a non-negative number")
		}
		p.Price = *b.Price
	}
	for _, u := range []string{b.ImageURL, b.Link} {
		if strings.TrimSpace(u) != "" && !utils.ValidateURL(u) {
			return p, errors.New("image_url and link must be http(s) URLs")
		}
	}
	p.ImageURL = strings.TrimSpace(b.ImageURL)
	p.Link = strings.TrimSpace(b.Link)
	p.CTALabel = utils.Truncate(strings.TrimSpace(b.CTALabel), 40)
	if b.IsActive != nil {
		p.IsActive = *b.IsActive
	}
	if b.SortOrder != nil {
		p.SortOrder = *b.SortOrder
	}
	return p, nil
}

func (c *Controller) ListProducts(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	if _, err := c.repo.GetChatbot(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "chatbot not found", "list products chatbot lookup failed", "chatbot_id", id)
		return
	}
	products, err := c.repo.ListProducts(r.Context(), id, r.URL.Query().Get("active") == "true")
	if err != nil {
		c.logRequestError(r, "list products query failed", err, "chatbot_id", id)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "products": products})
}

func (c *Controller) CreateProduct(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	var body productPayload
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p, err := body.apply(store.Product{ChatbotID: id, IsActive: true})
	if err != nil {
		utils.JSONErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := c.repo.GetChatbot(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "chatbot not found", "create product chatbot lookup failed", "chatbot_id", id)
		return
	}
	created, err := c.repo.CreateProduct(r.Context(), p)
	if err != nil {
		c.logRequestError(r, "create product insert failed", err, "chatbot_id", id)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"success": true, "product": created})
}

func (c *Controller) UpdateProduct(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "productID")
	var body productPayload
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	current, err := c.repo.GetProduct(r.Context(), id)
	if err != nil {
		c.dbErr(w, r, err, "product not found", "update product lookup failed", "product_id", id)
		return
	}
	p, err := body.apply(current)
	if err != nil {
		utils.JSONErr(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := c.repo.UpdateProduct(r.Context(), p)
	if err != nil {
		c.dbErr(w, r, err, "product not found", "update product failed", "product_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "product": updated})
}

func (c *Controller) DeleteProduct(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "productID")
	if err := c.repo.DeleteProduct(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "product not found", "delete product failed", "product_id", id)
		return
	}
	utils.JSONOK(w, map[string]interface{}{"success": true})
}

// MatchProducts dry-runs the matcher against a chatbot's active catalog and
// returns every scored product, not only the ones a visitor would see.
func (c *Controller) MatchProducts(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	id := urlParam(r, "id")
	var body struct {
		Message string `json:"message"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil || strings.TrimSpace(body.Message) == "" {
		utils.JSONErr(w, http.StatusBadRequest, "message is required")
		return
	}
	if _, err := c.repo.GetChatbot(r.Context(), id); err != nil {
		c.dbErr(w, r, err, "chatbot not found", "match products chatbot lookup failed", "chatbot_id", id)
		return
	}
	products, err := c.repo.ListProducts(r.Context(), id, true)
	if err != nil {
		c.logRequestError(r, "match products query failed", err, "chatbot_id", id)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	catalog := store.Catalog(products)
	utils.JSONOK(w, map[string]interface{}{
		"success":            true,
		"purchase_intent":    c.matcher.HasPurchaseIntent(body.Message),
		"ranked":             c.matcher.Rank(body.Message, catalog),
		"suggested_products": c.matcher.FindMatchingProducts(body.Message, catalog),
	})
}
