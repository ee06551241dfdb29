package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orion-chatbot/platform/rediscache"
	"orion-chatbot/utils"
)

// errSessionUnverified hides storage failures from the client.
var errSessionUnverified = errors.New("session could not be verified")

const (
	adminCookieName = "orion_admin_token"
	csrfCookieName  = "csrf_token"
	csrfTTL         = 24 * time.Hour
)

func adminToken(r *http.Request) string {
	raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if raw == "" {
		if ck, err := r.Cookie(adminCookieName); err == nil {
			raw = ck.Value
		}
	}
	return raw
}

// AuthenticateAdmin validates the admin JWT and checks that its session has
// not been revoked.
func (c *Controller) AuthenticateAdmin(r *http.Request) (TokenClaims, error) {
	var empty TokenClaims
	raw := adminToken(r)
	if raw == "" {
		return empty, errors.New("admin authentication required")
	}
	claims := &TokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(c.cfg.AdminJWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.Type != adminTokenType {
		return empty, errors.New("invalid admin token")
	}
	active, err := c.repo.AdminSessionActive(r.Context(), utils.HashToken(raw))
	if err != nil {
		c.logRequestError(r, "admin session lookup failed", err)
		return empty, errSessionUnverified
	}
	if !active {
		return empty, errors.New("session not found or revoked")
	}
	return *claims, nil
}

func (c *Controller) RequireCSRF(r *http.Request) error {
	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		return errors.New("missing csrf token")
	}
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != token {
		return errors.New("invalid csrf token")
	}
	if c.redis == nil {
		return errors.New("csrf validation unavailable")
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	exists, err := c.redis.Exists(ctx, rediscache.CSRFKey(token)).Result()
	if err != nil || exists == 0 {
		return errors.New("invalid csrf token")
	}
	return nil
}

func (c *Controller) createToken(email string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := TokenClaims{
		Email: email,
		Type:  adminTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.RandomID("adm"),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(c.cfg.AdminJWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

func (c *Controller) GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := utils.RandomID("csrf")
	if c.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.redis.Set(ctx, rediscache.CSRFKey(token), "1", csrfTTL).Err(); err != nil {
			c.logRequestWarn(r, "csrf token store failed", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name: csrfCookieName, Value: token, Path: "/", HttpOnly: false,
		Secure: c.cfg.CookieSecure, SameSite: http.SameSiteLaxMode, Expires: time.Now().Add(csrfTTL),
	})
	utils.JSONOK(w, map[string]interface{}{"success": true, "csrfToken": token})
}

func (c *Controller) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := c.RequireCSRF(r); err != nil {
		utils.JSONErr(w, http.StatusForbidden, err.Error())
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.JSONErr(w, http.StatusBadRequest, "invalid payload")
		return
	}
	email := utils.NormalizeEmail(body.Email)
	if !utils.SecureCompare(email, utils.NormalizeEmail(c.cfg.AdminEmail)) || !utils.SecureCompare(body.Password, c.cfg.AdminPassword) {
		c.logRequestWarn(r, "admin login rejected", errors.New("invalid credentials"), "email", email)
		utils.JSONErr(w, http.StatusUnauthorized, "invalid admin credentials")
		return
	}
	hours := c.cfg.AdminSessionHours
	if hours <= 0 {
		hours = 12
	}
	token, exp, err := c.createToken(email, time.Duration(hours)*time.Hour)
	if err != nil {
		c.logRequestError(r, "admin token signing failed", err)
		utils.JSONErr(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	sessionID, err := c.repo.CreateAdminSession(r.Context(), email, utils.HashToken(token), exp, utils.ClientIP(r), r.UserAgent())
	if err != nil {
		c.logRequestError(r, "admin session insert failed", err)
		utils.JSONErr(w, http.StatusInternalServerError, "db error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: adminCookieName, Value: token, Path: "/", HttpOnly: true,
		Secure: c.cfg.CookieSecure, SameSite: http.SameSiteLaxMode, Expires: exp,
	})
	c.requestLogger(r).Info("admin logged in", "email", email, "session_id", sessionID)
	utils.JSONOK(w, map[string]interface{}{"success": true, "token": token, "expiresAt": exp.UTC(), "email": email})
}

func (c *Controller) AdminLogout(w http.ResponseWriter, r *http.Request, _ TokenClaims) {
	if err := c.repo.RevokeAdminSession(r.Context(), utils.HashToken(adminToken(r))); err != nil {
		c.logRequestWarn(r, "admin session revoke failed", err)
	}
	http.SetCookie(w, &http.Cookie{Name: adminCookieName, Value: "", HttpOnly: true, Path: "/", MaxAge: -1})
	utils.JSONOK(w, map[string]interface{}{"success": true, "message": "Logged out"})
}

func (c *Controller) AdminMe(w http.ResponseWriter, _ *http.Request, claims TokenClaims) {
	var exp interface{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time.UTC()
	}
	utils.JSONOK(w, map[string]interface{}{"success": true, "admin": map[string]interface{}{"email": claims.Email, "expiresAt": exp}})
}
