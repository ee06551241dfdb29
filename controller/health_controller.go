package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"orion-chatbot/utils"
)

var startedAt = time.Now()

func (c *Controller) Health(w http.ResponseWriter, _ *http.Request) {
	utils.JSONOK(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(startedAt).Seconds(),
	})
}

func (c *Controller) HealthDetailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	dbStatus := "healthy"
	if err := c.repo.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
		c.logRequestWarn(r, "health check database ping failed", err)
	}
	redisStatus := "disabled"
	if c.redis != nil {
		redisStatus = "healthy"
		if err := c.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
			c.logRequestWarn(r, "health check redis ping failed", err)
		}
	}
	status := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = "degraded"
	}
	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, map[string]interface{}{
		"status":       status,
		"dependencies": map[string]string{"database": dbStatus, "redis": redisStatus},
		"timestamp":    time.Now().UTC(),
	})
}

func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.repo.Ping(ctx); err != nil {
		c.logRequestWarn(r, "readiness database ping failed", err)
		utils.JSONErr(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	utils.JSONOK(w, map[string]interface{}{"status": "ready", "timestamp": time.Now().UTC()})
}

func (c *Controller) Live(w http.ResponseWriter, _ *http.Request) {
	utils.JSONOK(w, map[string]interface{}{"status": "alive", "timestamp": time.Now().UTC()})
}

func (c *Controller) Metrics(w http.ResponseWriter, r *http.Request) {
	totals, err := c.repo.Totals(r.Context())
	if err != nil {
		c.logRequestWarn(r, "metrics totals query failed", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "orion_chatbots_total %d\n", totals.Chatbots)
	fmt.Fprintf(&b, "orion_products_total %d\n", totals.Products)
	fmt.Fprintf(&b, "orion_conversations_total %d\n", totals.Conversations)
	fmt.Fprintf(&b, "orion_messages_total %d\n", totals.Messages)
	fmt.Fprintf(&b, "orion_tickets_open %d\n", totals.OpenTickets)
	fmt.Fprintf(&b, "orion_admin_sessions_active %d\n", totals.ActiveAdminLogins)
	fmt.Fprintf(&b, "orion_uptime_seconds %.0f\n", time.Since(startedAt).Seconds())
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write([]byte(b.String()))
}
