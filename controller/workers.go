package controller

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"orion-chatbot/platform/rediscache"
	"orion-chatbot/store"
)

const analyticsFlushBatch = 200

// flushWidgetAnalytics moves up to one batch of buffered events from redis
// into widget_events. It returns the number persisted.
func (c *Controller) flushWidgetAnalytics(ctx context.Context) int {
	if c.redis == nil {
		return 0
	}
	persisted := 0
	for i := 0; i < analyticsFlushBatch; i++ {
		v, err := c.redis.RPop(ctx, rediscache.AnalyticsBufferKey).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.logger.Warn("failed to pop analytics event from redis", "error", err)
			}
			break
		}
		var evt store.Event
		if err := json.Unmarshal([]byte(v), &evt); err != nil || evt.ChatbotID == "" || evt.Type == "" {
			if err != nil {
				c.logger.Warn("failed to decode buffered analytics event", "error", err)
			}
			continue
		}
		if err := c.repo.InsertEvent(ctx, evt); err != nil {
			c.logger.Warn("failed to persist analytics event", "chatbot_id", evt.ChatbotID, "event_type", evt.Type, "error", err)
			continue
		}
		persisted++
	}
	return persisted
}

func (c *Controller) runMaintenance(ctx context.Context) {
	if n, err := c.repo.RevokeExpiredAdminSessions(ctx); err != nil {
		c.logger.Warn("maintenance task failed: revoke expired admin sessions", "error", err)
	} else if n > 0 {
		c.logger.Info("expired admin sessions revoked", "count", n)
	}
	days := c.cfg.EventRetentionDays
	if days <= 0 {
		days = 90
	}
	if n, err := c.repo.PruneEvents(ctx, time.Duration(days)*24*time.Hour); err != nil {
		c.logger.Warn("maintenance task failed: prune widget events", "error", err)
	} else if n > 0 {
		c.logger.Info("old widget events pruned", "count", n, "retention_days", days)
	}
}

// StartBackgroundWorkers runs the analytics flush and the maintenance loop
// until ctx is cancelled. The returned channel closes once the loop exits,
// after a final flush.
func (c *Controller) StartBackgroundWorkers(ctx context.Context) <-chan struct{} {
	flushEvery := time.Duration(c.cfg.AnalyticsFlushIntervalSec) * time.Second
	if flushEvery <= 0 {
		flushEvery = time.Minute
	}
	maintainEvery := time.Duration(c.cfg.MaintenanceIntervalHours) * time.Hour
	if maintainEvery <= 0 {
		maintainEvery = 24 * time.Hour
	}
	analyticsTicker := time.NewTicker(flushEvery)
	maintenanceTicker := time.NewTicker(maintainEvery)
	c.logger.Info("background workers started",
		"analytics_interval", flushEvery.String(),
		"maintenance_interval", maintainEvery.String(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer analyticsTicker.Stop()
		defer maintenanceTicker.Stop()
		defer c.logger.Info("background workers stopped")
		for {
			select {
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flushWidgetAnalytics(flushCtx)
				cancel()
				return
			case <-analyticsTicker.C:
				c.flushWidgetAnalytics(ctx)
			case <-maintenanceTicker.C:
				c.runMaintenance(ctx)
			}
		}
	}()
	return done
}
