package rediscache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalyticsBufferKey is the list widget events are pushed to before the
// flush worker persists them.
const AnalyticsBufferKey = "widget:analytics:buffer"

func WidgetConfigKey(chatbotID string) string { return "widget:config:" + chatbotID }

func CSRFKey(token string) string { return "csrf:" + token }

// Open connects and pings. An empty addr returns a nil client and no error.
func Open(addr, password string, db int) (*redis.Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, nil
	}
	cli := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return cli, nil
}
