package store

import (
	"context"
	"encoding/json"
	"time"

	"orion-chatbot/utils"
)

// InsertEvent persists one analytics event. Events for chatbots that no
// longer exist are skipped.
func (s *Store) InsertEvent(ctx context.Context, e Event) error {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO widget_events (chatbot_id,event_type,event_data,ip_address,user_agent,referer_url)
		SELECT id,$2,$3::jsonb,$4,$5,$6 FROM chatbots WHERE id=$1`,
		e.ChatbotID, e.Type, string(b), utils.Nullable(e.IP), utils.Nullable(e.UserAgent), utils.Nullable(e.Referer))
	return err
}

func (s *Store) PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM widget_events WHERE created_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Analytics summarises activity over the last days days. An empty chatbotID
// covers every chatbot.
func (s *Store) Analytics(ctx context.Context, chatbotID string, days int) (Analytics, error) {
	since := time.Now().AddDate(0, 0, -days)
	out := Analytics{
		ChatbotID:       chatbotID,
		Days:            days,
		TicketsByStatus: map[string]int64{},
		EventsByType:    map[string]int64{},
	}

	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations WHERE created_at >= $1 AND ($2 = '' OR chatbot_id = $2)`,
		since, chatbotID).Scan(&out.Conversations); err != nil {
		return out, err
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages m JOIN conversations c ON c.id = m.conversation_id
		WHERE m.created_at >= $1 AND ($2 = '' OR c.chatbot_id = $2)`, since, chatbotID).Scan(&out.Messages); err != nil {
		return out, err
	}
	if err := s.countBy(ctx, out.TicketsByStatus, `SELECT status, COUNT(*) FROM tickets
		WHERE created_at >= $1 AND ($2 = '' OR chatbot_id = $2) GROUP BY status`, since, chatbotID); err != nil {
		return out, err
	}
	if err := s.countBy(ctx, out.EventsByType, `SELECT event_type, COUNT(*) FROM widget_events
		WHERE created_at >= $1 AND ($2 = '' OR chatbot_id = $2) GROUP BY event_type`, since, chatbotID); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Store) countBy(ctx context.Context, into map[string]int64, q string, args ...any) error {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		into[k] = n
	}
	return rows.Err()
}

// Totals are the gauges exported on /metrics.
type Totals struct {
	Chatbots          int64
	Products          int64
	Conversations     int64
	Messages          int64
	OpenTickets       int64
	ActiveAdminLogins int64
}

func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.DB.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM chatbots),
		(SELECT COUNT(*) FROM products),
		(SELECT COUNT(*) FROM conversations),
		(SELECT COUNT(*) FROM messages),
		(SELECT COUNT(*) FROM tickets WHERE status IN ('open','in_progress')),
		(SELECT COUNT(*) FROM admin_sessions WHERE is_revoked=FALSE AND expires_at > CURRENT_TIMESTAMP)`).
		Scan(&t.Chatbots, &t.Products, &t.Conversations, &t.Messages, &t.OpenTickets, &t.ActiveAdminLogins)
	return t, err
}
