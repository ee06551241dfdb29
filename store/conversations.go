package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"orion-chatbot/utils"
)

const conversationColumns = `id,chatbot_id,visitor_id,message_count,last_message_preview,last_message_at,created_at`

const previewRunes = 140

func scanConversation(row scanner) (Conversation, error) {
	var c Conversation
	var last sql.NullTime
	err := row.Scan(&c.ID, &c.ChatbotID, &c.VisitorID, &c.MessageCount, &c.LastMessagePreview, &last, &c.CreatedAt)
	if last.Valid {
		t := last.Time
		c.LastMessageAt = &t
	}
	return c, err
}

// EnsureConversation resumes conversationID when it belongs to chatbotID and
// starts a new conversation otherwise. A missing visitor id is generated.
func (s *Store) EnsureConversation(ctx context.Context, chatbotID, conversationID, visitorID string) (Conversation, error) {
	if _, err := uuid.Parse(conversationID); err == nil {
		c, err := scanConversation(s.DB.QueryRowContext(ctx,
			`SELECT `+conversationColumns+` FROM conversations WHERE id=$1 AND chatbot_id=$2`, conversationID, chatbotID))
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, err
		}
	}
	if visitorID == "" || len(visitorID) > 64 {
		visitorID = "v_" + uuid.NewString()
	}
	return scanConversation(s.DB.QueryRowContext(ctx,
		`INSERT INTO conversations (id,chatbot_id,visitor_id) VALUES ($1,$2,$3) RETURNING `+conversationColumns,
		uuid.NewString(), chatbotID, visitorID))
}

// AppendMessages stores messages in order and bumps the conversation counters
// in one transaction.
func (s *Store) AppendMessages(ctx context.Context, conversationID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range msgs {
		meta := m.Metadata
		if len(meta) == 0 {
			meta = json.RawMessage(`{}`)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO messages (conversation_id,role,content,metadata) VALUES ($1,$2,$3,$4::jsonb)`,
			conversationID, m.Role, m.Content, string(meta)); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	preview := utils.Truncate(msgs[len(msgs)-1].Content, previewRunes)
	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET message_count=message_count+$2,last_message_preview=$3,last_message_at=CURRENT_TIMESTAMP,updated_at=CURRENT_TIMESTAMP WHERE id=$1`,
		conversationID, len(msgs), preview); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return tx.Commit()
}

// RecentMessages returns up to limit of the newest messages, oldest first.
func (s *Store) RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id,conversation_id,role,content,metadata,created_at FROM (
			SELECT id,conversation_id,role,content,metadata,created_at FROM messages WHERE conversation_id=$1 ORDER BY id DESC LIMIT $2
		) recent ORDER BY id`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		var meta []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &meta, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Metadata = json.RawMessage(meta)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListConversations(ctx context.Context, chatbotID string, limit, offset int) ([]Conversation, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE chatbot_id=$1
		ORDER BY COALESCE(last_message_at, created_at) DESC LIMIT $2 OFFSET $3`, chatbotID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetConversation(ctx context.Context, id string) (Conversation, []Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Conversation{}, nil, ErrNotFound
	}
	c, err := scanConversation(s.DB.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, id))
	if err != nil {
		return Conversation{}, nil, notFound(err)
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id,conversation_id,role,content,metadata,created_at FROM messages WHERE conversation_id=$1 ORDER BY id`, id)
	if err != nil {
		return Conversation{}, nil, err
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	return c, msgs, err
}
