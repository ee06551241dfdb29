package store

import (
	"context"
	"strings"

	"orion-chatbot/utils"
	"orion-chatbot/widget"
)

const chatbotColumns = `id,name,is_active,system_prompt,position,margin_x,margin_y,primary_color,chat_icon,bot_name,welcome_message,created_at,updated_at`

func scanChatbot(row scanner) (Chatbot, error) {
	var b Chatbot
	var position string
	err := row.Scan(&b.ID, &b.Name, &b.IsActive, &b.SystemPrompt,
		&position, &b.Settings.MarginX, &b.Settings.MarginY, &b.Settings.PrimaryColor,
		&b.Settings.ChatIcon, &b.Settings.BotName, &b.Settings.WelcomeMessage,
		&b.CreatedAt, &b.UpdatedAt)
	b.Settings.Position = widgetPosition(position)
	return b, err
}

func (s *Store) ListChatbots(ctx context.Context) ([]Chatbot, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+chatbotColumns+` FROM chatbots ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Chatbot, 0)
	for rows.Next() {
		b, err := scanChatbot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetChatbot(ctx context.Context, id string) (Chatbot, error) {
	b, err := scanChatbot(s.DB.QueryRowContext(ctx, `SELECT `+chatbotColumns+` FROM chatbots WHERE id=$1`, id))
	return b, notFound(err)
}

// ActiveChatbot is GetChatbot restricted to chatbots that serve the widget.
func (s *Store) ActiveChatbot(ctx context.Context, id string) (Chatbot, error) {
	b, err := scanChatbot(s.DB.QueryRowContext(ctx, `SELECT `+chatbotColumns+` FROM chatbots WHERE id=$1 AND is_active=TRUE`, id))
	return b, notFound(err)
}

func (s *Store) CreateChatbot(ctx context.Context, b Chatbot) (Chatbot, error) {
	if strings.TrimSpace(b.ID) == "" {
		b.ID = utils.RandomID("bot")
	}
	st := b.Settings
	row := s.DB.QueryRowContext(ctx, `INSERT INTO chatbots (id,name,is_active,system_prompt,position,margin_x,margin_y,primary_color,chat_icon,bot_name,welcome_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING `+chatbotColumns,
		b.ID, b.Name, b.IsActive, b.SystemPrompt,
		string(st.Position), st.MarginX, st.MarginY, st.PrimaryColor, st.ChatIcon, st.BotName, st.WelcomeMessage)
	return scanChatbot(row)
}

func (s *Store) UpdateChatbot(ctx context.Context, id, name string, isActive bool, systemPrompt string) (Chatbot, error) {
	b, err := scanChatbot(s.DB.QueryRowContext(ctx, `UPDATE chatbots SET name=$2,is_active=$3,system_prompt=$4,updated_at=CURRENT_TIMESTAMP
		WHERE id=$1 RETURNING `+chatbotColumns, id, name, isActive, systemPrompt))
	return b, notFound(err)
}

func (s *Store) UpdateSettings(ctx context.Context, id string, st Settings) (Chatbot, error) {
	b, err := scanChatbot(s.DB.QueryRowContext(ctx, `UPDATE chatbots SET position=$2,margin_x=$3,margin_y=$4,primary_color=$5,chat_icon=$6,bot_name=$7,welcome_message=$8,updated_at=CURRENT_TIMESTAMP
		WHERE id=$1 RETURNING `+chatbotColumns,
		id, string(st.Position), st.MarginX, st.MarginY, st.PrimaryColor, st.ChatIcon, st.BotName, st.WelcomeMessage))
	return b, notFound(err)
}

func (s *Store) DeleteChatbot(ctx context.Context, id string) error {
	return affectedOrNotFound(s.DB.ExecContext(ctx, `DELETE FROM chatbots WHERE id=$1`, id))
}

func widgetPosition(raw string) widget.Position {
	p, err := widget.ParsePosition(raw)
	if err != nil {
		return widget.DefaultPosition
	}
	return p
}
