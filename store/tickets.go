package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const ticketColumns = `id,chatbot_id,conversation_id,name,email,subject,message,status,created_at,updated_at`

func scanTicket(row scanner) (Ticket, error) {
	var t Ticket
	var conv sql.NullString
	var status string
	err := row.Scan(&t.ID, &t.ChatbotID, &conv, &t.Name, &t.Email, &t.Subject, &t.Message, &status, &t.CreatedAt, &t.UpdatedAt)
	if conv.Valid {
		v := conv.String
		t.ConversationID = &v
	}
	t.Status = TicketStatus(status)
	return t, err
}

// CreateTicket opens a ticket. A conversation id that is not a UUID of this
// chatbot's conversation is dropped rather than rejected.
func (s *Store) CreateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TicketOpen
	}
	var conv any
	if t.ConversationID != nil {
		if _, err := uuid.Parse(*t.ConversationID); err == nil {
			conv = *t.ConversationID
		}
	}
	return scanTicket(s.DB.QueryRowContext(ctx, `INSERT INTO tickets (id,chatbot_id,conversation_id,name,email,subject,message,status)
		VALUES ($1,$2,(SELECT id FROM conversations WHERE id=$3::uuid AND chatbot_id=$2),$4,$5,$6,$7,$8) RETURNING `+ticketColumns,
		t.ID, t.ChatbotID, conv, t.Name, t.Email, t.Subject, t.Message, string(t.Status)))
}

func (s *Store) ListTickets(ctx context.Context, f TicketFilter) ([]Ticket, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status=$"+strconv.Itoa(len(args)))
	}
	if f.ChatbotID != "" {
		args = append(args, f.ChatbotID)
		where = append(where, "chatbot_id=$"+strconv.Itoa(len(args)))
	}
	q := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTicket(ctx context.Context, id string) (Ticket, []TicketReply, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Ticket{}, nil, ErrNotFound
	}
	t, err := scanTicket(s.DB.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if err != nil {
		return Ticket{}, nil, notFound(err)
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id,ticket_id,author,body,created_at FROM ticket_replies WHERE ticket_id=$1 ORDER BY created_at, id`, id)
	if err != nil {
		return Ticket{}, nil, err
	}
	defer rows.Close()
	replies := make([]TicketReply, 0)
	for rows.Next() {
		var r TicketReply
		if err := rows.Scan(&r.ID, &r.TicketID, &r.Author, &r.Body, &r.CreatedAt); err != nil {
			return Ticket{}, nil, err
		}
		replies = append(replies, r)
	}
	return t, replies, rows.Err()
}

func (s *Store) UpdateTicketStatus(ctx context.Context, id string, status TicketStatus) (Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Ticket{}, ErrNotFound
	}
	t, err := scanTicket(s.DB.QueryRowContext(ctx, `UPDATE tickets SET status=$2,updated_at=CURRENT_TIMESTAMP WHERE id=$1 RETURNING `+ticketColumns, id, string(status)))
	return t, notFound(err)
}

// AddTicketReply stores a reply and moves an open ticket to in_progress.
func (s *Store) AddTicketReply(ctx context.Context, r TicketReply) (TicketReply, error) {
	if _, err := uuid.Parse(r.TicketID); err != nil {
		return TicketReply{}, ErrNotFound
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return TicketReply{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE tickets SET status=CASE WHEN status='open' THEN 'in_progress' ELSE status END,updated_at=CURRENT_TIMESTAMP WHERE id=$1`, r.TicketID)
	if err := affectedOrNotFound(res, err); err != nil {
		return TicketReply{}, err
	}
	if err := tx.QueryRowContext(ctx, `INSERT INTO ticket_replies (id,ticket_id,author,body) VALUES ($1,$2,$3,$4) RETURNING created_at`,
		r.ID, r.TicketID, r.Author, r.Body).Scan(&r.CreatedAt); err != nil {
		return TicketReply{}, err
	}
	return r, tx.Commit()
}

func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return affectedOrNotFound(s.DB.ExecContext(ctx, `DELETE FROM tickets WHERE id=$1`, id))
}

// ticketAuthor falls back to the ticket's email when no name was given.
func ticketAuthor(t Ticket) string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return t.Email
}

// TicketThread is the ticket's opening message followed by every reply.
func TicketThread(t Ticket, replies []TicketReply) []TicketReply {
	out := make([]TicketReply, 0, len(replies)+1)
	out = append(out, TicketReply{TicketID: t.ID, Author: ticketAuthor(t), Body: t.Message, CreatedAt: t.CreatedAt})
	return append(out, replies...)
}
