package store

import (
	"context"
	"time"

	"orion-chatbot/utils"
)

// CreateAdminSession records a login. Only the token hash is stored.
func (s *Store) CreateAdminSession(ctx context.Context, email, tokenHash string, expiresAt time.Time, ip, userAgent string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `INSERT INTO admin_sessions (email,token_hash,expires_at,ip_address,user_agent) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		email, tokenHash, expiresAt, utils.Nullable(ip), utils.Nullable(userAgent)).Scan(&id)
	return id, err
}

// AdminSessionActive reports whether a session with this token hash exists
// and is neither revoked nor expired.
func (s *Store) AdminSessionActive(ctx context.Context, tokenHash string) (bool, error) {
	var ok bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admin_sessions WHERE token_hash=$1 AND is_revoked=FALSE AND expires_at > CURRENT_TIMESTAMP)`,
		tokenHash).Scan(&ok)
	return ok, err
}

func (s *Store) RevokeAdminSession(ctx context.Context, tokenHash string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE admin_sessions SET is_revoked=TRUE,updated_at=CURRENT_TIMESTAMP WHERE token_hash=$1`, tokenHash)
	return err
}

// RevokeExpiredAdminSessions marks expired sessions revoked and deletes
// sessions revoked more than 30 days ago.
func (s *Store) RevokeExpiredAdminSessions(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `UPDATE admin_sessions SET is_revoked=TRUE,updated_at=CURRENT_TIMESTAMP WHERE expires_at < CURRENT_TIMESTAMP AND is_revoked=FALSE`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE is_revoked=TRUE AND updated_at < CURRENT_TIMESTAMP - INTERVAL '30 days'`); err != nil {
		return n, err
	}
	return n, nil
}
