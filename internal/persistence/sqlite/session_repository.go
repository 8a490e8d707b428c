package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository over SQLite.
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a SQLite backed session repository.
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession inserts a session and returns it with its assigned id.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.UserID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		nullableTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: session insert id: %w", err)
	}
	session.ID = id
	return session, nil
}

// GetSessionByToken retrieves a session by its opaque token.
func (r *SessionRepository) GetSessionByToken(ctx context.Context, token string) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt string
	var revokedAt sql.NullString

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at, revoked_at
		FROM sessions WHERE token = ?`, token,
	).Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, mapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt, err = timePointer(revokedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// RevokeSession marks a session revoked at the given instant.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL",
		formatTime(revokedAt), token,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// DeleteExpiredSessions removes sessions that expired before the reference
// instant.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", formatTime(reference),
	)
	return mapError(err)
}
