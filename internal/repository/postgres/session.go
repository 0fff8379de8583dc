package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gal/timber-web/internal/domain"
)

// SessionRepository реализует repository.SessionRepository для PostgreSQL
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository создает новый экземпляр SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create сохраняет новую сессию
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (session_id, user_id, access_token, refresh_token, access_expires_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	return r.db.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.AccessToken,
		session.RefreshToken,
		nullableTime(session.AccessExpiresAt),
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
}

// GetByID получает сессию по ID
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id::text, user_id, access_token, refresh_token, access_expires_at, expires_at, created_at
		FROM sessions
		WHERE session_id = $1
	`

	var (
		session         domain.Session
		accessExpiresAt *time.Time
	)
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.AccessToken,
		&session.RefreshToken,
		&accessExpiresAt,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	if accessExpiresAt != nil {
		session.AccessExpiresAt = *accessExpiresAt
	}

	return &session, nil
}

// UpdateTokens заменяет токены API после обновления
func (r *SessionRepository) UpdateTokens(ctx context.Context, sessionID string, tokens domain.TokenPair, accessExpiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET access_token = $1,
		    refresh_token = CASE WHEN $2 = '' THEN refresh_token ELSE $2 END,
		    access_expires_at = $3,
		    updated_at = NOW()
		WHERE session_id = $4
	`

	result, err := r.db.Exec(ctx, query, tokens.AccessToken, tokens.RefreshToken, nullableTime(accessExpiresAt), sessionID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Delete удаляет сессию (идемпотентная операция)
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	return err
}

// DeleteExpired удаляет все сессии, истекшие к указанному моменту
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
