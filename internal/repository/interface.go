package repository

import (
	"context"
	"time"

	"github.com/gal/timber-web/internal/domain"
)

// SessionRepository определяет методы для работы с серверными сессиями браузера
type SessionRepository interface {
	// Create сохраняет новую сессию
	Create(ctx context.Context, session *domain.Session) error

	// GetByID получает сессию по ID
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)

	// UpdateTokens заменяет токены API после обновления
	UpdateTokens(ctx context.Context, sessionID string, tokens domain.TokenPair, accessExpiresAt time.Time) error

	// Delete удаляет сессию (идемпотентная операция)
	Delete(ctx context.Context, sessionID string) error

	// DeleteExpired удаляет все сессии, истекшие к указанному моменту
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
