package domain

import "time"

// Session представляет серверную сессию браузера с токенами API
type Session struct {
	ID           string
	UserID       int
	AccessToken  string
	RefreshToken string
	// AccessExpiresAt момент истечения access токена API
	AccessExpiresAt time.Time
	// ExpiresAt момент истечения самой сессии
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired возвращает true если сессия истекла
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// AccessTokenExpired возвращает true если access токен нужно обновить
func (s *Session) AccessTokenExpired(now time.Time) bool {
	return !s.AccessExpiresAt.IsZero() && !s.AccessExpiresAt.After(now)
}

// TokenPair содержит токены, выданные API после OAuth входа или обновления
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
