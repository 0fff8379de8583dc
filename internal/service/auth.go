package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/repository"
)

// Claims represents session cookie claims
type Claims struct {
	SessionID string `json:"sid"`
	UserID    int    `json:"uid"`
	jwt.RegisteredClaims
}

// AuthService handles OAuth sign-in and browser sessions
type AuthService struct {
	api         AuthAPI
	sessions    repository.SessionRepository
	secret      string
	expiry      time.Duration
	providers   map[string]struct{}
	callbackURL func(provider string) string
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	api AuthAPI,
	sessions repository.SessionRepository,
	secret string,
	expiry time.Duration,
	providers []string,
	callbackURL func(provider string) string,
) *AuthService {
	known := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		known[p] = struct{}{}
	}

	return &AuthService{
		api:         api,
		sessions:    sessions,
		secret:      secret,
		expiry:      expiry,
		providers:   known,
		callbackURL: callbackURL,
		now:         time.Now,
	}
}

// BeginSignIn returns the provider redirect URL and the state to remember
func (s *AuthService) BeginSignIn(provider string) (string, string, error) {
	if _, ok := s.providers[provider]; !ok {
		return "", "", domain.ErrUnknownProvider
	}

	state := uuid.NewString()
	return s.api.SignInURL(provider, s.callbackURL(provider), state), state, nil
}

// CompleteSignIn finishes the OAuth callback and returns a signed session token
func (s *AuthService) CompleteSignIn(ctx context.Context, provider, code, state, expectedState string) (string, *domain.User, error) {
	if _, ok := s.providers[provider]; !ok {
		return "", nil, domain.ErrUnknownProvider
	}
	if state == "" || code == "" || state != expectedState {
		return "", nil, domain.ErrInvalidState
	}

	tokens, err := s.api.ExchangeCode(ctx, provider, code, state, s.callbackURL(provider))
	if err != nil {
		return "", nil, fmt.Errorf("exchange oauth code: %w", err)
	}

	user, err := s.api.GetProfile(ctx, tokens.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("load profile: %w", err)
	}

	now := s.now()
	session := &domain.Session{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		AccessExpiresAt: accessExpiry(now, tokens.ExpiresIn),
		ExpiresAt:       now.Add(s.expiry),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Authenticate resolves the viewer behind a session token.
// An expired API access token is refreshed at most once.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Viewer, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	now := s.now()
	if session.IsExpired(now) {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrSessionExpired
	}

	refreshed := false
	if session.AccessTokenExpired(now) {
		if err := s.refresh(ctx, session); err != nil {
			return nil, err
		}
		refreshed = true
	}

	user, err := s.api.GetProfile(ctx, session.AccessToken)
	if err != nil && !refreshed && errors.Is(err, domain.ErrUnauthorized) {
		if rerr := s.refresh(ctx, session); rerr != nil {
			return nil, rerr
		}
		user, err = s.api.GetProfile(ctx, session.AccessToken)
	}
	if err != nil {
		return nil, err
	}

	return &Viewer{
		SessionID:   session.ID,
		AccessToken: session.AccessToken,
		User:        user,
	}, nil
}

func (s *AuthService) refresh(ctx context.Context, session *domain.Session) error {
	if session.RefreshToken == "" {
		return domain.ErrUnauthorized
	}

	tokens, err := s.api.RefreshTokens(ctx, session.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			_ = s.sessions.Delete(ctx, session.ID)
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("refresh api tokens: %w", err)
	}

	accessExpiresAt := accessExpiry(s.now(), tokens.ExpiresIn)
	if err := s.sessions.UpdateTokens(ctx, session.ID, *tokens, accessExpiresAt); err != nil {
		return fmt.Errorf("store refreshed tokens: %w", err)
	}

	session.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		session.RefreshToken = tokens.RefreshToken
	}
	session.AccessExpiresAt = accessExpiresAt
	return nil
}

// SignOut deletes the session behind the token. Invalid tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

// CleanupExpired removes sessions that have expired
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// SessionTTL returns how long a new session lives
func (s *AuthService) SessionTTL() time.Duration {
	return s.expiry
}

func (s *AuthService) signToken(session *domain.Session) (string, error) {
	claims := &Claims{
		SessionID: session.ID,
		UserID:    session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a session token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

func accessExpiry(now time.Time, expiresIn int) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(expiresIn) * time.Second)
}
