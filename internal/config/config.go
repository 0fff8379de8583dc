package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig   // Настройки HTTP сервера
	API      APIConfig      // Настройки удаленного REST API
	Database DatabaseConfig // Настройки подключения к БД (хранилище сессий)
	Session  SessionConfig  // Настройки cookie сессии
	OAuth    OAuthConfig    // Настройки OAuth входа
	Log      LogConfig      // Настройки логирования
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"3000"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	// PublicURL внешний адрес фронтенда, используется для redirect_uri
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:3000"`
}

// APIConfig содержит настройки клиента Timber API
type APIConfig struct {
	BaseURL string        `envconfig:"API_URL" default:"https://timber.netsoc.cloud"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"timber_web"`
	Password string `envconfig:"DB_PASSWORD" default:"timber_web_pass"`
	Name     string `envconfig:"DB_NAME" default:"timber_web"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`
}

// SessionConfig содержит настройки подписанной cookie сессии
type SessionConfig struct {
	Secret          string `envconfig:"SESSION_SECRET" required:"true"`
	CookieName      string `envconfig:"SESSION_COOKIE_NAME" default:"timber_session"`
	ExpirationHours int    `envconfig:"SESSION_EXPIRATION_HOURS" default:"720"`
	Secure          bool   `envconfig:"SESSION_SECURE" default:"false"`
}

// OAuthConfig содержит настройки OAuth входа через API
type OAuthConfig struct {
	Providers []string `envconfig:"OAUTH_PROVIDERS" default:"google"`
}

// LogConfig содержит настройки логгера
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// GetExpiration возвращает срок действия сессии как time.Duration
func (s SessionConfig) GetExpiration() time.Duration {
	return time.Duration(s.ExpirationHours) * time.Hour
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Addr возвращает адрес для прослушивания HTTP сервером
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// CallbackURL возвращает адрес OAuth callback для провайдера
func (s ServerConfig) CallbackURL(provider string) string {
	return strings.TrimRight(s.PublicURL, "/") + "/oauth/callback/" + provider
}

// SlogLevel возвращает уровень логирования для slog
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate проверяет значения, которые envconfig не может проверить сам
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if c.Session.ExpirationHours <= 0 {
		return errors.New("SESSION_EXPIRATION_HOURS must be positive")
	}
	if len(c.OAuth.Providers) == 0 {
		return errors.New("OAUTH_PROVIDERS must list at least one provider")
	}
	return nil
}

// Load читает конфигурацию из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	// .env не обязателен, переменные окружения имеют приоритет
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
