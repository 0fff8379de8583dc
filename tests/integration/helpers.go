package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gal/timber-web/internal/app"
	"github.com/gal/timber-web/internal/config"
	"github.com/gal/timber-web/internal/domain"
)

// TestEnvironment содержит все ресурсы необходимые для интеграционных тестов
type TestEnvironment struct {
	PostgresContainer *postgres.PostgresContainer
	App               *app.App
	API               *FakeAPI
	BaseURL           string
	DB                *pgxpool.Pool
	ctx               context.Context
}

// SetupTestEnvironment создает и инициализирует полное тестовое окружение
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	// Запускаем PostgreSQL контейнер
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("timber_web_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	// Поднимаем фейковый Timber API
	fakeAPI := NewFakeAPI()
	apiServer := httptest.NewServer(fakeAPI.Router())
	t.Cleanup(apiServer.Close)

	// Используем высокий порт для тестов чтобы избежать конфликтов
	testPort := "18081"
	baseURL := fmt.Sprintf("http://127.0.0.1:%s", testPort)
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:      testPort,
			Host:      "127.0.0.1",
			PublicURL: baseURL,
		},
		API: config.APIConfig{
			BaseURL: apiServer.URL,
			Timeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Host:     host,
			Port:     port.Port(),
			User:     "test_user",
			Password: "test_password",
			Name:     "timber_web_test",
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 1,
		},
		Session: config.SessionConfig{
			Secret:          "test-session-secret-for-integration",
			CookieName:      "timber_session",
			ExpirationHours: 24,
		},
		OAuth: config.OAuthConfig{
			Providers: []string{"google"},
		},
		Log: config.LogConfig{
			Level: "error",
		},
	}

	// Создаем и инициализируем приложение (миграции применяются при старте)
	application, err := app.New(cfg)
	require.NoError(t, err, "Failed to create application")

	err = application.Initialize(ctx)
	require.NoError(t, err, "Failed to initialize application")

	// Запускаем сервер в фоне
	go func() {
		if err := application.Run(); err != nil && err != http.ErrServerClosed {
			t.Logf("Server error: %v", err)
		}
	}()

	// Создаем подключение к БД для прямых запросов в тестах
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	return &TestEnvironment{
		PostgresContainer: pgContainer,
		App:               application,
		API:               fakeAPI,
		BaseURL:           baseURL,
		DB:                pool,
		ctx:               ctx,
	}
}

// Cleanup очищает все тестовые ресурсы
func (te *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	// Останавливаем приложение
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if te.App != nil {
		_ = te.App.Shutdown(shutdownCtx)
	}

	// Закрываем подключение к БД
	if te.DB != nil {
		te.DB.Close()
	}

	// Останавливаем PostgreSQL контейнер
	if te.PostgresContainer != nil {
		_ = te.PostgresContainer.Terminate(te.ctx)
	}
}

// Browser отправляет запросы как браузер: хранит cookie и не следует редиректам
type Browser struct {
	client  *http.Client
	baseURL string
	cookies map[string]*http.Cookie
}

// NewBrowser создает новый Browser
func (te *TestEnvironment) NewBrowser() *Browser {
	return &Browser{
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: te.BaseURL,
		cookies: map[string]*http.Cookie{},
	}
}

// Do выполняет запрос и запоминает выставленные cookie
func (b *Browser) Do(t *testing.T, method, path string, form url.Values) *http.Response {
	t.Helper()

	body := strings.NewReader(form.Encode())
	req, err := http.NewRequest(method, b.baseURL+path, body)
	require.NoError(t, err, "Failed to create request")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	resp, err := b.client.Do(req)
	require.NoError(t, err, "Failed to make request")

	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return resp
}

// Cookie возвращает сохраненную cookie
func (b *Browser) Cookie(name string) *http.Cookie {
	return b.cookies[name]
}

// WaitForHealthCheck ждет пока приложение станет доступным
func (te *TestEnvironment) WaitForHealthCheck(t *testing.T) {
	t.Helper()

	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(te.BaseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatal("Application did not become healthy in time")
}

// FakeAPI минимальная реализация Timber API для e2e тестов
type FakeAPI struct {
	mu       sync.Mutex
	profile  domain.User
	tags     []domain.Tag
	projects []domain.Project
}

// NewFakeAPI создает FakeAPI с новым пользователем без заполненного профиля
func NewFakeAPI() *FakeAPI {
	goTag := domain.Tag{ID: 1, Name: "Go"}
	return &FakeAPI{
		profile: domain.User{ID: 7, Email: "ada@example.com"},
		tags:    []domain.Tag{goTag, {ID: 2, Name: "Rust"}},
		projects: []domain.Project{
			{ID: 10, Name: "Distributed cache", Owner: domain.User{ID: 3, Username: "bob"}, RequiredSkills: []domain.Tag{goTag}},
		},
	}
}

// Router возвращает HTTP обработчик фейкового API
func (f *FakeAPI) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/auth/callback/{provider}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") == "" {
			writeEnvelope(w, http.StatusUnauthorized, "error", "missing code", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "success", "", domain.TokenPair{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    3600,
		})
	})

	// Остальные эндпоинты требуют токен доступа
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer access-token" {
					writeEnvelope(w, http.StatusUnauthorized, "error", "unauthorized", nil)
					return
				}
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/api/profile", func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			writeEnvelope(w, http.StatusOK, "success", "", f.profile)
		})
		r.Put("/api/profile", func(w http.ResponseWriter, r *http.Request) {
			var upd domain.ProfileUpdate
			if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
				writeEnvelope(w, http.StatusBadRequest, "error", "invalid body", nil)
				return
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			f.profile.Username = upd.Username
			f.profile.Description = upd.Description
			f.profile.AvatarURL = upd.AvatarURL
			f.profile.Tags = upd.Tags
			writeEnvelope(w, http.StatusOK, "success", "", f.profile)
		})
		r.Get("/api/tags", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, "success", "", f.tags)
		})
		r.Get("/api/tag/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != "1" || r.URL.Query().Get("skill") != "required" {
				writeEnvelope(w, http.StatusOK, "success", "", []domain.Project{})
				return
			}
			writeEnvelope(w, http.StatusOK, "success", "", f.projects)
		})
	})

	return r
}

func writeEnvelope(w http.ResponseWriter, status int, detail, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"detail": detail, "msg": msg, "data": data})
}
