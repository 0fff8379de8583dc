package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gal/timber-web/internal/apiclient"
	"github.com/gal/timber-web/internal/config"
	"github.com/gal/timber-web/internal/handler"
	"github.com/gal/timber-web/internal/middleware"
	"github.com/gal/timber-web/internal/repository/postgres"
	"github.com/gal/timber-web/internal/service"
	"github.com/gal/timber-web/internal/view"
)

// sessionCleanupInterval период удаления истекших сессий
const sessionCleanupInterval = time.Hour

// App представляет приложение со всеми зависимостями
type App struct {
	config      *config.Config
	db          *pgxpool.Pool
	server      *http.Server
	logger      *slog.Logger
	authService *service.AuthService
	cleanupCtx  context.Context
	stopCleanup context.CancelFunc
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Подключаемся к базе данных
	if err := a.connectDB(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Применяем миграции таблицы сессий
	if err := postgres.Migrate(ctx, a.db); err != nil {
		return err
	}

	// Настраиваем HTTP сервер и роутинг
	if err := a.setupServer(); err != nil {
		return fmt.Errorf("failed to setup server: %w", err)
	}

	a.prepareCleanup()

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() error {
	// Клиент удаленного Timber API
	api, err := apiclient.New(a.config.API.BaseURL, a.config.API.Timeout, a.logger)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}

	// Инициализируем слой репозиториев (работа с БД)
	sessionRepo := postgres.NewSessionRepository(a.db)

	// Инициализируем слой сервисов
	a.authService = service.NewAuthService(
		api,
		sessionRepo,
		a.config.Session.Secret,
		a.config.Session.GetExpiration(),
		a.config.OAuth.Providers,
		a.config.Server.CallbackURL,
	)
	projectService := service.NewProjectService(api)
	profileService := service.NewProfileService(api)

	// Инициализируем HTTP обработчики
	pages := handler.NewPages(renderer, a.logger, a.config.Session.CookieName)
	authHandler := handler.NewAuthHandler(
		a.authService,
		pages,
		a.config.OAuth.Providers,
		a.config.Session.CookieName,
		a.config.Session.Secure,
	)
	projectHandler := handler.NewProjectHandler(projectService, pages)
	profileHandler := handler.NewProfileHandler(profileService, pages)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.NotFound(pages.NotFound)

	// Health check для мониторинга
	r.Get("/health", handler.Health)

	// Выход не зависит от доступности API: сессия удаляется по cookie
	r.Post("/logout", authHandler.Logout)

	// Все страницы ниже знают о текущем пользователе (если он вошел)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(a.authService, a.config.Session.CookieName, pages.HandleError))

		// Публичные страницы
		r.Get("/legal", pages.Legal)
		r.Get("/login", authHandler.Login)
		r.Get("/auth/signin/{provider}", authHandler.SignIn)
		r.Get("/oauth/callback/{provider}", authHandler.Callback)

		// Профиль доступен и с незаполненным профилем (онбординг)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireViewer)

			r.Get("/profile", profileHandler.Edit)
			r.Post("/profile", profileHandler.Update)
		})

		// Защищенные страницы (вход и заполненный профиль)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireProfile)

			r.Get("/", projectHandler.Landing)
			r.Get("/browse", projectHandler.Browse)
			r.Get("/applications", projectHandler.Applications)
			r.Post("/projects", projectHandler.CreateProject)
			r.Get("/projects/{id}", projectHandler.Project)
			r.Post("/projects/{id}/apply", projectHandler.Apply)
			r.Get("/review/{id}", projectHandler.Review)
		})
	})

	// Создаем HTTP сервер с настройками таймаутов
	addr := a.config.Server.Addr()
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr, "api", a.config.API.BaseURL)
	return nil
}

// Handler возвращает корневой HTTP обработчик приложения
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер и фоновую очистку сессий
func (a *App) Run() error {
	go a.cleanupSessions(a.cleanupCtx)

	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// prepareCleanup создает контекст фоновой очистки до запуска сервера, Shutdown его отменяет
func (a *App) prepareCleanup() {
	a.cleanupCtx, a.stopCleanup = context.WithCancel(context.Background())
}

// cleanupSessions периодически удаляет истекшие сессии
func (a *App) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := a.authService.CleanupExpired(ctx)
			if err != nil {
				a.logger.Error("Failed to delete expired sessions", "error", err)
				continue
			}
			if deleted > 0 {
				a.logger.Info("Deleted expired sessions", "count", deleted)
			}
		}
	}
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	if a.stopCleanup != nil {
		a.stopCleanup()
	}

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
