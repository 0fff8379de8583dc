package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

const (
	// ViewerKey ключ контекста для текущего пользователя
	ViewerKey ContextKey = "viewer"
)

// Authenticator проверяет токен сессии и возвращает текущего пользователя
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*service.Viewer, error)
}

// ErrorHandler отвечает на запрос, который не удалось обработать
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Session создает middleware, которое загружает пользователя по cookie сессии.
// Запрос с невалидной или истекшей сессией обрабатывается как анонимный, cookie удаляется.
// Остальные ошибки (API или БД недоступны) передаются в onError, cookie сохраняется.
func Session(auth Authenticator, cookieName string, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			viewer, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if !isAuthError(err) {
					onError(w, r, err)
					return
				}
				ClearCookie(w, cookieName)
				next.ServeHTTP(w, r)
				return
			}

			// Добавляем пользователя в контекст
			ctx := WithViewer(r.Context(), viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireViewer перенаправляет анонимных пользователей на страницу входа
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetViewerFromContext(r.Context()) == nil {
			http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireProfile пропускает только пользователей с заполненным профилем (имя и теги).
// Анонимные идут на страницу входа, остальные на форму профиля.
func RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := GetViewerFromContext(r.Context())
		if viewer == nil {
			http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
			return
		}
		if !viewer.User.ProfileComplete() {
			http.Redirect(w, r, "/profile?onboarding=1", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithViewer добавляет пользователя в контекст
func WithViewer(ctx context.Context, viewer *service.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, viewer)
}

// GetViewerFromContext извлекает пользователя из контекста
func GetViewerFromContext(ctx context.Context) *service.Viewer {
	viewer, ok := ctx.Value(ViewerKey).(*service.Viewer)
	if !ok {
		return nil
	}
	return viewer
}

// ClearCookie удаляет cookie в браузере
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func loginURL(r *http.Request) string {
	if r.Method != http.MethodGet || r.URL.Path == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(r.URL.RequestURI())
}

func isAuthError(err error) bool {
	return errors.Is(err, domain.ErrInvalidToken) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrSessionExpired)
}
