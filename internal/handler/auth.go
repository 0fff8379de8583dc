package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/middleware"
	"github.com/gal/timber-web/internal/service"
	"github.com/gal/timber-web/internal/view"
)

const (
	stateCookieName = "timber_oauth_state"
	nextCookieName  = "timber_oauth_next"
	stateCookieTTL  = 10 * time.Minute
)

// AuthHandler обрабатывает вход через OAuth и выход
type AuthHandler struct {
	authService  *service.AuthService
	pages        *Pages
	providers    []string
	cookieName   string
	secureCookie bool
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService, pages *Pages, providers []string, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		pages:        pages,
		providers:    providers,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

// Login обрабатывает GET /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if middleware.GetViewerFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.pages.Render(w, r, http.StatusOK, "login", "Sign in", view.LoginData{
		Providers: h.providers,
		Next:      safeNext(r.URL.Query().Get("next")),
	})
}

// SignIn обрабатывает GET /auth/signin/{provider}
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	redirectURL, state, err := h.authService.BeginSignIn(provider)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			h.pages.RenderError(w, r, http.StatusNotFound, "Unknown sign-in provider.")
			return
		}
		h.pages.HandleError(w, r, err)
		return
	}

	h.setShortCookie(w, stateCookieName, state)
	if next := safeNext(r.URL.Query().Get("next")); next != "" {
		h.setShortCookie(w, nextCookieName, next)
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// Callback обрабатывает GET /oauth/callback/{provider}
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	query := r.URL.Query()

	var expectedState string
	if cookie, err := r.Cookie(stateCookieName); err == nil {
		expectedState = cookie.Value
	}
	next := "/"
	if cookie, err := r.Cookie(nextCookieName); err == nil && safeNext(cookie.Value) != "" {
		next = cookie.Value
	}
	middleware.ClearCookie(w, stateCookieName)
	middleware.ClearCookie(w, nextCookieName)

	// Провайдер вернул ошибку (например, пользователь отменил вход)
	if providerErr := query.Get("error"); providerErr != "" {
		h.pages.RenderError(w, r, http.StatusUnauthorized, "Sign-in was cancelled: "+providerErr)
		return
	}

	token, _, err := h.authService.CompleteSignIn(r.Context(), provider, query.Get("code"), query.Get("state"), expectedState)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownProvider):
			h.pages.RenderError(w, r, http.StatusNotFound, "Unknown sign-in provider.")
		case errors.Is(err, domain.ErrInvalidState):
			h.pages.RenderError(w, r, http.StatusBadRequest, "The sign-in request is invalid or has expired. Please try again.")
		default:
			h.pages.HandleError(w, r, err)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authService.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout обрабатывает POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.authService.SignOut(r.Context(), cookie.Value); err != nil {
			h.pages.HandleError(w, r, err)
			return
		}
	}

	middleware.ClearCookie(w, h.cookieName)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext пропускает только локальные пути, чтобы не допустить open redirect
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return ""
	}
	return next
}
