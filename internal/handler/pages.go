package handler

import (
	"log/slog"
	"net/http"

	"github.com/gal/timber-web/internal/middleware"
	"github.com/gal/timber-web/internal/view"
)

// Pages рендерит HTML страницы и ошибки, общий для всех обработчиков
type Pages struct {
	renderer   *view.Renderer
	logger     *slog.Logger
	cookieName string
}

// NewPages создает новый Pages
func NewPages(renderer *view.Renderer, logger *slog.Logger, cookieName string) *Pages {
	return &Pages{
		renderer:   renderer,
		logger:     logger,
		cookieName: cookieName,
	}
}

// Render рендерит страницу для текущего пользователя
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.Page{Title: title, Data: data}
	if viewer := middleware.GetViewerFromContext(r.Context()); viewer != nil {
		page.Viewer = viewer.User
	}
	if r.URL.Query().Get("saved") == "1" {
		page.Flash = "Saved."
	}

	if err := p.renderer.Render(w, status, name, page); err != nil {
		p.logger.Error("Failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Legal обрабатывает GET /legal
func (p *Pages) Legal(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusOK, "legal", "Legal", nil)
}

// NotFound обрабатывает неизвестные маршруты
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.RenderError(w, r, http.StatusNotFound, "Page not found.")
}

// RenderError рендерит страницу ошибки
func (p *Pages) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	p.Render(w, r, status, "error", http.StatusText(status), view.ErrorData{
		Status:  status,
		Message: message,
	})
}
