package handler

import (
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gal/timber-web/internal/apiclient"
	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/middleware"
)

// HandleError преобразует ошибки сервисов и API в HTML ответы
func (p *Pages) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		envelopeErr   *apiclient.EnvelopeError
		transportErr  *apiclient.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		p.RenderError(w, r, http.StatusBadRequest, validationErr.First())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrSessionExpired):
		middleware.ClearCookie(w, p.cookieName)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, domain.ErrNotFound):
		p.RenderError(w, r, http.StatusNotFound, "We could not find that.")
	case errors.Is(err, domain.ErrForbidden):
		p.RenderError(w, r, http.StatusForbidden, "You do not have access to this page.")
	case errors.As(err, &envelopeErr):
		p.RenderError(w, r, http.StatusBadRequest, envelopeErr.Msg)
	case errors.As(err, &transportErr):
		p.logError(r, err)
		p.RenderError(w, r, http.StatusBadGateway, "The Timber API is not reachable right now. Please try again.")
	case apiclient.StatusCode(err) >= http.StatusInternalServerError:
		p.logError(r, err)
		p.RenderError(w, r, http.StatusBadGateway, "The Timber API failed to answer. Please try again.")
	case apiclient.StatusCode(err) >= http.StatusBadRequest:
		msg := apiclient.Message(err)
		if msg == "" {
			msg = "The request was rejected."
		}
		p.RenderError(w, r, http.StatusBadRequest, msg)
	default:
		p.logError(r, err)
		p.RenderError(w, r, http.StatusInternalServerError, "Something went wrong.")
	}
}

func (p *Pages) logError(r *http.Request, err error) {
	p.logger.Error("Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"error", err,
	)
}
