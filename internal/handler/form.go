package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/view"
)

const maxFormSize = 1 << 20

// parseForm читает тело формы с ограничением размера
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	return r.ParseForm()
}

// formIDs читает все значения поля мультиселекта как ID
func formIDs(r *http.Request, name string) ([]int, error) {
	values := r.PostForm[name]
	ids := make([]int, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			verr := &domain.ValidationError{}
			verr.Add(name, "invalid selection")
			return nil, verr
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// pathID читает числовой параметр маршрута, невалидный ID считается ненайденным ресурсом
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

// formState заполняет состояние формы отправленными значениями и ошибками валидации
func formState(r *http.Request, err error, fields ...string) (*view.Form, bool) {
	form := view.NewForm()
	for _, f := range fields {
		form.Values[f] = r.PostForm.Get(f)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return form, false
	}
	for k, v := range verr.Fields {
		form.Errors[k] = v
	}
	return form, true
}
