package domain

import "errors"

// Доменные ошибки веб-клиента
var (
	// ErrNotFound возвращается когда ресурс не найден
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized возвращается когда пользователь не авторизован или сессия истекла
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden возвращается при попытке доступа к чужому ресурсу
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidToken возвращается когда подпись cookie сессии невалидна
	ErrInvalidToken = errors.New("invalid token")

	// ErrSessionNotFound возвращается когда сессия отсутствует в хранилище
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired возвращается когда срок действия сессии истек
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidState возвращается когда state из OAuth callback не совпадает с cookie
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrUnknownProvider возвращается для неподдерживаемого OAuth провайдера
	ErrUnknownProvider = errors.New("unknown oauth provider")
)

// ValidationError содержит ошибки валидации полей формы
type ValidationError struct {
	Fields map[string]string
	order  []string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Add добавляет ошибку для поля
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = message
}

// First возвращает сообщение первого добавленного поля
func (e *ValidationError) First() string {
	for _, field := range e.order {
		if msg, ok := e.Fields[field]; ok {
			return msg
		}
	}
	return e.Error()
}

// HasErrors возвращает true если есть хотя бы одна ошибка
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
