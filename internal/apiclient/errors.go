package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gal/timber-web/internal/domain"
)

// EnvelopeError is an application-level error reported by the API in a 2xx envelope
type EnvelopeError struct {
	Msg string
}

func (e *EnvelopeError) Error() string {
	if e.Msg == "" {
		return "api error"
	}
	return "api error: " + e.Msg
}

// ResponseError is returned when the API answers with a non-2xx status
type ResponseError struct {
	StatusCode int
	// Msg is the envelope message when the body could be parsed
	Msg  string
	Body string
}

func (e *ResponseError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("api responded with status %d: %s", e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("api responded with status %d", e.StatusCode)
}

// Is lets errors.Is match status codes against domain sentinels
func (e *ResponseError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case domain.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// TransportError is returned when the request was sent but no response was received
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api request %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of a *ResponseError in the chain, or 0
func StatusCode(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

// Message returns the API supplied message for envelope and response errors
func Message(err error) string {
	var envErr *EnvelopeError
	if errors.As(err, &envErr) {
		return envErr.Msg
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Msg
	}
	return ""
}

// IsNotFound reports whether the API answered 404 or the resource is missing
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsUnauthorized reports whether the API rejected the access token
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
