// Package apiclient is a thin wrapper over the Timber REST API.
//
// Every endpoint answers with the same envelope, {"detail": "success"|"error", "msg": ..., "data": ...}.
// Do sends one request and returns the envelope data or a classified error. There are no
// retries, caching or batching here; callers decide what to do with a failure.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DetailSuccess marks a successful envelope
	DetailSuccess = "success"
	// DetailError marks an application-level error envelope
	DetailError = "error"

	maxBodySize = 4 << 20
)

// Envelope is the generic response shape of the API
type Envelope[T any] struct {
	Detail string `json:"detail"`
	Msg    string `json:"msg"`
	Data   T      `json:"data"`
}

// Request describes a single API call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Token is sent as a bearer token when not empty
	Token string
}

// Client sends requests to the Timber API
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the given base URL
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute: %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// URL returns the absolute URL for an API path
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// Do sends the request and decodes the envelope data into T.
//
// Errors are classified from the lowest level that is available: a non-2xx response yields
// *ResponseError, a request that got no response yields *TransportError, and a 2xx envelope
// with detail "error" yields *EnvelopeError. Anything else (building the request, decoding
// a 2xx body) comes back as a plain wrapped error.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var zero T

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed", "method", req.Method, "path", req.Path, "error", err)
		return zero, &TransportError{Method: req.Method, URL: httpReq.URL.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return zero, &TransportError{Method: req.Method, URL: httpReq.URL.Redacted(), Err: err}
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respErr := &ResponseError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
		var env Envelope[json.RawMessage]
		if json.Unmarshal(body, &env) == nil {
			respErr.Msg = env.Msg
		}
		return zero, respErr
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return zero, nil
	}

	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.Path, err)
	}

	if env.Detail == DetailError {
		return zero, &EnvelopeError{Msg: env.Msg}
	}

	return env.Data, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s request: %w", method, req.Path, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	return httpReq, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
