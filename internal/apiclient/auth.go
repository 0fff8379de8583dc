package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gal/timber-web/internal/domain"
)

// SignInURL returns the API URL that starts the OAuth flow for a provider
func (c *Client) SignInURL(provider, redirectURI, state string) string {
	return c.URL("/api/auth/signin/"+url.PathEscape(provider), url.Values{
		"redirect_uri": {redirectURI},
		"state":        {state},
	})
}

// ExchangeCode trades the provider code from the OAuth callback for API tokens
func (c *Client) ExchangeCode(ctx context.Context, provider, code, state, redirectURI string) (*domain.TokenPair, error) {
	tokens, err := Do[*domain.TokenPair](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/auth/callback/" + url.PathEscape(provider),
		Query: url.Values{
			"code":         {code},
			"state":        {state},
			"redirect_uri": {redirectURI},
		},
	})
	if err != nil {
		return nil, err
	}
	if tokens == nil || tokens.AccessToken == "" {
		return nil, fmt.Errorf("exchange code: %w", domain.ErrUnauthorized)
	}
	return tokens, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokens issues a new token pair from a refresh token
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	tokens, err := Do[*domain.TokenPair](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/tokens",
		Body:   refreshRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return nil, err
	}
	if tokens == nil || tokens.AccessToken == "" {
		return nil, fmt.Errorf("refresh tokens: %w", domain.ErrUnauthorized)
	}
	return tokens, nil
}
