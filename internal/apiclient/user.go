package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gal/timber-web/internal/domain"
)

// GetProfile returns the profile of the token holder
func (c *Client) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	user, err := Do[*domain.User](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/profile",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// GetProfileByID returns another user's public profile
func (c *Client) GetProfileByID(ctx context.Context, token string, userID int) (*domain.User, error) {
	user, err := Do[*domain.User](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/profile/%d", userID),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// UpdateProfile replaces the editable profile fields of the token holder
func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := Do[*domain.User](ctx, c, Request{
		Method: http.MethodPut,
		Path:   "/api/profile",
		Body:   update,
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
