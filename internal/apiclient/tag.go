package apiclient

import (
	"context"
	"net/http"

	"github.com/gal/timber-web/internal/domain"
)

// GetTags returns every known tag
func (c *Client) GetTags(ctx context.Context, token string) ([]domain.Tag, error) {
	tags, err := Do[[]domain.Tag](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/tags",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(tags), nil
}
