package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gal/timber-web/internal/domain"
)

type applyRequest struct {
	Message string `json:"message"`
}

// ApplyToProject submits an application from the token holder
func (c *Client) ApplyToProject(ctx context.Context, token string, projectID int, message string) (*domain.Application, error) {
	app, err := Do[*domain.Application](ctx, c, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/projects/%d/apply", projectID),
		Body:   applyRequest{Message: message},
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if app == nil {
		return &domain.Application{ProjectID: projectID, Message: message}, nil
	}
	return app, nil
}

// GetApplicationsByProjectID returns the applications submitted to a project
func (c *Client) GetApplicationsByProjectID(ctx context.Context, token string, projectID int) ([]domain.Application, error) {
	apps, err := Do[[]domain.Application](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/projects/%d/applications", projectID),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(apps), nil
}

// GetOwnApplications returns the applications submitted by the token holder
func (c *Client) GetOwnApplications(ctx context.Context, token string) ([]domain.Application, error) {
	apps, err := Do[[]domain.Application](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/applications",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(apps), nil
}
