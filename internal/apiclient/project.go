package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gal/timber-web/internal/domain"
)

// Skill kinds accepted by the tag projects endpoint
const (
	SkillRequired  = "required"
	SkillPreferred = "preferred"
)

// GetProjects returns all projects
func (c *Client) GetProjects(ctx context.Context, token string) ([]domain.Project, error) {
	projects, err := Do[[]domain.Project](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/projects",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(projects), nil
}

// GetProjectByID returns a single project
func (c *Client) GetProjectByID(ctx context.Context, token string, projectID int) (*domain.Project, error) {
	project, err := Do[*domain.Project](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/projects/%d", projectID),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

// GetProjectsByOwnerID returns projects owned by a user
func (c *Client) GetProjectsByOwnerID(ctx context.Context, token string, userID int) ([]domain.Project, error) {
	projects, err := Do[[]domain.Project](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/user/%d/projects", userID),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(projects), nil
}

// GetProjectsByRequiredSkill returns projects that require the tag
func (c *Client) GetProjectsByRequiredSkill(ctx context.Context, token string, tagID int) ([]domain.Project, error) {
	return c.getProjectsByTag(ctx, token, tagID, SkillRequired)
}

// GetProjectsByPreferredSkill returns projects that prefer the tag
func (c *Client) GetProjectsByPreferredSkill(ctx context.Context, token string, tagID int) ([]domain.Project, error) {
	return c.getProjectsByTag(ctx, token, tagID, SkillPreferred)
}

func (c *Client) getProjectsByTag(ctx context.Context, token string, tagID int, skill string) ([]domain.Project, error) {
	projects, err := Do[[]domain.Project](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/tag/%d/projects", tagID),
		Query:  url.Values{"skill": {skill}},
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(projects), nil
}

// CreateProject creates a project owned by the token holder
func (c *Client) CreateProject(ctx context.Context, token string, project domain.NewProject) (*domain.Project, error) {
	created, err := Do[*domain.Project](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/projects",
		Body:   project,
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("create project: empty response")
	}
	return created, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
