package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gal/timber-web/internal/domain"
)

// Skill filters for browsing by tag
const (
	SkillRequired  = "required"
	SkillPreferred = "preferred"
)

const (
	maxProjectName   = 100
	maxMessageLength = 2000
	tagFetchLimit    = 4
)

// BrowseFilter narrows the browse page down to one tag
type BrowseFilter struct {
	TagID int
	Skill string
}

// ProjectInput holds the submitted project form
type ProjectInput struct {
	Name              string
	Description       string
	ImageURL          string
	RequiredSkillIDs  []int
	PreferredSkillIDs []int
}

// ProjectService handles project browsing, creation and applications
type ProjectService struct {
	api ProjectAPI
}

// NewProjectService creates a new ProjectService
func NewProjectService(api ProjectAPI) *ProjectService {
	return &ProjectService{api: api}
}

// Recommended returns projects requiring any of the viewer's skills.
// Projects are deduplicated, ordered by the viewer's tag order, and exclude the viewer's own projects.
func (s *ProjectService) Recommended(ctx context.Context, viewer *Viewer) ([]domain.Project, error) {
	tags := viewer.User.Tags
	results := make([][]domain.Project, len(tags))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tagFetchLimit)
	for i, tag := range tags {
		g.Go(func() error {
			projects, err := s.api.GetProjectsByRequiredSkill(gctx, viewer.AccessToken, tag.ID)
			if err != nil {
				return fmt.Errorf("projects for tag %d: %w", tag.ID, err)
			}
			results[i] = projects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	recommended := make([]domain.Project, 0)
	for _, projects := range results {
		for _, p := range projects {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			if p.IsOwnedBy(viewer.UserID()) {
				continue
			}
			recommended = append(recommended, p)
		}
	}

	return recommended, nil
}

// Browse returns all projects or the projects matching the filter
func (s *ProjectService) Browse(ctx context.Context, viewer *Viewer, filter BrowseFilter) ([]domain.Project, error) {
	if filter.TagID == 0 {
		return s.api.GetProjects(ctx, viewer.AccessToken)
	}

	switch filter.Skill {
	case "", SkillRequired:
		return s.api.GetProjectsByRequiredSkill(ctx, viewer.AccessToken, filter.TagID)
	case SkillPreferred:
		return s.api.GetProjectsByPreferredSkill(ctx, viewer.AccessToken, filter.TagID)
	default:
		verr := &domain.ValidationError{}
		verr.Add("skill", "skill must be required or preferred")
		return nil, verr
	}
}

// Get returns a single project
func (s *ProjectService) Get(ctx context.Context, viewer *Viewer, projectID int) (*domain.Project, error) {
	return s.api.GetProjectByID(ctx, viewer.AccessToken, projectID)
}

// Owned returns the viewer's own projects
func (s *ProjectService) Owned(ctx context.Context, viewer *Viewer) ([]domain.Project, error) {
	return s.api.GetProjectsByOwnerID(ctx, viewer.AccessToken, viewer.UserID())
}

// Tags returns every tag for the skill selects
func (s *ProjectService) Tags(ctx context.Context, viewer *Viewer) ([]domain.Tag, error) {
	return s.api.GetTags(ctx, viewer.AccessToken)
}

// Create validates the form and creates a project owned by the viewer
func (s *ProjectService) Create(ctx context.Context, viewer *Viewer, input ProjectInput) (*domain.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	verr := &domain.ValidationError{}
	if input.Name == "" {
		verr.Add("name", "name is required")
	} else if len(input.Name) > maxProjectName {
		verr.Add("name", fmt.Sprintf("name must be at most %d characters", maxProjectName))
	}
	if input.ImageURL != "" && !isHTTPURL(input.ImageURL) {
		verr.Add("image_url", "image url must start with http:// or https://")
	}
	if len(input.RequiredSkillIDs) == 0 {
		verr.Add("required_skills", "select at least one required skill")
	}

	tags, err := s.api.GetTags(ctx, viewer.AccessToken)
	if err != nil {
		return nil, err
	}
	required, ok := resolveTags(tags, input.RequiredSkillIDs)
	if !ok {
		verr.Add("required_skills", "unknown skill selected")
	}
	preferred, ok := resolveTags(tags, input.PreferredSkillIDs)
	if !ok {
		verr.Add("preferred_skills", "unknown skill selected")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	return s.api.CreateProject(ctx, viewer.AccessToken, domain.NewProject{
		Name:            input.Name,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		RequiredSkills:  required,
		PreferredSkills: preferred,
	})
}

// Apply submits an application to someone else's project
func (s *ProjectService) Apply(ctx context.Context, viewer *Viewer, projectID int, message string) (*domain.Application, error) {
	message = strings.TrimSpace(message)

	verr := &domain.ValidationError{}
	if len(message) > maxMessageLength {
		verr.Add("message", fmt.Sprintf("message must be at most %d characters", maxMessageLength))
		return nil, verr
	}

	project, err := s.api.GetProjectByID(ctx, viewer.AccessToken, projectID)
	if err != nil {
		return nil, err
	}
	if project.IsOwnedBy(viewer.UserID()) {
		verr.Add("message", "you cannot apply to your own project")
		return nil, verr
	}

	return s.api.ApplyToProject(ctx, viewer.AccessToken, projectID, message)
}

// Review returns a project owned by the viewer together with its applications
func (s *ProjectService) Review(ctx context.Context, viewer *Viewer, projectID int) (*domain.Project, []domain.Application, error) {
	project, err := s.api.GetProjectByID(ctx, viewer.AccessToken, projectID)
	if err != nil {
		return nil, nil, err
	}
	if !project.IsOwnedBy(viewer.UserID()) {
		return nil, nil, domain.ErrForbidden
	}

	apps, err := s.api.GetApplicationsByProjectID(ctx, viewer.AccessToken, projectID)
	if err != nil {
		return nil, nil, err
	}

	return project, apps, nil
}

// OwnApplications returns the applications the viewer has submitted
func (s *ProjectService) OwnApplications(ctx context.Context, viewer *Viewer) ([]domain.Application, error) {
	return s.api.GetOwnApplications(ctx, viewer.AccessToken)
}

// resolveTags maps ids to known tags, preserving order and dropping duplicates
func resolveTags(known []domain.Tag, ids []int) ([]domain.Tag, bool) {
	byID := make(map[int]domain.Tag, len(known))
	for _, t := range known {
		byID[t.ID] = t
	}

	seen := make(map[int]struct{}, len(ids))
	result := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		t, ok := byID[id]
		if !ok {
			return nil, false
		}
		result = append(result, t)
	}
	return result, true
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
