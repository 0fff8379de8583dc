package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gal/timber-web/internal/domain"
)

const (
	maxUsername    = 32
	maxDescription = 5000
)

// ProfileInput holds the submitted profile form
type ProfileInput struct {
	Username    string
	Description string
	AvatarURL   string
	TagIDs      []int
}

// ProfileService handles profile editing
type ProfileService struct {
	api ProfileAPI
}

// NewProfileService creates a new ProfileService
func NewProfileService(api ProfileAPI) *ProfileService {
	return &ProfileService{api: api}
}

// Tags returns every tag for the skills select
func (s *ProfileService) Tags(ctx context.Context, viewer *Viewer) ([]domain.Tag, error) {
	return s.api.GetTags(ctx, viewer.AccessToken)
}

// Update validates the form and saves the viewer's profile
func (s *ProfileService) Update(ctx context.Context, viewer *Viewer, input ProfileInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Description = strings.TrimSpace(input.Description)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)

	verr := &domain.ValidationError{}
	switch {
	case input.Username == "":
		verr.Add("username", "username is required")
	case len(input.Username) > maxUsername:
		verr.Add("username", fmt.Sprintf("username must be at most %d characters", maxUsername))
	}
	if len(input.Description) > maxDescription {
		verr.Add("description", fmt.Sprintf("description must be at most %d characters", maxDescription))
	}
	if input.AvatarURL != "" && !isHTTPURL(input.AvatarURL) {
		verr.Add("avatar_url", "avatar url must start with http:// or https://")
	}
	if len(input.TagIDs) == 0 {
		verr.Add("tags", "select at least one skill")
	}

	known, err := s.api.GetTags(ctx, viewer.AccessToken)
	if err != nil {
		return nil, err
	}
	tags, ok := resolveTags(known, input.TagIDs)
	if !ok {
		verr.Add("tags", "unknown skill selected")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	user, err := s.api.UpdateProfile(ctx, viewer.AccessToken, domain.ProfileUpdate{
		Username:    input.Username,
		Description: input.Description,
		AvatarURL:   input.AvatarURL,
		Tags:        tags,
	})
	if err != nil {
		return nil, err
	}

	viewer.User = user
	return user, nil
}
