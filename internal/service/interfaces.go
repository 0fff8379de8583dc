package service

import (
	"context"

	"github.com/gal/timber-web/internal/domain"
)

// AuthAPI is the part of the Timber API used for sign-in
type AuthAPI interface {
	SignInURL(provider, redirectURI, state string) string
	ExchangeCode(ctx context.Context, provider, code, state, redirectURI string) (*domain.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	GetProfile(ctx context.Context, token string) (*domain.User, error)
}

// ProjectAPI is the part of the Timber API used for projects and applications
type ProjectAPI interface {
	GetProjects(ctx context.Context, token string) ([]domain.Project, error)
	GetProjectByID(ctx context.Context, token string, projectID int) (*domain.Project, error)
	GetProjectsByOwnerID(ctx context.Context, token string, userID int) ([]domain.Project, error)
	GetProjectsByRequiredSkill(ctx context.Context, token string, tagID int) ([]domain.Project, error)
	GetProjectsByPreferredSkill(ctx context.Context, token string, tagID int) ([]domain.Project, error)
	CreateProject(ctx context.Context, token string, project domain.NewProject) (*domain.Project, error)
	ApplyToProject(ctx context.Context, token string, projectID int, message string) (*domain.Application, error)
	GetApplicationsByProjectID(ctx context.Context, token string, projectID int) ([]domain.Application, error)
	GetOwnApplications(ctx context.Context, token string) ([]domain.Application, error)
	GetTags(ctx context.Context, token string) ([]domain.Tag, error)
}

// ProfileAPI is the part of the Timber API used for profile editing
type ProfileAPI interface {
	GetProfile(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)
	GetTags(ctx context.Context, token string) ([]domain.Tag, error)
}

// Viewer is the signed-in user of the current request
type Viewer struct {
	SessionID   string
	AccessToken string
	User        *domain.User
}

// UserID returns the API id of the viewer
func (v *Viewer) UserID() int {
	if v == nil || v.User == nil {
		return 0
	}
	return v.User.ID
}
