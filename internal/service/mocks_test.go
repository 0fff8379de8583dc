package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/repository"
)

type apiMock struct{ mock.Mock }

var (
	_ AuthAPI    = (*apiMock)(nil)
	_ ProjectAPI = (*apiMock)(nil)
	_ ProfileAPI = (*apiMock)(nil)
)

func (m *apiMock) SignInURL(provider, redirectURI, state string) string {
	args := m.Called(provider, redirectURI, state)
	return args.String(0)
}

func (m *apiMock) ExchangeCode(ctx context.Context, provider, code, state, redirectURI string) (*domain.TokenPair, error) {
	args := m.Called(ctx, provider, code, state, redirectURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *apiMock) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *apiMock) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *apiMock) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, token, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *apiMock) GetProjects(ctx context.Context, token string) ([]domain.Project, error) {
	args := m.Called(ctx, token)
	return projectsArg(args)
}

func (m *apiMock) GetProjectByID(ctx context.Context, token string, projectID int) (*domain.Project, error) {
	args := m.Called(ctx, token, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *apiMock) GetProjectsByOwnerID(ctx context.Context, token string, userID int) ([]domain.Project, error) {
	args := m.Called(ctx, token, userID)
	return projectsArg(args)
}

func (m *apiMock) GetProjectsByRequiredSkill(ctx context.Context, token string, tagID int) ([]domain.Project, error) {
	args := m.Called(ctx, token, tagID)
	return projectsArg(args)
}

func (m *apiMock) GetProjectsByPreferredSkill(ctx context.Context, token string, tagID int) ([]domain.Project, error) {
	args := m.Called(ctx, token, tagID)
	return projectsArg(args)
}

func (m *apiMock) CreateProject(ctx context.Context, token string, project domain.NewProject) (*domain.Project, error) {
	args := m.Called(ctx, token, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *apiMock) ApplyToProject(ctx context.Context, token string, projectID int, message string) (*domain.Application, error) {
	args := m.Called(ctx, token, projectID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *apiMock) GetApplicationsByProjectID(ctx context.Context, token string, projectID int) ([]domain.Application, error) {
	args := m.Called(ctx, token, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *apiMock) GetOwnApplications(ctx context.Context, token string) ([]domain.Application, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *apiMock) GetTags(ctx context.Context, token string) ([]domain.Tag, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

func projectsArg(args mock.Arguments) ([]domain.Project, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

type sessionRepoMock struct{ mock.Mock }

var _ repository.SessionRepository = (*sessionRepoMock)(nil)

func (m *sessionRepoMock) Create(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *sessionRepoMock) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *sessionRepoMock) UpdateTokens(ctx context.Context, sessionID string, tokens domain.TokenPair, accessExpiresAt time.Time) error {
	return m.Called(ctx, sessionID, tokens, accessExpiresAt).Error(0)
}

func (m *sessionRepoMock) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *sessionRepoMock) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
