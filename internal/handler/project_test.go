package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/view"
)

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLanding_ShowsRecommendedProjects(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Compiler")
	assert.NotContains(t, body, "Own tool", "own projects are not recommended")
	assert.NotContains(t, body, "Game engine", "project does not require the viewer's skills")
}

func TestLanding_RedirectsAnonymous(t *testing.T) {
	env := newTestEnv(t, completeUser())
	env.viewer = nil

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLanding_RedirectsIncompleteProfile(t *testing.T) {
	env := newTestEnv(t, completeUser())
	env.viewer.User.Tags = nil

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile?onboarding=1", rec.Header().Get("Location"))
}

func TestBrowse(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name:       "all projects",
			query:      "",
			wantStatus: http.StatusOK,
			want:       []string{"Compiler", "Own tool", "Game engine"},
		},
		{
			name:       "required skill",
			query:      "?tag=2&skill=required",
			wantStatus: http.StatusOK,
			want:       []string{"Game engine"},
			notWant:    []string{"Compiler"},
		},
		{
			name:       "preferred skill",
			query:      "?tag=1&skill=preferred",
			wantStatus: http.StatusOK,
			want:       []string{"Game engine"},
			notWant:    []string{"Compiler"},
		},
		{
			name:       "invalid tag",
			query:      "?tag=abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid skill",
			query:      "?tag=1&skill=sometimes",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, completeUser())

			rec := env.do(httptest.NewRequest(http.MethodGet, "/browse"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			for _, s := range tt.want {
				assert.Contains(t, rec.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestProject_NotFound(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/projects/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/projects/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProject_ShowsApplyFormToOthers(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/projects/10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/projects/10/apply"`)
}

func TestProject_OwnerSeesReviewLink(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/projects/11", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `action="/projects/11/apply"`)
	assert.Contains(t, rec.Body.String(), "Review 1 Application")
}

func TestApply_RedirectsAfterSuccess(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(postForm("/projects/10/apply", url.Values{"message": {"I know Go"}}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/10?applied=1", rec.Header().Get("Location"))
	require.Len(t, env.api.apps, 1)
	assert.Equal(t, "I know Go", env.api.apps[0].Message)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/projects/10?applied=1", nil))
	assert.Contains(t, rec.Body.String(), "Your application was sent.")
}

func TestApply_OwnProjectIsRejected(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(postForm("/projects/11/apply", url.Values{"message": {"me"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "you cannot apply to your own project")
	assert.Empty(t, env.api.apps)
}

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(postForm("/projects", url.Values{
		"name":             {"New thing"},
		"description":      {"**bold**"},
		"required_skills":  {"1", "2"},
		"preferred_skills": {"2"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/99", rec.Header().Get("Location"))
	require.Len(t, env.api.created, 1)
	created := env.api.created[0]
	assert.Equal(t, "New thing", created.Name)
	assert.Len(t, created.RequiredSkills, 2)
	assert.Len(t, created.PreferredSkills, 1)
}

func TestCreateProject_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(postForm("/projects", url.Values{
		"name":            {""},
		"image_url":       {"ftp://example.com/x.png"},
		"required_skills": {"1"},
	}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "name is required")
	assert.Contains(t, body, "image url must start with http:// or https://")
	assert.Contains(t, body, `value="ftp://example.com/x.png"`)
	assert.Empty(t, env.api.created)
}

func TestCreateProject_InvalidSelection(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(postForm("/projects", url.Values{
		"name":            {"x"},
		"required_skills": {"not-a-number"},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid selection")
}

func TestApplications_ListsOwnedProjects(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/applications", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Own tool")
	assert.Contains(t, body, `href="/review/11"`)
	assert.Contains(t, body, "1 Application")
	assert.NotContains(t, body, "Compiler")
}

func TestReview(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/review/11", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-application="1"`)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/review/10", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIFailureRendersBadGateway(t *testing.T) {
	env := newTestEnv(t, completeUser())
	env.api.setDown(true)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/browse", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleError_ValidationShowsFirstField(t *testing.T) {
	env := newTestEnv(t, completeUser())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/browse?tag=1&skill=sometimes", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "skill must be required or preferred")

	verr := &domain.ValidationError{}
	verr.Add("name", "name is required")
	verr.Add("image_url", "bad image")
	verr.Add("required_skills", "bad skills")

	pages := NewPages(mustRenderer(t), slog.New(slog.NewTextHandler(io.Discard, nil)), testCookie)
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		pages.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), verr)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name is required")
		assert.NotContains(t, rec.Body.String(), "bad image")
	}
}

func mustRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.NewRenderer()
	require.NoError(t, err)
	return r
}
