package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/gal/timber-web/internal/apiclient"
	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/middleware"
	"github.com/gal/timber-web/internal/service"
	"github.com/gal/timber-web/internal/view"
)

const testCookie = "timber_session"

var (
	tagGo   = domain.Tag{ID: 1, Name: "Go"}
	tagRust = domain.Tag{ID: 2, Name: "Rust"}

	owner = domain.User{ID: 3, Username: "bob", Tags: []domain.Tag{tagRust}}
)

// fakeTimberAPI имитирует удаленный Timber API
type fakeTimberAPI struct {
	mu       sync.Mutex
	viewer   domain.User
	tags     []domain.Tag
	projects []domain.Project
	apps     []domain.Application
	created  []domain.NewProject
	updates  []domain.ProfileUpdate
	down     bool
}

func newFakeTimberAPI(viewer domain.User) *fakeTimberAPI {
	return &fakeTimberAPI{
		viewer: viewer,
		tags:   []domain.Tag{tagGo, tagRust},
		projects: []domain.Project{
			{ID: 10, Name: "Compiler", Owner: owner, OwnerID: owner.ID, RequiredSkills: []domain.Tag{tagGo}},
			{ID: 11, Name: "Own tool", Owner: viewer, OwnerID: viewer.ID, RequiredSkills: []domain.Tag{tagGo},
				Applications: []domain.Application{{ID: 1, ProjectID: 11, UserID: owner.ID}}},
			{ID: 12, Name: "Game engine", Owner: owner, OwnerID: owner.ID, RequiredSkills: []domain.Tag{tagRust}, PreferredSkills: []domain.Tag{tagGo}},
		},
	}
}

func (f *fakeTimberAPI) router(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			down := f.down
			f.mu.Unlock()
			if down {
				writeAPI(t, w, http.StatusInternalServerError, "error", "database is down", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		writeAPI(t, w, http.StatusOK, "success", "", f.tags)
	})
	r.Get("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		writeAPI(t, w, http.StatusOK, "success", "", f.projects)
	})
	r.Post("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		var np domain.NewProject
		require.NoError(t, json.NewDecoder(r.Body).Decode(&np))
		f.mu.Lock()
		f.created = append(f.created, np)
		f.mu.Unlock()
		writeAPI(t, w, http.StatusOK, "success", "", domain.Project{ID: 99, Name: np.Name, Owner: f.viewer})
	})
	r.Get("/api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := f.project(chi.URLParam(r, "id")); ok {
			writeAPI(t, w, http.StatusOK, "success", "", p)
			return
		}
		writeAPI(t, w, http.StatusNotFound, "error", "project not found", nil)
	})
	r.Get("/api/projects/{id}/applications", func(w http.ResponseWriter, r *http.Request) {
		p, _ := f.project(chi.URLParam(r, "id"))
		writeAPI(t, w, http.StatusOK, "success", "", p.Applications)
	})
	r.Post("/api/projects/{id}/apply", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		app := domain.Application{ID: 50, ProjectID: id, UserID: f.viewer.ID, Message: body.Message}
		f.mu.Lock()
		f.apps = append(f.apps, app)
		f.mu.Unlock()
		writeAPI(t, w, http.StatusOK, "success", "", app)
	})
	r.Get("/api/applications", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeAPI(t, w, http.StatusOK, "success", "", f.apps)
	})
	r.Get("/api/user/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		var owned []domain.Project
		for _, p := range f.projects {
			if p.Owner.ID == id {
				owned = append(owned, p)
			}
		}
		writeAPI(t, w, http.StatusOK, "success", "", owned)
	})
	r.Get("/api/tag/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		preferred := r.URL.Query().Get("skill") == "preferred"
		var matched []domain.Project
		for _, p := range f.projects {
			skills := p.RequiredSkills
			if preferred {
				skills = p.PreferredSkills
			}
			for _, s := range skills {
				if s.ID == id {
					matched = append(matched, p)
				}
			}
		}
		writeAPI(t, w, http.StatusOK, "success", "", matched)
	})
	r.Get("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		writeAPI(t, w, http.StatusOK, "success", "", f.viewer)
	})
	r.Get("/api/auth/callback/{provider}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") != "good-code" {
			writeAPI(t, w, http.StatusUnauthorized, "error", "invalid code", nil)
			return
		}
		writeAPI(t, w, http.StatusOK, "success", "", domain.TokenPair{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
		})
	})
	r.Put("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		var upd domain.ProfileUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
		f.mu.Lock()
		f.updates = append(f.updates, upd)
		f.mu.Unlock()
		user := f.viewer
		user.Username = upd.Username
		user.Description = upd.Description
		user.AvatarURL = upd.AvatarURL
		user.Tags = upd.Tags
		writeAPI(t, w, http.StatusOK, "success", "", user)
	})
	return r
}

func (f *fakeTimberAPI) project(rawID string) (domain.Project, bool) {
	id, _ := strconv.Atoi(rawID)
	for _, p := range f.projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

func writeAPI(t *testing.T, w http.ResponseWriter, status int, detail, msg string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"detail": detail, "msg": msg, "data": data})
}

// testEnv собирает обработчики страниц поверх фейкового API
type testEnv struct {
	api      *fakeTimberAPI
	auth     *service.AuthService
	sessions *memorySessions
	viewer   *service.Viewer
	router   http.Handler

	sessionRouter http.Handler
}

func newTestEnv(t *testing.T, user domain.User) *testEnv {
	t.Helper()

	fake := newFakeTimberAPI(user)
	srv := httptest.NewServer(fake.router(t))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := apiclient.New(srv.URL, 2*time.Second, logger)
	require.NoError(t, err)

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	pages := NewPages(renderer, logger, testCookie)
	sessions := newMemorySessions()
	authService := service.NewAuthService(client, sessions, "test-secret-0123456789", time.Hour, []string{"google"},
		func(provider string) string { return "http://web.test/oauth/callback/" + provider })
	auth := NewAuthHandler(authService, pages, []string{"google"}, testCookie, false)
	projects := NewProjectHandler(service.NewProjectService(client), pages)
	profile := NewProfileHandler(service.NewProfileService(client), pages)

	u := user
	env := &testEnv{
		api:      fake,
		auth:     authService,
		sessions: sessions,
		viewer:   &service.Viewer{SessionID: "sid", AccessToken: "token", User: &u},
	}

	mount := func(r chi.Router) {
		r.NotFound(pages.NotFound)
		r.Get("/legal", pages.Legal)
		r.Get("/login", auth.Login)
		r.Get("/auth/signin/{provider}", auth.SignIn)
		r.Get("/oauth/callback/{provider}", auth.Callback)
		r.Post("/logout", auth.Logout)
		r.With(middleware.RequireViewer).Get("/profile", profile.Edit)
		r.With(middleware.RequireViewer).Post("/profile", profile.Update)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireProfile)
			r.Get("/", projects.Landing)
			r.Get("/browse", projects.Browse)
			r.Get("/applications", projects.Applications)
			r.Post("/projects", projects.CreateProject)
			r.Get("/projects/{id}", projects.Project)
			r.Post("/projects/{id}/apply", projects.Apply)
			r.Get("/review/{id}", projects.Review)
		})
	}

	// router подставляет env.viewer, sessionRouter загружает пользователя по cookie
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if env.viewer != nil {
				r = r.WithContext(middleware.WithViewer(r.Context(), env.viewer))
			}
			next.ServeHTTP(w, r)
		})
	})
	mount(r)
	env.router = r

	sr := chi.NewRouter()
	sr.Use(middleware.Session(authService, testCookie, pages.HandleError))
	mount(sr)
	env.sessionRouter = sr

	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// doWithSession выполняет запрос через middleware сессии с cookie
func (e *testEnv) doWithSession(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.sessionRouter.ServeHTTP(rec, req)
	return rec
}

func (f *fakeTimberAPI) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func completeUser() domain.User {
	return domain.User{ID: 7, Username: "ada", Tags: []domain.Tag{tagGo}}
}

// memorySessions хранит сессии в памяти
type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]domain.Session{}}
}

func (m *memorySessions) Create(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

func (m *memorySessions) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) UpdateTokens(_ context.Context, sessionID string, tokens domain.TokenPair, accessExpiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.AccessToken = tokens.AccessToken
	s.AccessExpiresAt = accessExpiresAt
	m.sessions[sessionID] = s
	return nil
}

func (m *memorySessions) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memorySessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memorySessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
