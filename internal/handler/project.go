package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/middleware"
	"github.com/gal/timber-web/internal/service"
	"github.com/gal/timber-web/internal/view"
)

// ProjectHandler обрабатывает страницы проектов и заявок
type ProjectHandler struct {
	projectService *service.ProjectService
	pages          *Pages
}

// NewProjectHandler создает новый ProjectHandler
func NewProjectHandler(projectService *service.ProjectService, pages *Pages) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		pages:          pages,
	}
}

// Landing обрабатывает GET /
func (h *ProjectHandler) Landing(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	projects, err := h.projectService.Recommended(r.Context(), viewer)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	h.pages.Render(w, r, http.StatusOK, "landing", "Timber", view.LandingData{
		Cards: view.NewProjectCards(projects, view.LayoutStack),
	})
}

// Browse обрабатывает GET /browse?tag=...&skill=...
func (h *ProjectHandler) Browse(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	filter := service.BrowseFilter{Skill: r.URL.Query().Get("skill")}
	if raw := r.URL.Query().Get("tag"); raw != "" {
		tagID, err := strconv.Atoi(raw)
		if err != nil || tagID <= 0 {
			h.pages.RenderError(w, r, http.StatusBadRequest, "tag must be a positive number")
			return
		}
		filter.TagID = tagID
	}

	projects, err := h.projectService.Browse(r.Context(), viewer, filter)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	tags, err := h.projectService.Tags(r.Context(), viewer)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	var selected []int
	if filter.TagID != 0 {
		selected = []int{filter.TagID}
	}

	h.pages.Render(w, r, http.StatusOK, "browse", "Browse projects", view.BrowseData{
		Cards: view.NewProjectCards(projects, view.LayoutStack),
		Tags:  view.TagOptions(tags, selected),
		TagID: filter.TagID,
		Skill: filter.Skill,
	})
}

// Applications обрабатывает GET /applications
func (h *ProjectHandler) Applications(w http.ResponseWriter, r *http.Request) {
	h.renderApplications(w, r, http.StatusOK, view.NewForm(), nil, nil)
}

// CreateProject обрабатывает POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	if err := parseForm(w, r); err != nil {
		h.pages.RenderError(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	input := service.ProjectInput{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		ImageURL:    r.PostForm.Get("image_url"),
	}

	// Ошибки разбора мультиселектов показываем вместе с остальными ошибками формы
	var err error
	input.RequiredSkillIDs, err = formIDs(r, "required_skills")
	if err == nil {
		input.PreferredSkillIDs, err = formIDs(r, "preferred_skills")
	}

	var project *domain.Project
	if err == nil {
		project, err = h.projectService.Create(r.Context(), viewer, input)
	}
	if err != nil {
		form, invalid := formState(r, err, "name", "description", "image_url")
		if !invalid {
			h.pages.HandleError(w, r, err)
			return
		}
		h.renderApplications(w, r, http.StatusUnprocessableEntity, form,
			rawIDs(r.PostForm["required_skills"]), rawIDs(r.PostForm["preferred_skills"]))
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/projects/%d", project.ID), http.StatusSeeOther)
}

func (h *ProjectHandler) renderApplications(w http.ResponseWriter, r *http.Request, status int, form *view.Form, required, preferred []int) {
	viewer := middleware.GetViewerFromContext(r.Context())

	owned, err := h.projectService.Owned(r.Context(), viewer)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	submitted, err := h.projectService.OwnApplications(r.Context(), viewer)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	tags, err := h.projectService.Tags(r.Context(), viewer)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	h.pages.Render(w, r, status, "applications", "Applications", view.ApplicationsData{
		Owned:            view.NewProjectCards(owned, view.LayoutList),
		Submitted:        view.NewApplicationViews(submitted),
		Form:             form,
		RequiredOptions:  view.TagOptions(tags, required),
		PreferredOptions: view.TagOptions(tags, preferred),
	})
}

// Project обрабатывает GET /projects/{id}
func (h *ProjectHandler) Project(w http.ResponseWriter, r *http.Request) {
	h.renderProject(w, r, http.StatusOK, view.NewForm())
}

// Apply обрабатывает POST /projects/{id}/apply
func (h *ProjectHandler) Apply(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	if err := parseForm(w, r); err != nil {
		h.pages.RenderError(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	_, err = h.projectService.Apply(r.Context(), viewer, projectID, r.PostForm.Get("message"))
	if err != nil {
		form, invalid := formState(r, err, "message")
		if !invalid {
			h.pages.HandleError(w, r, err)
			return
		}
		h.renderProject(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/projects/%d?applied=1", projectID), http.StatusSeeOther)
}

func (h *ProjectHandler) renderProject(w http.ResponseWriter, r *http.Request, status int, form *view.Form) {
	viewer := middleware.GetViewerFromContext(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	project, err := h.projectService.Get(r.Context(), viewer, projectID)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	h.pages.Render(w, r, status, "project", project.Name, view.ProjectData{
		Card:    view.NewProjectCard(*project, view.LayoutStack),
		IsOwner: project.IsOwnedBy(viewer.UserID()),
		Applied: r.URL.Query().Get("applied") == "1",
		Form:    form,
	})
}

// Review обрабатывает GET /review/{id}
func (h *ProjectHandler) Review(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	project, apps, err := h.projectService.Review(r.Context(), viewer, projectID)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	h.pages.Render(w, r, http.StatusOK, "review", "Applications for "+project.Name, view.ReviewData{
		Card:         view.NewProjectCard(*project, view.LayoutList),
		Applications: view.NewApplicationViews(apps),
	})
}
