package handler

import (
	"net/http"
	"strconv"

	"github.com/gal/timber-web/internal/domain"
	"github.com/gal/timber-web/internal/middleware"
	"github.com/gal/timber-web/internal/service"
	"github.com/gal/timber-web/internal/view"
)

// ProfileHandler обрабатывает форму профиля
type ProfileHandler struct {
	profileService *service.ProfileService
	pages          *Pages
}

// NewProfileHandler создает новый ProfileHandler
func NewProfileHandler(profileService *service.ProfileService, pages *Pages) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		pages:          pages,
	}
}

// Edit обрабатывает GET /profile
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())
	user := viewer.User

	form := view.NewForm()
	form.Values["username"] = user.Username
	form.Values["description"] = user.Description
	form.Values["avatar_url"] = user.AvatarURL

	h.render(w, r, http.StatusOK, form, domain.TagIDs(user.Tags), !user.ProfileComplete())
}

// Update обрабатывает POST /profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())
	onboarding := !viewer.User.ProfileComplete()

	if err := parseForm(w, r); err != nil {
		h.pages.RenderError(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	input := service.ProfileInput{
		Username:    r.PostForm.Get("username"),
		Description: r.PostForm.Get("description"),
		AvatarURL:   r.PostForm.Get("avatar_url"),
	}

	tagIDs, err := formIDs(r, "tags")
	if err == nil {
		input.TagIDs = tagIDs
		_, err = h.profileService.Update(r.Context(), viewer, input)
	}
	if err != nil {
		form, invalid := formState(r, err, "username", "description", "avatar_url")
		if !invalid {
			h.pages.HandleError(w, r, err)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, form, rawIDs(r.PostForm["tags"]), onboarding)
		return
	}

	// После онбординга отправляем пользователя на главную
	if onboarding {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, status int, form *view.Form, selected []int, onboarding bool) {
	viewer := middleware.GetViewerFromContext(r.Context())

	tags, err := h.profileService.Tags(r.Context(), viewer)
	if err != nil {
		h.pages.HandleError(w, r, err)
		return
	}

	title := "Edit profile"
	if onboarding || r.URL.Query().Get("onboarding") == "1" {
		title = "Complete your profile"
		onboarding = true
	}

	h.pages.Render(w, r, status, "profile", title, view.ProfileData{
		Form:       form,
		TagOptions: view.TagOptions(tags, selected),
		Onboarding: onboarding,
	})
}

// rawIDs разбирает выбранные значения, пропуская невалидные
func rawIDs(values []string) []int {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		if id, err := strconv.Atoi(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
