package view

import (
	"fmt"
	"html/template"

	"github.com/gal/timber-web/internal/domain"
)

// LandingData is the data of the landing page
type LandingData struct {
	Cards []ProjectCard
}

// BrowseData is the data of the browse page
type BrowseData struct {
	Cards []ProjectCard
	Tags  []Option
	TagID int
	Skill string
}

// ApplicationsData is the data of the applications page
type ApplicationsData struct {
	Owned            []ProjectCard
	Submitted        []ApplicationView
	Form             *Form
	RequiredOptions  []Option
	PreferredOptions []Option
}

// ProjectData is the data of the project detail page
type ProjectData struct {
	Card    ProjectCard
	IsOwner bool
	Applied bool
	Form    *Form
}

// ReviewData is the data of the application review page
type ReviewData struct {
	Card         ProjectCard
	Applications []ApplicationView
}

// ProfileData is the data of the profile form
type ProfileData struct {
	Form       *Form
	TagOptions []Option
	Onboarding bool
}

// LoginData is the data of the login page
type LoginData struct {
	Providers []string
	Next      string
}

// ErrorData is the data of the error page
type ErrorData struct {
	Status  int
	Message string
}

// ApplicationView is an application row
type ApplicationView struct {
	ID           int
	Applicant    Person
	HasApplicant bool
	Message      template.HTML
	ProjectName  string
	ProjectURL   string
	SubmittedAt  string
}

// NewApplicationViews builds rows for applications
func NewApplicationViews(apps []domain.Application) []ApplicationView {
	views := make([]ApplicationView, 0, len(apps))
	for _, a := range apps {
		v := ApplicationView{
			ID:         a.ID,
			Message:    Markdown(a.Message),
			ProjectURL: fmt.Sprintf("/projects/%d", a.ProjectID),
		}
		if a.User != nil {
			v.Applicant = NewPerson(*a.User)
			v.HasApplicant = true
		}
		if a.Project != nil {
			v.ProjectName = a.Project.Name
		}
		if v.ProjectName == "" {
			v.ProjectName = fmt.Sprintf("Project #%d", a.ProjectID)
		}
		if !a.CreatedAt.IsZero() {
			v.SubmittedAt = a.CreatedAt.Format("2 Jan 2006")
		}
		views = append(views, v)
	}
	return views
}
