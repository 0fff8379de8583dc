package view

import (
	"fmt"
	"html/template"

	"github.com/gal/timber-web/internal/domain"
)

// Card layouts
const (
	LayoutStack = "stack"
	LayoutList  = "list"
)

const (
	placeholderImage   = "https://via.placeholder.com/900x600"
	avatarFallbackBase = "https://i.pravatar.cc/600?id="
	popoverProjects    = 5
)

// Person is an owner or collaborator shown in a card popover
type Person struct {
	ID          int
	Username    string
	AvatarURL   string
	Description template.HTML
	Tags        []domain.Tag
	Projects    []domain.Project
}

// ProjectCard is the view model of a single project card
type ProjectCard struct {
	Layout            string
	ID                int
	Name              string
	URL               string
	ReviewURL         string
	ImageURL          string
	Description       template.HTML
	RequiredSkills    []domain.Tag
	PreferredSkills   []domain.Tag
	Owner             Person
	Collaborators     []Person
	ApplicationsLabel string
}

// NewProjectCard builds the card for a project in the given layout
func NewProjectCard(p domain.Project, layout string) ProjectCard {
	card := ProjectCard{
		Layout:            layout,
		ID:                p.ID,
		Name:              p.Name,
		URL:               fmt.Sprintf("/projects/%d", p.ID),
		ReviewURL:         fmt.Sprintf("/review/%d", p.ID),
		ImageURL:          p.ImageURL,
		Description:       Markdown(p.Description),
		RequiredSkills:    p.RequiredSkills,
		PreferredSkills:   p.PreferredSkills,
		Owner:             NewPerson(p.Owner),
		ApplicationsLabel: ApplicationsLabel(p.ApplicationCount()),
	}
	if card.ImageURL == "" {
		card.ImageURL = placeholderImage
	}

	for _, c := range p.CollaboratorsExceptOwner() {
		card.Collaborators = append(card.Collaborators, NewPerson(c))
	}

	return card
}

// NewProjectCards builds cards for a list of projects
func NewProjectCards(projects []domain.Project, layout string) []ProjectCard {
	cards := make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		cards = append(cards, NewProjectCard(p, layout))
	}
	return cards
}

// NewPerson builds the popover model of a user
func NewPerson(u domain.User) Person {
	projects := u.Projects
	if len(projects) > popoverProjects {
		projects = projects[:popoverProjects]
	}

	return Person{
		ID:          u.ID,
		Username:    u.Username,
		AvatarURL:   AvatarURL(u),
		Description: Markdown(u.Description),
		Tags:        u.Tags,
		Projects:    projects,
	}
}

// AvatarURL returns the user's avatar or a generated fallback
func AvatarURL(u domain.User) string {
	if u.AvatarURL != "" {
		return u.AvatarURL
	}
	return fmt.Sprintf("%s%d", avatarFallbackBase, u.ID)
}

// ApplicationsLabel returns "1 Application" or "N Applications"
func ApplicationsLabel(n int) string {
	if n == 1 {
		return "1 Application"
	}
	return fmt.Sprintf("%d Applications", n)
}
