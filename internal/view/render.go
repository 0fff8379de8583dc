// Package view renders the HTML pages of the site.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gal/timber-web/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// Page is the data passed to every page template
type Page struct {
	Title  string
	Viewer *domain.User
	Flash  string
	Data   any
}

// Form carries submitted values and field errors back into a form
type Form struct {
	Values map[string]string
	Errors map[string]string
}

// NewForm creates an empty form state
func NewForm() *Form {
	return &Form{Values: map[string]string{}, Errors: map[string]string{}}
}

// Value returns a submitted value
func (f *Form) Value(name string) string {
	if f == nil {
		return ""
	}
	return f.Values[name]
}

// Error returns the error of a field
func (f *Form) Error(name string) string {
	if f == nil {
		return ""
	}
	return f.Errors[name]
}

// Option is an entry of a skills select
type Option struct {
	Value    int
	Label    string
	Selected bool
}

// TagOptions builds select options from all tags, marking the selected ids
func TagOptions(all []domain.Tag, selected []int) []Option {
	picked := make(map[int]struct{}, len(selected))
	for _, id := range selected {
		picked[id] = struct{}{}
	}

	options := make([]Option, 0, len(all))
	for _, t := range all {
		_, ok := picked[t.ID]
		options = append(options, Option{Value: t.ID, Label: t.Name, Selected: ok})
	}
	return options
}

// Select is the data of the "select" partial
type Select struct {
	Name        string
	Label       string
	Description string
	Multi       bool
	Options     []Option
	Error       string
}

// Renderer executes the embedded page templates
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"markdown": Markdown,
		"avatar": func(u *domain.User) string {
			if u == nil {
				return ""
			}
			return AvatarURL(*u)
		},
		"select": func(name, label string, multi bool, options []Option, errMsg string) Select {
			return Select{Name: name, Label: label, Multi: multi, Options: options, Error: errMsg}
		},
	}

	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials/*.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes a page with the given status code
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
