package view

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md converts GitHub flavored markdown. Raw HTML in the source is escaped.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown renders user supplied markdown to safe HTML
func Markdown(src string) template.HTML {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
