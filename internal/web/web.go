// Package web holds the embedded front page.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

// Template parses the embedded page templates for gin's HTML renderer
func Template() (*template.Template, error) {
	return template.ParseFS(templates, "templates/*.html")
}
