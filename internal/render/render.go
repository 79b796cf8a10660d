// Package render provides the echo.Renderer used for server-rendered pages,
// most importantly the error view shown to browsers in production.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed views/*.html
var viewsFS embed.FS

// Renderer executes named html/template definitions.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded views. Every view is a {{define "name"}} block and
// is rendered by that name.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse views: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	if r.templates.Lookup(name) == nil {
		return fmt.Errorf("view %q not found", name)
	}
	return r.templates.ExecuteTemplate(w, name, data)
}
