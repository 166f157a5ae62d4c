// Package web holds the server-rendered dashboard pages.
package web

import (
	"embed"
	"html/template"
	"io"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLanding  = "landing"
	PageAnalysis = "analysis"
)

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"moreRowsText": func() string { return intake.MoreRowsText },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named page with data.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	return r.tmpl.ExecuteTemplate(w, page, data)
}
