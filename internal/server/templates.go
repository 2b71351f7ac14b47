package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/Zachkp/folio/internal/i18n"
	"github.com/Zachkp/folio/internal/reveal"
	"github.com/Zachkp/folio/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFiles embed.FS

func staticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// revealEntries are the animated blocks of the page. Blocks of one section
// that enter the viewport together are staggered by the reveal scheduler.
var revealEntries = []reveal.Entry{
	{ID: "home-greeting", Section: "home"},
	{ID: "home-role", Section: "home"},
	{ID: "home-intro", Section: "home"},
	{ID: "home-avatar", Section: "home"},
	{ID: "about-title", Section: "about"},
	{ID: "about-profile", Section: "about"},
	{ID: "about-text", Section: "about"},
	{ID: "about-stats", Section: "about"},
	{ID: "about-skills", Section: "about"},
	{ID: "experience-title", Section: "experience"},
	{ID: "experience-list", Section: "experience"},
	{ID: "education-title", Section: "education"},
	{ID: "education-list", Section: "education"},
	{ID: "works-title", Section: "works"},
	{ID: "contact-title", Section: "contact"},
	{ID: "contact-subtitle", Section: "contact"},
	{ID: "contact-form", Section: "contact"},
}

// observeReveal registers the blocks whose animation has not run yet with
// the visitor's scheduler.
func (s *Server) observeReveal(v *session.Visitor) {
	done := v.RevealedSet()
	for _, e := range revealEntries {
		if !done[e.ID] {
			v.Reveal.Observe(e)
		}
	}
}

func parseTemplates(tr *i18n.Translator) (*template.Template, error) {
	funcs := template.FuncMap{
		"t":     tr.T,
		"upper": strings.ToUpper,
		"add":   func(a, b int) int { return a + b },
		"safeURL": func(s string) template.URL {
			// Overrides are data URLs produced by the upload handler.
			return template.URL(s)
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
