package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/middleware"
)

//go:embed templates
var templatesFS embed.FS

var funcMap = template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"lower": strings.ToLower,
}

var (
	templatesOnce sync.Once
	pageSets      map[string]*template.Template
	partialSet    *template.Template
	templatesErr  error
)

func loadTemplates() {
	partialSet, templatesErr = template.New("partials").Funcs(funcMap).ParseFS(templatesFS, "templates/partials/*.html")
	if templatesErr != nil {
		return
	}

	pages, err := templatesFS.ReadDir("templates/pages")
	if err != nil {
		templatesErr = err
		return
	}
	pageSets = make(map[string]*template.Template, len(pages))
	for _, entry := range pages {
		name := entry.Name()
		t, err := template.New("base.html").Funcs(funcMap).ParseFS(templatesFS,
			"templates/layouts/base.html",
			"templates/partials/*.html",
			"templates/pages/"+name,
		)
		if err != nil {
			templatesErr = fmt.Errorf("template %s: %w", name, err)
			return
		}
		pageSets[name] = t
	}
}

// RenderTemplate renders a page with the base layout
func RenderTemplate(w http.ResponseWriter, templateName string, data map[string]interface{}) error {
	templatesOnce.Do(loadTemplates)
	if templatesErr != nil {
		http.Error(w, "Error loading template: "+templatesErr.Error(), http.StatusInternalServerError)
		return templatesErr
	}
	t, ok := pageSets[templateName]
	if !ok {
		err := fmt.Errorf("unknown page template %q", templateName)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	return execute(w, t, "base.html", data)
}

// RenderPartial renders one named partial (for HTMX responses)
func RenderPartial(w http.ResponseWriter, name string, data map[string]interface{}) error {
	templatesOnce.Do(loadTemplates)
	if templatesErr != nil {
		http.Error(w, "Error loading template: "+templatesErr.Error(), http.StatusInternalServerError)
		return templatesErr
	}
	return execute(w, partialSet, name, data)
}

// execute renders into a buffer first so a template error never leaves half a page
func execute(w http.ResponseWriter, t *template.Template, name string, data map[string]interface{}) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		logging.Error("Template render failed", "template", name, "error", err)
		http.Error(w, "Error rendering template: "+err.Error(), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// getThemeFromRequest returns the theme resolved by the theme middleware
func getThemeFromRequest(r *http.Request) constants.Theme {
	return middleware.ThemeFrom(r.Context())
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
