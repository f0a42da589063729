package web

import (
	"bytes"
	"html/template"
	"net/http"
)

var LayoutTemplates = []string{
	"templates/layout.html",
}

func NewPage(title string, templates []string, data interface{}) *Page {
	return &Page{
		Title:     title,
		Templates: templates,
		Status:    http.StatusOK,
		Data:      data,
	}
}

type Page struct {
	Title     string
	Templates []string
	Status    int
	Data      interface{}
}

func (p *Page) Render(w http.ResponseWriter, r *http.Request) {
	// If HX-Request header is set, render content template only
	// If the page was loaded directly, render full layout
	if r.Header.Get("HX-Request") == "true" {
		p.render(w, p.Templates, "Content")
	} else {
		p.render(w, append(LayoutTemplates, p.Templates...), "Layout")
	}
}

// render executes into a buffer first so a template error can still be
// reported with a 500.
func (p *Page) render(w http.ResponseWriter, templates []string, name string) {
	tmpl, err := template.New(p.Title).Funcs(templateFuncs()).ParseFS(
		TemplatesFS,
		templates...,
	)
	if err != nil {
		log.Errorf("Failed to parse template: %s", err)
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		log.Errorf("Failed to execute template: %s", err)
		http.Error(w, "Failed to execute template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(p.Status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("Failed to write page: %s", err)
	}
}
