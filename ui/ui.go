package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/services/search"
)

//go:embed templates/*.html static/*
var Files embed.FS

const (
	Title = "Local Search Engine"

	templatePage    = "page"
	templateResults = "results_pane"

	refreshWhileLoadingSeconds = 1
)

// Pane is everything the results pane depends on.
type Pane struct {
	Results []search.Result
	Loading bool
	Failed  bool
}

func (p Pane) ShowEmptyNotice() bool {
	return len(p.Results) == 0 && !p.Loading && !p.Failed
}

type Page struct {
	Title          string
	Query          string
	Loading        bool
	Error          string
	RefreshSeconds int
	Pane           Pane
}

func NewPage(snapshot controller.Snapshot) Page {
	return Page{
		Title:          Title,
		Query:          snapshot.Query,
		Loading:        snapshot.Loading,
		Error:          snapshot.Error,
		RefreshSeconds: refreshWhileLoadingSeconds,
		Pane: Pane{
			Results: snapshot.Results,
			Loading: snapshot.Loading,
			Failed:  len(snapshot.Error) > 0,
		},
	}
}

type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(Files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// Templates is handed to gin so pages render through c.HTML.
func (r *Renderer) Templates() *template.Template {
	return r.templates
}

func (r *Renderer) RenderPage(w io.Writer, page Page) error {
	return r.templates.ExecuteTemplate(w, templatePage, page)
}

// RenderResults has no inputs besides pane, so equal panes give identical markup.
func (r *Renderer) RenderResults(w io.Writer, pane Pane) error {
	return r.templates.ExecuteTemplate(w, templateResults, pane)
}

func (r *Renderer) ResultsHTML(pane Pane) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderResults(&buf, pane); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func StaticFiles() (fs.FS, error) {
	return fs.Sub(Files, "static")
}
