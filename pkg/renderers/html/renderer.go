// Package html renders a configuration as a standalone HTML form with the
// visibility state of each item baked into data attributes, followed by a
// preview of the documents produced from the current values.
package html

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	rendertemplate "github.com/goliatone/go-formdoc/pkg/render/template"
	"github.com/goliatone/go-formdoc/pkg/render/template/pongo"
)

const (
	Name         = "html"
	DefaultTitle = "formdoc"
	formTemplate = "templates/form"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	title            string
	stylesheet       *string
	documents        bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk, shadowing the
// bundle file by file. Templates are re-read on every render.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if title != "" {
			cfg.title = title
		}
	}
}

// WithStylesheet replaces the embedded stylesheet. An empty string disables
// inline styles.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}

// WithDocuments toggles the rendered document preview below the form.
func WithDocuments(enabled bool) Option {
	return func(cfg *config) {
		cfg.documents = enabled
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	title      string
	stylesheet string
	documents  bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		title:      DefaultTitle,
		documents:  true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []pongo.Option{pongo.WithFS(cfg.templateFS), pongo.WithExtension(".tmpl")}
		if cfg.templatesDir != "" {
			engineOpts = append(engineOpts, pongo.WithDir(cfg.templatesDir), pongo.WithoutCache())
		}
		engine, err := pongo.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}

	return &Renderer{
		templates:  renderer,
		title:      cfg.title,
		stylesheet: stylesheet,
		documents:  cfg.documents,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, cfg model.Configuration, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var documents document.Result
	if r.documents {
		templates, err := render.SelectTemplates(cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		documents = document.Render(templates, cfg.Form, opts.Values)
	}

	view := buildView(cfg, opts, r.title, r.stylesheet, documents)
	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": view,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
