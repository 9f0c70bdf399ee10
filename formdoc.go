package formdoc

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/lint"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/normalize"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/visibility"
)

// Configuration aliases the canonical configuration model.
type Configuration = model.Configuration

// Values aliases a values snapshot keyed by field name.
type Values = model.Values

// RenderOptions describes per-request values, errors and template selection.
type RenderOptions = render.RenderOptions

// Normalize converts a decoded JSON or YAML document into its canonical form.
func Normalize(raw any) Configuration {
	return normalize.Configuration(raw)
}

// DeriveState reports the visibility and effective required flag of every
// section and field for the given values.
func DeriveState(form model.Form, values Values) visibility.State {
	return visibility.DeriveState(form, values)
}

// RenderDocuments expands every template of cfg against values.
func RenderDocuments(cfg Configuration, values Values) document.Result {
	return document.Render(cfg.Templates, cfg.Form, values)
}

// Validate checks that every visible required field has a value.
func Validate(cfg Configuration, values Values) schema.Result {
	return schema.Validate(cfg.Form, values)
}

// Lint reports authoring issues in cfg.
func Lint(cfg Configuration) lint.Report {
	return lint.Check(cfg)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewRegistry returns a registry holding the html, text and json renderers.
func NewRegistry() (*render.Registry, error) {
	return orchestrator.DefaultRegistry()
}

// Generate renders cfg with the named renderer. An empty name selects text.
func Generate(ctx context.Context, cfg Configuration, rendererName string, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Configuration: &cfg,
		Renderer:      rendererName,
		RenderOptions: opts,
	})
}

// GenerateFromSource parses a JSON or YAML configuration document and renders
// it with the named renderer.
func GenerateFromSource(ctx context.Context, source []byte, rendererName string, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source:        source,
		Renderer:      rendererName,
		RenderOptions: opts,
	})
}

// WithTheme returns render options carrying a go-theme renderer configuration.
func WithTheme(opts RenderOptions, cfg *theme.RendererConfig) RenderOptions {
	opts.Theme = cfg
	return opts
}

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// EmbeddedAssets exposes the stylesheet served next to rendered forms.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formdoc.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return html.AssetsFS()
}
