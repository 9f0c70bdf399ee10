// Package orchestrator runs the full pipeline behind one render: resolve a
// configuration from whatever the caller holds, normalize it, apply
// transformers, optionally lint, then hand it to a named renderer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/lint"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/renderers/text"
	"github.com/goliatone/go-formdoc/pkg/storage"
)

// DefaultRenderer is used when neither the request nor WithDefaultRenderer
// names one.
const DefaultRenderer = "text"

// Option customises an Orchestrator.
type Option func(*Orchestrator)

func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer picks the renderer for requests that leave Renderer
// empty. An unregistered default falls back to the first registered name.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.fallback = name
	}
}

// WithTransformer appends t to the transformers run after normalization.
// Transformers run in registration order.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// WithStrictLint fails Generate on lint errors. Warnings are logged only.
func WithStrictLint() Option {
	return func(o *Orchestrator) {
		o.strict = true
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator is safe for concurrent use once constructed.
type Orchestrator struct {
	registry     *render.Registry
	fallback     string
	transformers []Transformer
	strict       bool
	logger       *zap.Logger
	setupErr     error
}

// New builds an Orchestrator. Without WithRegistry it uses DefaultRegistry;
// a failure there surfaces on the first Generate call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		fallback: DefaultRenderer,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	if o.registry == nil {
		o.registry, o.setupErr = DefaultRegistry()
		if o.setupErr != nil {
			o.setupErr = fmt.Errorf("orchestrator: default renderers: %w", o.setupErr)
		}
	}
	return o
}

// Request carries one render. The configuration is taken from the first
// populated source in field order.
type Request struct {
	Configuration *model.Configuration
	// Document is validated and normalized before use.
	Document storage.Document
	// Source is an encoded JSON or YAML configuration.
	Source []byte
	// Path names a JSON or YAML configuration file.
	Path string

	// Renderer is a registry name; empty selects the default renderer.
	Renderer string

	RenderOptions render.RenderOptions
}

// Generate renders req and returns the renderer output.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.setupErr != nil {
		return nil, o.setupErr
	}

	started := time.Now()
	cfg, err := o.configuration(req)
	if err != nil {
		return nil, err
	}
	for _, t := range o.transformers {
		if err := t.Transform(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("orchestrator: transform configuration: %w", err)
		}
	}
	if err := o.lint(cfg); err != nil {
		return nil, err
	}

	renderer, err := o.renderer(req.Renderer)
	if err != nil {
		return nil, err
	}
	out, err := renderer.Render(ctx, cfg, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}

	o.logger.Debug("rendered",
		zap.String("renderer", renderer.Name()),
		zap.String("template", req.RenderOptions.Template),
		zap.Int("bytes", len(out)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}

// Registry returns the registry Generate resolves renderers from.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) configuration(req Request) (model.Configuration, error) {
	if req.Configuration != nil {
		return *req.Configuration, nil
	}
	if req.Document != nil {
		doc, err := storage.Validate(req.Document)
		if err != nil {
			return model.Configuration{}, fmt.Errorf("orchestrator: %w", err)
		}
		return doc.Configuration(), nil
	}

	data := req.Source
	if len(data) == 0 {
		if req.Path == "" {
			return model.Configuration{}, errors.New("orchestrator: configuration, document, source or path is required")
		}
		var err error
		if data, err = os.ReadFile(req.Path); err != nil {
			return model.Configuration{}, fmt.Errorf("orchestrator: read %s: %w", req.Path, err)
		}
	}
	doc, err := storage.Parse(data)
	if err != nil {
		return model.Configuration{}, fmt.Errorf("orchestrator: parse configuration: %w", err)
	}
	return doc.Configuration(), nil
}

func (o *Orchestrator) lint(cfg model.Configuration) error {
	report := lint.Check(cfg)
	for _, issue := range report.Issues {
		o.logger.Debug("lint", zap.String("severity", string(issue.Severity)),
			zap.String("code", string(issue.Code)), zap.String("location", issue.Location))
	}
	if !o.strict {
		return nil
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("orchestrator: lint: %w", err)
	}
	return nil
}

func (o *Orchestrator) renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	if name == "" && o.registry.Has(o.fallback) {
		name = o.fallback
	}
	renderer, err := o.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

// DefaultRegistry holds the request/response renderers: html, text and json.
// The interactive tui renderer is registered by callers that own a terminal.
func DefaultRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	registry.SetFallback(DefaultRenderer)
	htmlRenderer, err := html.New()
	if err != nil {
		return registry, err
	}
	return registry, registry.RegisterAll(
		htmlRenderer,
		text.New(),
		text.New(text.WithFormat(text.FormatJSON)),
	)
}
