// Package pongo is the pongo2 implementation of template.TemplateRenderer.
// Sources are layered: a directory given with WithDir shadows files of the
// same path in any WithFS bundle.
package pongo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formdoc/pkg/render/template"
)

const defaultExtension = ".tmpl"

type Option func(*settings)

type settings struct {
	dir     string
	bundles []fs.FS
	ext     string
	globals pongo2.Context
	noCache bool
}

// WithDir adds an on-disk template directory in front of the bundles.
func WithDir(dir string) Option {
	return func(s *settings) {
		s.dir = strings.TrimSpace(dir)
	}
}

// WithFS adds a template bundle. Bundles are searched in the order given.
func WithFS(files fs.FS) Option {
	return func(s *settings) {
		if files != nil {
			s.bundles = append(s.bundles, files)
		}
	}
}

// WithExtension sets the suffix RenderTemplate appends to bare names.
func WithExtension(ext string) Option {
	return func(s *settings) {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext != "" {
			s.ext = ext
		}
	}
}

// WithGlobals seeds values every template sees.
func WithGlobals(data map[string]any) Option {
	return func(s *settings) {
		for key, value := range data {
			s.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithoutCache re-parses template files on every render so edits on disk
// show up without a restart.
func WithoutCache() Option {
	return func(s *settings) {
		s.noCache = true
	}
}

// Engine is safe for concurrent renders.
type Engine struct {
	set   *pongo2.TemplateSet
	ext   string
	cache bool

	mu     sync.RWMutex
	parsed map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine over the configured sources. At least one of WithDir
// or WithFS is required.
func New(options ...Option) (*Engine, error) {
	s := settings{ext: defaultExtension, globals: pongo2.Context{}}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}

	var loaders []pongo2.TemplateLoader
	if s.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(s.dir)
		if err != nil {
			return nil, fmt.Errorf("pongo: template dir %s: %w", s.dir, err)
		}
		loaders = append(loaders, local)
	}
	for _, bundle := range s.bundles {
		loaders = append(loaders, pongo2.NewFSLoader(bundle))
	}
	if len(loaders) == 0 {
		return nil, errors.New("pongo: a template dir or fs.FS is required")
	}

	set := pongo2.NewSet("formdoc", loaders...)
	set.Globals = s.globals
	ensureFilter("trim", trimFilter)

	return &Engine{
		set:    set,
		ext:    s.ext,
		cache:  !s.noCache,
		parsed: make(map[string]*pongo2.Template),
	}, nil
}

// RenderTemplate renders the named file, appending the engine extension when
// name has none.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.run(tmpl, name, data, out)
}

func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	return e.run(tmpl, "inline template", data, out)
}

// RegisterFilter installs fn as a pongo2 filter. pongo2 filters are process
// wide, so a name can be registered once per process.
func (e *Engine) RegisterFilter(name string, fn template.Filter) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: filter name and function are required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, adapt(name, fn))
}

func (e *Engine) GlobalContext(data any) error {
	if data == nil {
		return nil
	}
	globals, err := toContext(data)
	if err != nil {
		return fmt.Errorf("pongo: global context: %w", err)
	}
	e.mu.Lock()
	e.set.Globals.Update(globals)
	e.mu.Unlock()
	return nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	if !e.cache {
		tmpl, err := e.set.FromFile(path)
		if err != nil {
			return nil, fmt.Errorf("pongo: load %s: %w", path, err)
		}
		return tmpl, nil
	}

	e.mu.RLock()
	tmpl, ok := e.parsed[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.parsed[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %s: %w", path, err)
	}
	e.parsed[path] = tmpl
	return tmpl, nil
}

func (e *Engine) run(tmpl *pongo2.Template, what string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s data: %w", what, err)
	}

	var sb strings.Builder
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &sb)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: render %s: %w", what, err)
	}

	rendered := sb.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("pongo: write %s: %w", what, err)
		}
	}
	return rendered, nil
}

// toContext passes maps through and flattens structs via their JSON form, so
// templates address fields by json tag.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var ctx pongo2.Context
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("expected an object, got %T", data)
	}
	return ctx, nil
}

func adapt(name string, fn template.Filter) pongo2.FilterFunction {
	return func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
}

func ensureFilter(name string, fn pongo2.FilterFunction) {
	if !pongo2.FilterExists(name) {
		_ = pongo2.RegisterFilter(name, fn)
	}
}

func trimFilter(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
