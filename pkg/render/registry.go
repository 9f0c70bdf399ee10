package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

var (
	// ErrRendererNotFound is returned when a name matches no renderer.
	ErrRendererNotFound = errors.New("render: renderer not found")
	// ErrNoRenderers is returned by Resolve on an empty registry.
	ErrNoRenderers = errors.New("render: no renderers registered")
)

// Registry maps renderer names to renderers. One registry is shared by the
// CLI, the orchestrator and the HTTP server, so access is synchronised.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Renderer
	fallback string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds renderer under its Name. Names are unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.byName[name] = renderer
	return nil
}

// RegisterAll registers every renderer and reports all failures together.
func (r *Registry) RegisterAll(renderers ...Renderer) error {
	var errs error
	for _, renderer := range renderers {
		errs = multierr.Append(errs, r.Register(renderer))
	}
	return errs
}

func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// SetFallback names the renderer Resolve returns for an empty name.
func (r *Registry) SetFallback(name string) {
	r.mu.Lock()
	r.fallback = name
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.byName[name]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrRendererNotFound, name, r.sortedNames())
}

// Resolve looks name up. An empty name picks the fallback renderer, or the
// alphabetically first one when the fallback is unset or unregistered. A
// non-empty unknown name is an error.
func (r *Registry) Resolve(name string) (Renderer, error) {
	if name != "" {
		return r.Get(name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.byName[r.fallback]; ok {
		return renderer, nil
	}
	names := r.sortedNames()
	if len(names) == 0 {
		return nil, ErrNoRenderers
	}
	return r.byName[names[0]], nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
