package render

import (
	"context"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Renderer turns a configuration and a values snapshot into one output
// format. Name keys the renderer in a Registry.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, cfg model.Configuration, options RenderOptions) ([]byte, error)
}

// Interactive is implemented by renderers that read answers from a terminal
// while rendering. Request/response surfaces must refuse them.
type Interactive interface {
	Interactive() bool
}

// IsInteractive reports whether r prompts the user.
func IsInteractive(r Renderer) bool {
	i, ok := r.(Interactive)
	return ok && i.Interactive()
}
