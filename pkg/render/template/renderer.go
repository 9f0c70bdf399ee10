// Package template is the engine seam behind the html renderer. Engines load
// named templates from a directory or an fs.FS and render them with a data
// map; the pongo subpackage is the pongo2 implementation.
package template

import "io"

// Filter transforms a piped template value. param is nil when the filter is
// used without an argument.
type Filter func(input any, param any) (any, error)

// TemplateRenderer renders templates by name or from inline source. When out
// is given the result is also streamed to each writer.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
	// RegisterFilter fails when name is already taken.
	RegisterFilter(name string, fn Filter) error
	// GlobalContext merges data into what every render sees. data must be a
	// map with string keys.
	GlobalContext(data any) error
}
