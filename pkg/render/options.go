package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the configuration.
type RenderOptions struct {
	// Values is the snapshot used for visibility, prefill and placeholders.
	Values model.Values
	// Errors surfaces validation feedback keyed by field name.
	Errors map[string][]string
	// Template restricts document output to the template with this label.
	// Empty renders every template.
	Template string
	// Action is the submit target of HTML forms.
	Action string
	// HiddenFields are emitted as hidden inputs alongside the form.
	HiddenFields map[string]string
	// Theme carries design tokens and CSS variables for styled output.
	Theme *theme.RendererConfig
}

// SelectTemplates returns the templates matching opts.Template, or all of
// them when no label is requested.
func SelectTemplates(cfg model.Configuration, opts RenderOptions) ([]model.Template, error) {
	if opts.Template == "" {
		return cfg.Templates, nil
	}
	var out []model.Template
	for _, tpl := range cfg.Templates {
		if tpl.Label == opts.Template {
			out = append(out, tpl)
		}
	}
	if len(out) == 0 {
		return nil, &TemplateNotFoundError{Label: opts.Template}
	}
	return out, nil
}
