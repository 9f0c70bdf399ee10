package tui

import (
	"errors"

	"github.com/goliatone/go-formdoc/pkg/model"
)

var (
	// ErrAborted is returned when the user interrupts a prompt with Ctrl+C.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned when a choice field has nothing to pick from.
	ErrNoOptions = errors.New("tui: choice field has no options")
)

// OutputFormat selects what Render returns once the session completes.
type OutputFormat string

const (
	// OutputFormatDocuments emits the rendered documents as plain text.
	OutputFormatDocuments OutputFormat = "documents"
	// OutputFormatValues emits the collected values snapshot as JSON.
	OutputFormatValues OutputFormat = "values"
	// OutputFormatJSON emits values and documents together.
	OutputFormatJSON OutputFormat = "json"
)

// Theme holds the strings written around prompts. Zero fields fall back to
// DefaultTheme.
type Theme struct {
	SectionPrefix  string
	ErrorPrefix    string
	RequiredMarker string
}

// DefaultTheme marks required prompts with a trailing asterisk and prints
// headings and errors unadorned.
var DefaultTheme = Theme{RequiredMarker: " *"}

func (t Theme) merge(base Theme) Theme {
	if t.SectionPrefix == "" {
		t.SectionPrefix = base.SectionPrefix
	}
	if t.ErrorPrefix == "" {
		t.ErrorPrefix = base.ErrorPrefix
	}
	if t.RequiredMarker == "" {
		t.RequiredMarker = base.RequiredMarker
	}
	return t
}

// SubmitTransformer rewrites the collected values before documents are
// produced.
type SubmitTransformer func(model.Values) (model.Values, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme overrides the prompt decorations; empty fields keep the defaults.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme.merge(DefaultTheme)
	}
}

// WithReview asks for confirmation after the last prompt and restarts the
// pass, keeping answers as defaults, when the user declines.
func WithReview(enabled bool) Option {
	return func(r *Renderer) {
		r.review = enabled
	}
}

// WithPageSize limits how many options choice prompts show at once.
func WithPageSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.pageSize = n
		}
	}
}
