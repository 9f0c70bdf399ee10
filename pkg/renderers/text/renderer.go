// Package text renders the documents produced by a configuration's templates
// as plain text or JSON.
package text

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Option func(*Renderer)

// WithFormat selects text or JSON output. Unknown formats fall back to text.
func WithFormat(format Format) Option {
	return func(r *Renderer) {
		switch format {
		case FormatJSON:
			r.format = FormatJSON
		default:
			r.format = FormatText
		}
	}
}

// WithHeaders toggles the "--- label ---" banner printed before each document
// in text output. A single document is printed without a banner regardless.
func WithHeaders(enabled bool) Option {
	return func(r *Renderer) {
		r.headers = enabled
	}
}

// Renderer expands every selected template against the request values.
type Renderer struct {
	format  Format
	headers bool
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{format: FormatText, headers: true}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name is the format name so text and JSON instances can share a registry.
func (r *Renderer) Name() string {
	return string(r.format)
}

func (r *Renderer) ContentType() string {
	if r.format == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, cfg model.Configuration, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	templates, err := render.SelectTemplates(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}
	documents := document.Render(templates, cfg.Form, opts.Values)
	if documents == nil {
		documents = document.Result{}
	}

	if r.format == FormatJSON {
		payload, err := json.MarshalIndent(documents, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("text renderer: encode documents: %w", err)
		}
		return append(payload, '\n'), nil
	}
	return []byte(Plain(documents, r.headers)), nil
}

// Plain joins documents for terminal output.
func Plain(documents document.Result, headers bool) string {
	if len(documents) == 1 || !headers {
		var b strings.Builder
		for i, doc := range documents {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(doc.Text)
		}
		return b.String()
	}

	var b strings.Builder
	for i, doc := range documents {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- %s ---\n", doc.Label)
		b.WriteString(doc.Text)
		if !strings.HasSuffix(doc.Text, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
