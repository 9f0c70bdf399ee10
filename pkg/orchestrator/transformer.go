package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Transformer mutates a normalized configuration before it is rendered.
type Transformer interface {
	Transform(ctx context.Context, cfg *model.Configuration) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, cfg *model.Configuration) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, cfg *model.Configuration) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, cfg)
}

// Chain runs transformers in order, stopping at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, cfg *model.Configuration) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, cfg); err != nil {
				return err
			}
		}
		return nil
	})
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// Fields and sections are addressed by name, templates by label:
//
//	{
//	  "sections": {"企業情報": {"label": "Company"}},
//	  "fields": {"email": {"label": "E-mail", "required": false}},
//	  "templates": {"名称未設定": {"label": "Intake summary"}}
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Sections  map[string]jsonLabelPatch `json:"sections"`
	Fields    map[string]jsonFieldPatch `json:"fields"`
	Templates map[string]jsonLabelPatch `json:"templates"`
}

type jsonLabelPatch struct {
	Label string `json:"label"`
}

type jsonFieldPatch struct {
	Label    string `json:"label"`
	Required *bool  `json:"required"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the patches. Every addressed item must exist. Patching
// a field label does not rewrite placeholders that reference the old label.
func (t *JSONPresetTransformer) Transform(ctx context.Context, cfg *model.Configuration) error {
	if cfg == nil {
		return errors.New("json preset transformer: configuration is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for name, patch := range t.document.Sections {
		found := false
		for i := range cfg.Form.Sections {
			if cfg.Form.Sections[i].Name == name {
				found = true
				if patch.Label != "" {
					cfg.Form.Sections[i].Label = patch.Label
				}
			}
		}
		if !found {
			return fmt.Errorf("json preset transformer: section %q not found", name)
		}
	}

	for name, patch := range t.document.Fields {
		if !patchField(&cfg.Form, name, patch) {
			return fmt.Errorf("json preset transformer: field %q not found", name)
		}
	}

	for label, patch := range t.document.Templates {
		found := false
		for i := range cfg.Templates {
			if cfg.Templates[i].Label == label {
				found = true
				if patch.Label != "" {
					cfg.Templates[i].Label = patch.Label
				}
			}
		}
		if !found {
			return fmt.Errorf("json preset transformer: template %q not found", label)
		}
	}
	return nil
}

func patchField(form *model.Form, name string, patch jsonFieldPatch) bool {
	found := false
	for si := range form.Sections {
		items := form.Sections[si].Fields
		for ii, item := range items {
			fields := item.Fields()
			changed := false
			for fi := range fields {
				if fields[fi].Name != name {
					continue
				}
				found, changed = true, true
				if patch.Label != "" {
					fields[fi].Label = patch.Label
				}
				if patch.Required != nil {
					fields[fi].Required = *patch.Required
				}
			}
			if !changed {
				continue
			}
			if item.IsRow() {
				items[ii] = model.Row(fields...)
			} else {
				items[ii] = model.Single(fields[0])
			}
		}
	}
	return found
}
