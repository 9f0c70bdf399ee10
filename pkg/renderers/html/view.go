package html

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/visibility"
)

type formView struct {
	Title      string
	Action     string
	Stylesheet string
	Theme      themeView
	Hidden     []render.HiddenField
	Sections   []sectionView
	Documents  []document.Document
}

type themeView struct {
	Name         string
	Variant      string
	CSSVarsStyle string
}

type sectionView struct {
	Name      string
	LabelHTML string
	Visible   bool
	Rows      []rowView
}

type rowView struct {
	Multi  bool
	Fields []fieldView
}

type fieldView struct {
	ID        string
	Name      string
	LabelHTML string
	Type      string
	Choice    string
	InputType string
	Visible   bool
	Required  bool
	Value     string
	Options   []optionView
	Errors    []string
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

func buildView(cfg model.Configuration, opts render.RenderOptions, title, stylesheet string, documents document.Result) formView {
	state := visibility.DeriveState(cfg.Form, opts.Values)

	view := formView{
		Title:      title,
		Action:     opts.Action,
		Stylesheet: stylesheet,
		Theme:      buildThemeView(opts.Theme),
		Hidden:     render.SortedHiddenFields(opts.HiddenFields),
		Documents:  documents,
	}

	for sectionIndex, section := range cfg.Form.Sections {
		sv := sectionView{
			Name:      section.Name,
			LabelHTML: SanitizeLabel(section.Label),
			Visible:   state.Visible(section.Name),
		}
		for itemIndex, item := range section.Fields {
			row := rowView{Multi: item.IsRow()}
			for fieldIndex, field := range item.Fields() {
				id := fmt.Sprintf("formdoc-%d-%d-%d", sectionIndex, itemIndex, fieldIndex)
				row.Fields = append(row.Fields, buildField(id, field, state, opts))
			}
			sv.Rows = append(sv.Rows, row)
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

func buildField(id string, field model.Field, state visibility.State, opts render.RenderOptions) fieldView {
	value, _ := opts.Values.Get(field.Name)
	fv := fieldView{
		ID:        id,
		Name:      field.Name,
		LabelHTML: SanitizeLabel(field.Label),
		Type:      string(field.Type),
		InputType: inputType(field.Type),
		Visible:   state.Visible(field.Name),
		Required:  state.Required(field.Name),
		Errors:    opts.Errors[field.Name],
	}
	if field.Type.Choice() {
		fv.Choice = string(field.Type)
		for _, opt := range field.Options {
			fv.Options = append(fv.Options, optionView{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: value.Contains(opt.Value),
			})
		}
		return fv
	}
	fv.Value = value.String()
	return fv
}

func inputType(t model.FieldType) string {
	switch t {
	case model.FieldTypeEmail, model.FieldTypeDate, model.FieldTypeTel, model.FieldTypeNumber:
		return string(t)
	default:
		return "text"
	}
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
