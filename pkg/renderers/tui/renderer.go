// Package tui fills a configuration interactively in the terminal. Sections
// and fields are asked in declaration order; visibility is re-derived after
// every answer so conditional parts appear as soon as their condition holds.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/text"
	"github.com/goliatone/go-formdoc/pkg/values"
)

const (
	// SkipOption is offered first by optional radio prompts.
	SkipOption = "（未選択）"
	// ReviewMessage asks for confirmation once every prompt is answered.
	ReviewMessage = "この内容で作成しますか？"
	// RequiredMessage is reported when a required prompt is left blank.
	RequiredMessage = "is required"
)

var validate = validator.New()

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	review            bool
	pageSize          int
}

// New constructs a TUI renderer with defaults (survey driver, document output).
func New(options ...Option) (render.Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatDocuments,
		theme:        DefaultTheme,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatDocuments, OutputFormatValues, OutputFormatJSON:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Interactive marks the renderer as terminal-only.
func (r *Renderer) Interactive() bool {
	return true
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatDocuments {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render prompts for every visible field and returns the documents or values
// produced from the answers.
func (r *Renderer) Render(ctx context.Context, cfg model.Configuration, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	templates, err := render.SelectTemplates(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	state := NewState(cfg.Form, opts.Values, opts.Errors)
	for {
		if err := r.fill(ctx, cfg.Form, state); err != nil {
			return nil, err
		}
		if !r.review {
			break
		}
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: ReviewMessage, Default: true})
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
	}

	collected := state.Values()
	if r.submitTransformer != nil {
		collected, err = r.submitTransformer(collected)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(templates, cfg.Form, collected)
}

func (r *Renderer) fill(ctx context.Context, form model.Form, state *State) error {
	for _, section := range form.Sections {
		if !state.Derive().Visible(section.Name) {
			continue
		}
		if err := r.driver.Info(ctx, r.theme.SectionPrefix+section.Label); err != nil {
			return err
		}
		for _, field := range section.FlatFields() {
			derived := state.Derive()
			if !derived.Visible(field.Name) {
				continue
			}
			if err := r.promptField(ctx, field, derived.Required(field.Name), state); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, required bool, state *State) error {
	for _, msg := range state.ErrorsFor(field.Name) {
		if err := r.report(ctx, field, msg); err != nil {
			return err
		}
	}
	switch field.Type {
	case model.FieldTypeSelect, model.FieldTypeRadio:
		return r.promptSelect(ctx, field, required, state)
	case model.FieldTypeCheckbox:
		return r.promptMulti(ctx, field, required, state)
	case model.FieldTypeTextarea:
		return r.promptTextArea(ctx, field, required, state)
	default:
		return r.promptInput(ctx, field, required, state)
	}
}

func (r *Renderer) promptInput(ctx context.Context, field model.Field, required bool, state *State) error {
	defaultVal := state.Default(field.Name)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: r.displayLabel(field, required),
			Default: defaultVal,
		})
		if err != nil {
			return err
		}
		if err := checkAnswer(field, required, response); err != nil {
			if err := r.report(ctx, field, err.Error()); err != nil {
				return err
			}
			continue
		}
		state.Set(field.Name, response)
		return nil
	}
}

func (r *Renderer) promptTextArea(ctx context.Context, field model.Field, required bool, state *State) error {
	defaultVal := state.Default(field.Name)
	for {
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: r.displayLabel(field, required),
			Default: defaultVal,
		})
		if err != nil {
			return err
		}
		if required && strings.TrimSpace(response) == "" {
			if err := r.report(ctx, field, RequiredMessage); err != nil {
				return err
			}
			continue
		}
		state.Set(field.Name, response)
		return nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field, required bool, state *State) error {
	if len(field.Options) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOptions, field.Name)
	}
	labels, choices := optionLists(field.Options)
	if field.Type == model.FieldTypeRadio && !required {
		labels = append([]string{SkipOption}, labels...)
		choices = append([]string{""}, choices...)
	}

	defaultIdx := 0
	if current, ok := state.Values().Get(field.Name); ok {
		for i, v := range choices {
			if v != "" && current.Contains(v) {
				defaultIdx = i
				break
			}
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.displayLabel(field, required),
		Options:      labels,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(choices) {
		return fmt.Errorf("tui: invalid selection for %s", field.Name)
	}
	state.Set(field.Name, choices[idx])
	return nil
}

func (r *Renderer) promptMulti(ctx context.Context, field model.Field, required bool, state *State) error {
	if len(field.Options) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOptions, field.Name)
	}
	labels, choices := optionLists(field.Options)

	var defaults []int
	if current, ok := state.Values().Get(field.Name); ok {
		for i, v := range choices {
			if current.Contains(v) {
				defaults = append(defaults, i)
			}
		}
	}

	for {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  r.displayLabel(field, required),
			Options:  labels,
			Defaults: defaults,
		})
		if err != nil {
			return err
		}
		var picked []string
		for _, idx := range indices {
			if idx >= 0 && idx < len(choices) {
				picked = append(picked, choices[idx])
			}
		}
		if required && len(picked) == 0 {
			if err := r.report(ctx, field, RequiredMessage); err != nil {
				return err
			}
			continue
		}
		state.SetList(field.Name, picked)
		return nil
	}
}

func (r *Renderer) report(ctx context.Context, field model.Field, msg string) error {
	return r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, field.Label, msg))
}

func (r *Renderer) serialize(templates []model.Template, form model.Form, collected model.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatValues:
		return values.Encode(collected)
	case OutputFormatJSON:
		payload := struct {
			Values    model.Values    `json:"values"`
			Documents document.Result `json:"documents"`
		}{
			Values:    collected,
			Documents: document.Render(templates, form, collected),
		}
		if payload.Values == nil {
			payload.Values = model.Values{}
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode output: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return []byte(text.Plain(document.Render(templates, form, collected), true)), nil
	}
}

// checkAnswer validates a single-line answer against the field's type.
func checkAnswer(field model.Field, required bool, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		if required {
			return errors.New(RequiredMessage)
		}
		return nil
	}
	var tag string
	switch field.Type {
	case model.FieldTypeEmail:
		tag = "email"
	case model.FieldTypeNumber:
		tag = "numeric"
	case model.FieldTypeDate:
		tag = "datetime=2006-01-02"
	default:
		return nil
	}
	if err := validate.Var(answer, tag); err != nil {
		return fmt.Errorf("must be a valid %s", field.Type)
	}
	return nil
}

func optionLists(options []model.Option) (labels, choices []string) {
	labels = make([]string, 0, len(options))
	choices = make([]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, opt.Label)
		choices = append(choices, opt.Value)
	}
	return labels, choices
}

// optionHints returns the submitted value for each option whose label hides
// it, or nil when every label is its own value.
func optionHints(labels, choices []string) []string {
	hints := make([]string, len(labels))
	var hidden bool
	for i := range labels {
		if choices[i] != "" && choices[i] != labels[i] {
			hints[i] = choices[i]
			hidden = true
		}
	}
	if !hidden {
		return nil
	}
	return hints
}

func (r *Renderer) displayLabel(field model.Field, required bool) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if required {
		label += r.theme.RequiredMarker
	}
	return label
}
