// Package lint reports authoring mistakes the normalizer silently absorbs:
// duplicate labels and names, conditions pointing at unknown fields and
// template tokens that resolve to nothing.
package lint

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Code identifies the kind of issue.
type Code string

const (
	CodeUnaddressableField Code = "unaddressable-field"
	CodeDuplicateName      Code = "duplicate-name"
	CodeDuplicateLabel     Code = "duplicate-label"
	CodeNameCollision      Code = "name-collision"
	CodeUnknownType        Code = "unknown-type"
	CodeMissingOptions     Code = "missing-options"
	CodeUnknownCondition   Code = "unknown-condition-field"
	CodeConditionByLabel   Code = "condition-uses-label"
	CodeUnresolvedToken    Code = "unresolved-token"
	CodeEmptyCombinator    Code = "empty-condition"
	CodeDuplicateTemplate  Code = "duplicate-template-label"
)

// Issue is one finding with the location of the offending element.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Location string   `json:"location"`
	Message  string   `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Location, i.Message)
}

// Report collects issues sorted by location.
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err combines error-severity issues, or returns nil.
func (r Report) Err() error {
	var err error
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			err = multierr.Append(err, issue)
		}
	}
	return err
}

// Errors splits a combined error back into issues.
func Errors(err error) []Issue {
	var out []Issue
	for _, e := range multierr.Errors(err) {
		var issue Issue
		if errors.As(e, &issue) {
			out = append(out, issue)
		}
	}
	return out
}

type checker struct {
	cfg    model.Configuration
	names  map[string]string
	labels map[string][]string
	issues []Issue
}

// Check inspects a normalized configuration.
func Check(cfg model.Configuration) Report {
	c := &checker{
		cfg:    cfg,
		names:  make(map[string]string),
		labels: make(map[string][]string),
	}
	c.fields()
	c.conditions()
	c.templates()

	sort.SliceStable(c.issues, func(i, j int) bool {
		return c.issues[i].Location < c.issues[j].Location
	})
	if c.issues == nil {
		c.issues = []Issue{}
	}
	return Report{Issues: c.issues}
}

func (c *checker) add(sev Severity, code Code, location, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Severity: sev,
		Code:     code,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) fields() {
	sections := make(map[string]string)
	for si, section := range c.cfg.Form.Sections {
		loc := fmt.Sprintf("form.sections[%d]", si)
		if section.Name != "" {
			sections[section.Name] = loc
		}
		for fi, item := range section.Fields {
			for ri, field := range item.Fields() {
				floc := fmt.Sprintf("%s.fields[%d]", loc, fi)
				if item.IsRow() {
					floc = fmt.Sprintf("%s[%d]", floc, ri)
				}
				c.field(floc, field)
			}
		}
	}
	for _, name := range sortedKeys(sections) {
		loc := sections[name]
		if floc, ok := c.names[name]; ok {
			c.add(SeverityWarning, CodeNameCollision, loc,
				"section name %q is also used by the field at %s; their states overwrite each other", name, floc)
		}
	}
	for _, label := range sortedKeys(c.labels) {
		if names := c.labels[label]; len(names) > 1 {
			c.add(SeverityWarning, CodeDuplicateLabel, c.names[names[len(names)-1]],
				"label %q is shared by fields %q; placeholders resolve to %q", label, names, names[len(names)-1])
		}
	}
}

func (c *checker) field(loc string, field model.Field) {
	if field.Name == "" {
		c.add(SeverityError, CodeUnaddressableField, loc, "field has neither name nor label")
		return
	}
	if prev, ok := c.names[field.Name]; ok {
		c.add(SeverityWarning, CodeDuplicateName, loc, "field name %q already used at %s", field.Name, prev)
	} else {
		c.names[field.Name] = loc
	}
	if field.Label != "" && !contains(c.labels[field.Label], field.Name) {
		c.labels[field.Label] = append(c.labels[field.Label], field.Name)
	}
	if !field.Type.Known() {
		c.add(SeverityWarning, CodeUnknownType, loc, "unknown type %q renders as a text input", field.Type)
	}
	if field.Type.Choice() && len(field.Options) == 0 {
		c.add(SeverityWarning, CodeMissingOptions, loc, "%s field %q has no options", field.Type, field.Name)
	}
}

func (c *checker) conditions() {
	for si, section := range c.cfg.Form.Sections {
		loc := fmt.Sprintf("form.sections[%d]", si)
		c.condition(loc+".condition", section.Condition)
		for fi, item := range section.Fields {
			for ri, field := range item.Fields() {
				floc := fmt.Sprintf("%s.fields[%d]", loc, fi)
				if item.IsRow() {
					floc = fmt.Sprintf("%s[%d]", floc, ri)
				}
				c.condition(floc+".condition", field.Condition)
			}
		}
	}
	for ti, tpl := range c.cfg.Templates {
		for si, section := range tpl.Sections {
			c.condition(fmt.Sprintf("templates[%d].sections[%d].condition", ti, si), section.Condition)
		}
	}
}

func (c *checker) condition(loc string, cond model.Condition) {
	if cond.Mode == model.ModeAny && len(cond.Expressions) == 0 {
		c.add(SeverityWarning, CodeEmptyCombinator, loc, "empty \"or\" condition is never satisfied")
	}
	for ei, expr := range cond.Expressions {
		eloc := fmt.Sprintf("%s[%d]", loc, ei)
		if _, ok := c.names[expr.Field]; ok {
			continue
		}
		if names, ok := c.labels[expr.Field]; ok {
			c.add(SeverityWarning, CodeConditionByLabel, eloc,
				"condition field %q is a label; conditions compare names, use %q", expr.Field, names[len(names)-1])
			continue
		}
		c.add(SeverityWarning, CodeUnknownCondition, eloc, "condition references unknown field %q", expr.Field)
	}
}

func (c *checker) templates() {
	seen := make(map[string]int)
	for ti, tpl := range c.cfg.Templates {
		loc := fmt.Sprintf("templates[%d]", ti)
		if prev, ok := seen[tpl.Label]; ok {
			c.add(SeverityWarning, CodeDuplicateTemplate, loc,
				"template label %q already used by templates[%d]; keyed output keeps the last one", tpl.Label, prev)
		} else {
			seen[tpl.Label] = ti
		}
		for si, section := range tpl.Sections {
			for _, token := range document.Tokens(section.Content) {
				if _, ok := c.labels[token]; ok {
					continue
				}
				if _, ok := c.names[token]; ok {
					continue
				}
				c.add(SeverityWarning, CodeUnresolvedToken, fmt.Sprintf("%s.sections[%d].content", loc, si),
					"placeholder {{%s}} matches no field label or name", token)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
