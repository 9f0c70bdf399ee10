package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/schema"
)

// ErrTemplateNotFound matches TemplateNotFoundError via errors.Is.
var ErrTemplateNotFound = errors.New("render: template not found")

// TemplateNotFoundError reports a requested template label that does not
// exist in the configuration.
type TemplateNotFoundError struct {
	Label string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("render: template %q not found", e.Label)
}

// Is reports whether target is ErrTemplateNotFound.
func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// ErrorsFromResult maps validation issues to field-keyed messages, preferring
// the field label in the message when one exists.
func ErrorsFromResult(res schema.Result) map[string][]string {
	if res.Valid || len(res.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(res.Issues))
	for _, issue := range res.Issues {
		subject := issue.Label
		if subject == "" {
			subject = issue.Field
		}
		msg := strings.TrimSpace(subject + " " + issue.Message)
		out[issue.Field] = MergeMessages(out[issue.Field], msg)
	}
	return out
}

// MergeMessages concatenates message slices, trimming whitespace and removing
// duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)

	out := make([]string, 0, len(combined))
	seen := make(map[string]struct{}, len(combined))
	for _, message := range combined {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
