package runtime

import (
	"context"
	"strings"
	"text/template"
)

// defaultInterpolator renders {{.field}} placeholders with text/template.
// Prompts without placeholders pass through untouched.
func defaultInterpolator(_ context.Context, text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	// A zero-value any renders as "<no value>"; unanswered fields should
	// read as blank.
	return strings.ReplaceAll(b.String(), "<no value>", ""), nil
}
