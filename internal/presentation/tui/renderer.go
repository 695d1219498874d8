package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/aretw0/stile/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// It uses a dark theme by default, but could be configurable.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ProgressLine formats a "Step x of y" header with the step id, colored for
// terminal output.
func ProgressLine(view domain.StepView) string {
	p := termenv.ColorProfile()
	counted := termenv.String(fmt.Sprintf("Step %d of %d", view.Progress.Index+1, view.Progress.Total)).
		Foreground(p.Color("#818cf8")).Bold()
	id := termenv.String(view.Step.ID).Foreground(p.Color("#6b7280"))
	return fmt.Sprintf("%s  %s", counted, id)
}

// OutcomeLine formats a validation failure for terminal output. Retryable
// failures render in amber, rejections in red.
func OutcomeLine(outcome domain.Outcome) string {
	if outcome.Valid {
		return ""
	}
	p := termenv.ColorProfile()
	color := "#f87171"
	if outcome.Retryable() {
		color = "#fbbf24"
	}
	return termenv.String("✗ " + outcome.Message).Foreground(p.Color(color)).String()
}

// OptionsLine lists the choices of a choice step, one per line, numbered.
func OptionsLine(options []string) string {
	if len(options) == 0 {
		return ""
	}
	p := termenv.ColorProfile()
	var b strings.Builder
	for i, opt := range options {
		num := termenv.String(fmt.Sprintf("  %d)", i+1)).Foreground(p.Color("#a78bfa"))
		fmt.Fprintf(&b, "%s %s\n", num, opt)
	}
	return b.String()
}
