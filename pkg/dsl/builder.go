package dsl

import (
	"fmt"

	"github.com/aretw0/stile/pkg/domain"
)

// Builder manages catalog construction. Steps keep the order they were
// declared in.
type Builder struct {
	steps []*StepBuilder
	errs  []error
}

// New creates a new catalog builder.
func New() *Builder {
	return &Builder{}
}

// Add creates a step of an arbitrary kind. The kind-specific helpers below
// are usually more convenient.
func (b *Builder) Add(id string, kind domain.Kind, prompt string) *StepBuilder {
	sb := &StepBuilder{
		step: domain.Step{
			ID:     id,
			Kind:   kind,
			Prompt: prompt,
		},
		builder: b,
	}
	b.steps = append(b.steps, sb)
	return sb
}

// Text adds a free-text step.
func (b *Builder) Text(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindText, prompt)
}

// Textarea adds a multi-line text step.
func (b *Builder) Textarea(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindTextarea, prompt)
}

// Email adds an email step.
func (b *Builder) Email(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindEmail, prompt)
}

// Tel adds a phone number step.
func (b *Builder) Tel(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindTel, prompt)
}

// Password adds a password step.
func (b *Builder) Password(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindPassword, prompt)
}

// Choice adds a single-select step.
func (b *Builder) Choice(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindChoice, prompt)
}

// MultiChoice adds a multi-select step.
func (b *Builder) MultiChoice(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindChoiceMulti, prompt)
}

// Address adds an address step backed by suggestions.
func (b *Builder) Address(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindAddress, prompt)
}

// Upload adds an image/file upload step.
func (b *Builder) Upload(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindUpload, prompt)
}

// Checkbox adds a boolean agreement step.
func (b *Builder) Checkbox(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindCheckbox, prompt)
}

// YesNo adds a yes/no step.
func (b *Builder) YesNo(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindYesNo, prompt)
}

// Compound adds a repeated-rows step (licenses, references).
func (b *Builder) Compound(id, prompt string) *StepBuilder {
	return b.Add(id, domain.KindCompound, prompt)
}

// Build compiles the declared steps into a catalog. Declaration errors
// (bad conditions) surface here rather than panicking mid-chain.
func (b *Builder) Build() (*domain.Catalog, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("catalog declaration failed: %w", b.errs[0])
	}

	steps := make([]domain.Step, len(b.steps))
	for i, sb := range b.steps {
		steps[i] = sb.step
	}
	return domain.NewCatalog(steps...)
}
