package dsl

import (
	"fmt"

	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/schema"
)

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// Field binds the step to a value-map key other than its ID.
func (s *StepBuilder) Field(name string) *StepBuilder {
	s.step.Field = name
	return s
}

// Options constrains choice and multi-choice steps.
func (s *StepBuilder) Options(options ...string) *StepBuilder {
	s.step.Options = options
	return s
}

// Required blocks forward navigation while the bound value is empty.
func (s *StepBuilder) Required() *StepBuilder {
	s.step.Required = true
	return s
}

// Match names another field this step's value must equal exactly
// (password confirmation).
func (s *StepBuilder) Match(field string) *StepBuilder {
	s.step.MatchField = field
	return s
}

// Check names the remote check gating this step.
func (s *StepBuilder) Check(name string) *StepBuilder {
	s.step.Check = name
	return s
}

// SkipWhen hides the step when the predicate returns true.
func (s *StepBuilder) SkipWhen(pred domain.Predicate) *StepBuilder {
	s.step.SkipWhen = pred
	return s
}

// SkipUnless shows the step only while the condition expression holds,
// using the same grammar as catalog files ("userType == 'contractor'").
func (s *StepBuilder) SkipUnless(condition string) *StepBuilder {
	pred, err := domain.CompileCondition(condition)
	if err != nil {
		s.builder.errs = append(s.builder.errs,
			fmt.Errorf("step %s: invalid condition %q: %w", s.step.ID, condition, err))
		return s
	}
	s.step.SkipWhen = func(v domain.Values) bool { return !pred(v) }
	return s
}

// Schema declares the row shape for compound steps.
func (s *StepBuilder) Schema(rowSchema schema.Schema) *StepBuilder {
	s.step.Schema = rowSchema
	return s
}

// Meta attaches an adapter-facing key-value pair.
func (s *StepBuilder) Meta(key, value string) *StepBuilder {
	if s.step.Metadata == nil {
		s.step.Metadata = make(map[string]string)
	}
	s.step.Metadata[key] = value
	return s
}

// Build returns the underlying domain.Step.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StepBuilder) Build() domain.Step {
	return s.step
}
