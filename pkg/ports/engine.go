package ports

import (
	"context"

	"github.com/aretw0/stile/pkg/domain"
)

// WizardEngine defines the interface for wizard cores that do not maintain
// per-session state internally. This is the primary interface used by
// adapters (e.g. HTTP, MCP) that manage state externally or per-request.
type WizardEngine interface {
	// Render calculates the presentation of the current step without
	// advancing the session.
	Render(ctx context.Context, state *domain.State) (domain.StepView, error)

	// Next applies input to the current step, validates it (including any
	// remote check), and advances on success. On the terminal step a valid
	// Next triggers submission instead of advancing.
	Next(ctx context.Context, state *domain.State, input any) (*domain.State, domain.Outcome, error)

	// Back retreats one visible step. On the first step it is a no-op or
	// returns domain.ErrExitWizard, depending on engine configuration.
	Back(ctx context.Context, state *domain.State) (*domain.State, error)

	// JumpTo revisits a visible step by ID, re-validating its held value.
	JumpTo(ctx context.Context, state *domain.State, stepID string) (*domain.State, domain.Outcome, error)

	// SetValue writes one field through the engine's single mutation entry
	// point without navigating.
	SetValue(state *domain.State, field string, value any) (*domain.State, error)

	// Catalog returns the engine's step catalog for introspection.
	Catalog() *domain.Catalog
}
