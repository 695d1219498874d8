package stile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stile/internal/runtime"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
)

// Version is the current stile release.
const Version = "0.4.0"

// Wizard is the high-level entry point for the stile library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Wizard struct {
	runtime     *runtime.Engine
	catalog     *domain.Catalog
	source      ports.CatalogSource
	flow        string
	checker     ports.Checker
	submitter   ports.Submitter
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	Name        string
}

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithChecker injects the remote availability checker collaborator.
func WithChecker(c ports.Checker) Option {
	return func(w *Wizard) { w.checker = c }
}

// WithSubmitter injects the create-call collaborator invoked on the
// terminal step.
func WithSubmitter(s ports.Submitter) Option {
	return func(w *Wizard) { w.submitter = s }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) { w.hooks = hooks }
}

// WithLogger sets a custom structured logger for the wizard.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) { w.logger = logger }
}

// WithSource loads the catalog from a CatalogSource instead of an explicit
// catalog.
func WithSource(source ports.CatalogSource, flow string) Option {
	return func(w *Wizard) {
		w.source = source
		w.flow = flow
	}
}

// WithInterpolator sets a custom prompt interpolator.
func WithInterpolator(interp runtime.Interpolator) Option {
	return func(w *Wizard) {
		w.runtimeOpts = append(w.runtimeOpts, runtime.WithInterpolator(interp))
	}
}

// WithExitOnBack makes Back on the first step return domain.ErrExitWizard
// so the host can return to a parent screen (e.g. the signup-type chooser).
func WithExitOnBack() Option {
	return func(w *Wizard) {
		w.runtimeOpts = append(w.runtimeOpts, runtime.WithExitOnBack())
	}
}

// New initializes a Wizard for the given catalog. Pass a nil catalog only
// together with WithSource, which loads it from the configured flow.
func New(catalog *domain.Catalog, opts ...Option) (*Wizard, error) {
	w := &Wizard{catalog: catalog}

	for _, opt := range opts {
		opt(w)
	}

	if w.catalog == nil {
		if w.source == nil {
			return nil, fmt.Errorf("a catalog or a catalog source is required")
		}
		catalog, err := w.source.Load(context.Background(), w.flow)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow %q: %w", w.flow, err)
		}
		w.catalog = catalog
		w.Name = w.flow
	}

	if w.logger == nil {
		w.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if w.Name != "" {
		w.logger = w.logger.With("flow", w.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithChecker(w.checker),
		runtime.WithSubmitter(w.submitter),
		runtime.WithLifecycleHooks(w.hooks),
		runtime.WithLogger(w.logger),
	}
	runtimeOpts = append(runtimeOpts, w.runtimeOpts...)

	w.runtime = runtime.NewEngine(w.catalog, runtimeOpts...)
	return w, nil
}

// Start creates a clean session positioned at the first visible step, with
// every bound field seeded to its unanswered default.
func (w *Wizard) Start(sessionID string) *domain.State {
	return domain.NewState(sessionID, w.catalog)
}

// Render calculates the presentation of the current step without advancing.
func (w *Wizard) Render(ctx context.Context, state *domain.State) (domain.StepView, error) {
	return w.runtime.Render(ctx, state)
}

// Next applies input to the current step, validates it (including any remote
// check), and advances; on the terminal step it submits instead.
func (w *Wizard) Next(ctx context.Context, state *domain.State, input any) (*domain.State, domain.Outcome, error) {
	return w.runtime.Next(ctx, state, input)
}

// Back retreats one visible step.
func (w *Wizard) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	return w.runtime.Back(ctx, state)
}

// JumpTo revisits a visible step by ID, re-validating its held value.
func (w *Wizard) JumpTo(ctx context.Context, state *domain.State, stepID string) (*domain.State, domain.Outcome, error) {
	return w.runtime.JumpTo(ctx, state, stepID)
}

// SetValue writes one field through the engine's single mutation entry point.
func (w *Wizard) SetValue(state *domain.State, field string, value any) (*domain.State, error) {
	return w.runtime.SetValue(state, field, value)
}

// Catalog returns the underlying step catalog.
func (w *Wizard) Catalog() *domain.Catalog {
	return w.catalog
}

// Engine returns the wizard as a ports.WizardEngine for adapters.
func (w *Wizard) Engine() ports.WizardEngine {
	return w.runtime
}

// Watch returns a channel that signals when the underlying catalog changes.
// Returns an error if the source does not support watching.
func (w *Wizard) Watch(ctx context.Context) (<-chan struct{}, error) {
	if watcher, ok := w.source.(ports.Watchable); ok {
		return watcher.Watch(ctx)
	}
	return nil, fmt.Errorf("current catalog source does not support watching")
}
