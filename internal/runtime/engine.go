package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stile/internal/logging"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
)

// Interpolator fills {{.field}} placeholders in step prompts from collected
// values.
type Interpolator func(ctx context.Context, text string, data map[string]any) (string, error)

// Engine is the core wizard runner. It is stateless over sessions: every
// operation takes a *domain.State, clones it, and returns the next state.
// The only internal state is the in-flight registry used to coalesce
// concurrent remote checks and submissions per session.
type Engine struct {
	catalog      *domain.Catalog
	checker      ports.Checker
	submitter    ports.Submitter
	hooks        domain.LifecycleHooks
	interpolator Interpolator
	logger       *slog.Logger
	exitOnBack   bool

	mu       sync.Mutex
	inflight map[string]phase
}

type phase string

const (
	phaseCheck  phase = "check"
	phaseSubmit phase = "submit"
)

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithChecker injects the remote availability checker.
func WithChecker(c ports.Checker) EngineOption {
	return func(e *Engine) { e.checker = c }
}

// WithSubmitter injects the terminal submission collaborator.
func WithSubmitter(s ports.Submitter) EngineOption {
	return func(e *Engine) { e.submitter = s }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithInterpolator sets a custom prompt interpolator.
func WithInterpolator(interp Interpolator) EngineOption {
	return func(e *Engine) { e.interpolator = interp }
}

// WithExitOnBack makes Back on the first step return domain.ErrExitWizard
// instead of being a no-op, so the host can return to a parent screen.
func WithExitOnBack() EngineOption {
	return func(e *Engine) { e.exitOnBack = true }
}

// NewEngine creates a wizard engine for a catalog.
func NewEngine(catalog *domain.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:      catalog,
		logger:       logging.NewNop(),
		interpolator: defaultInterpolator,
		inflight:     make(map[string]phase),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's step catalog.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Render calculates the presentation of the current step without advancing.
func (e *Engine) Render(ctx context.Context, state *domain.State) (domain.StepView, error) {
	visible, idx := e.locate(state.Values, state.StepID)
	if len(visible) == 0 {
		return domain.StepView{}, fmt.Errorf("%w: no visible steps", domain.ErrCatalogInvalid)
	}
	step := visible[idx]

	prompt := step.Prompt
	if e.interpolator != nil && prompt != "" {
		data := make(map[string]any, len(state.Values))
		for k, v := range state.Values {
			data[k] = v
		}
		out, err := e.interpolator(ctx, prompt, data)
		if err != nil {
			return domain.StepView{}, fmt.Errorf("prompt interpolation failed for step %s: %w", step.ID, err)
		}
		prompt = out
	}

	return domain.StepView{
		Step:     step,
		Prompt:   prompt,
		Progress: domain.Progress{Index: idx, Total: len(visible)},
		First:    idx == 0,
		Terminal: idx == len(visible)-1,
	}, nil
}

// SetValue writes one field and re-clamps the position. This is the single
// mutation entry point: no other component writes the value map.
func (e *Engine) SetValue(state *domain.State, field string, value any) (*domain.State, error) {
	if state.Submitted() {
		return nil, domain.ErrSubmitted
	}

	next := state.Clone()
	if step, ok := e.stepForField(field); ok {
		next.Values[field] = normalizeInput(step, value)
	} else {
		next.Values[field] = value
	}

	visible, idx := e.locate(next.Values, next.StepID)
	if len(visible) > 0 && visible[idx].ID != next.StepID {
		next.StepID = visible[idx].ID
	}
	return next, nil
}

// stepForField finds the first catalog step bound to a field name.
func (e *Engine) stepForField(field string) (domain.Step, bool) {
	for _, s := range e.catalog.Steps() {
		if s.FieldName() == field {
			return s, true
		}
	}
	return domain.Step{}, false
}

// begin registers an exclusive in-flight operation for the session.
// Concurrent operations are rejected, not queued: a pending check must
// resolve before further navigation is processed.
func (e *Engine) begin(sessionID string, p phase) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, busy := e.inflight[sessionID]; busy {
		if existing == phaseSubmit {
			return domain.ErrSubmitInFlight
		}
		return domain.ErrCheckPending
	}
	e.inflight[sessionID] = p
	return nil
}

func (e *Engine) end(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, sessionID)
}

// promote upgrades an existing registration (check -> submit) in place.
func (e *Engine) promote(sessionID string, p phase) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight[sessionID] = p
}

func (e *Engine) emitStepLeave(ctx context.Context, sessionID string, step domain.Step) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepLeave, SessionID: sessionID},
		StepID:    step.ID,
		Kind:      step.Kind,
	})
}

func (e *Engine) emitStepEnter(ctx context.Context, sessionID string, step domain.Step) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter, SessionID: sessionID},
		StepID:    step.ID,
		Kind:      step.Kind,
	})
}

func (e *Engine) emitCheck(ctx context.Context, sessionID, stepID, check string, valid, isErr bool, dur time.Duration) {
	if e.hooks.OnCheck == nil {
		return
	}
	e.hooks.OnCheck(ctx, &domain.CheckEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCheck, SessionID: sessionID},
		StepID:    stepID,
		Check:     check,
		Valid:     valid,
		Err:       isErr,
		Duration:  dur,
	})
}

func (e *Engine) emitSubmit(ctx context.Context, sessionID string, success bool) {
	if e.hooks.OnSubmit == nil {
		return
	}
	e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmit, SessionID: sessionID},
		Success:   success,
	})
}
