package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stile/pkg/domain"
)

// Next applies input to the current step, validates it, and advances the
// session by one visible step. On the terminal step a valid Next triggers
// the submission instead.
//
// Validation failures never return an error: the outcome carries the message
// and the returned state keeps the typed value and the unchanged position.
// A second Next while a remote check or submission is outstanding for the
// same session is rejected with domain.ErrCheckPending or
// domain.ErrSubmitInFlight; calls are coalesced, never queued twice.
func (e *Engine) Next(ctx context.Context, state *domain.State, input any) (*domain.State, domain.Outcome, error) {
	if state.Submitted() {
		return nil, domain.Outcome{}, domain.ErrSubmitted
	}
	if err := e.begin(state.SessionID, phaseCheck); err != nil {
		return nil, domain.Outcome{}, err
	}
	defer e.end(state.SessionID)

	next := state.Clone()
	next.SubmitError = ""

	visible, idx := e.locate(next.Values, next.StepID)
	if len(visible) == 0 {
		return nil, domain.Outcome{}, fmt.Errorf("%w: no visible steps", domain.ErrCatalogInvalid)
	}
	step := visible[idx]
	next.StepID = step.ID

	if input != nil {
		next.Values[step.FieldName()] = normalizeInput(step, input)
	}

	if outcome := validateSync(step, next.Values); !outcome.Valid {
		e.logger.Debug("step validation failed",
			"session_id", next.SessionID, "step", step.ID, "code", outcome.Code)
		return next, outcome, nil
	}

	if step.Check != "" {
		outcome, err := e.runCheck(ctx, next, step)
		if err != nil {
			return nil, domain.Outcome{}, err
		}
		if !outcome.Valid {
			return next, outcome, nil
		}
	}

	// Input may have changed visibility; recompute before advancing so the
	// position lands on a live step.
	visible, idx = e.locate(next.Values, next.StepID)
	terminal := idx == len(visible)-1

	if terminal {
		return e.submit(ctx, next)
	}

	e.emitStepLeave(ctx, next.SessionID, visible[idx])
	next.StepID = visible[idx+1].ID
	next.History = append(next.History, next.StepID)
	e.emitStepEnter(ctx, next.SessionID, visible[idx+1])

	return next, domain.OK(), nil
}

// runCheck performs the remote availability/validity check gating the step.
// Transport failures become a retryable "cannot verify" outcome, distinct
// from a rejection of the value. A resolution arriving after the context
// was canceled is discarded: the caller gets the context error and no state
// change.
func (e *Engine) runCheck(ctx context.Context, state *domain.State, step domain.Step) (domain.Outcome, error) {
	field := step.FieldName()
	value := state.Values.String(field)

	if e.checker == nil {
		return domain.OK(), nil
	}

	state.Pending = &domain.PendingCheck{StepID: step.ID, Value: value}
	state.Status = domain.StatusChecking
	defer func() {
		state.Pending = nil
		state.Status = domain.StatusActive
	}()

	start := time.Now()
	ok, err := e.checker.Check(ctx, step.Check, value)
	e.emitCheck(ctx, state.SessionID, step.ID, step.Check, ok, err != nil, time.Since(start))

	if ctx.Err() != nil {
		// The caller left before the check resolved; the result no longer
		// applies to a live step.
		return domain.Outcome{}, ctx.Err()
	}
	if err != nil {
		e.logger.Warn("remote check unavailable",
			"session_id", state.SessionID, "check", step.Check, "err", err)
		return domain.Fail(field, domain.CodeUnverifiable, MsgUnverifiable), nil
	}
	if !ok {
		return domain.Fail(field, domain.CodeRejected, rejectionMessage(step.Check)), nil
	}
	return domain.OK(), nil
}

// Back retreats one visible step. At the first step it is a no-op, or
// returns domain.ErrExitWizard when the engine is configured to delegate the
// exit to its host. Back is blocked while a check or submission is pending.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state.Submitted() {
		return nil, domain.ErrSubmitted
	}
	if err := e.begin(state.SessionID, phaseCheck); err != nil {
		return nil, err
	}
	defer e.end(state.SessionID)

	next := state.Clone()
	visible, idx := e.locate(next.Values, next.StepID)
	if len(visible) == 0 {
		return nil, fmt.Errorf("%w: no visible steps", domain.ErrCatalogInvalid)
	}

	if idx == 0 {
		if e.exitOnBack {
			return nil, domain.ErrExitWizard
		}
		next.StepID = visible[0].ID
		return next, nil
	}

	e.emitStepLeave(ctx, next.SessionID, visible[idx])
	next.StepID = visible[idx-1].ID
	next.History = append(next.History, next.StepID)
	e.emitStepEnter(ctx, next.SessionID, visible[idx-1])

	return next, nil
}

// JumpTo revisits a visible step by ID. The returned outcome is the fresh
// validation of the value currently held for that step, so hosts never
// trust stale validity when editing a prior answer.
func (e *Engine) JumpTo(ctx context.Context, state *domain.State, stepID string) (*domain.State, domain.Outcome, error) {
	if state.Submitted() {
		return nil, domain.Outcome{}, domain.ErrSubmitted
	}
	if err := e.begin(state.SessionID, phaseCheck); err != nil {
		return nil, domain.Outcome{}, err
	}
	defer e.end(state.SessionID)

	next := state.Clone()
	target, ok := e.catalog.Get(stepID)
	if !ok || target.Skipped(next.Values) {
		return nil, domain.Outcome{}, fmt.Errorf("%w: %s", domain.ErrStepNotFound, stepID)
	}

	visible, idx := e.locate(next.Values, next.StepID)
	if len(visible) > 0 && visible[idx].ID != stepID {
		e.emitStepLeave(ctx, next.SessionID, visible[idx])
		next.StepID = stepID
		next.History = append(next.History, stepID)
		e.emitStepEnter(ctx, next.SessionID, target)
	}

	return next, validateSync(target, next.Values), nil
}

// submit assembles the payload and performs the single create call. The
// registration is promoted so a concurrent Next reports ErrSubmitInFlight
// rather than a generic pending error.
func (e *Engine) submit(ctx context.Context, state *domain.State) (*domain.State, domain.Outcome, error) {
	e.promote(state.SessionID, phaseSubmit)

	if e.submitter == nil {
		return nil, domain.Outcome{}, fmt.Errorf("no submitter configured for terminal step %s", state.StepID)
	}

	payload := e.assemble(state)
	state.Status = domain.StatusSubmitting

	record, err := e.submitter.Submit(ctx, payload)
	if ctx.Err() != nil {
		return nil, domain.Outcome{}, ctx.Err()
	}
	if err != nil {
		// Non-fatal: progress is preserved, the session stays on the
		// terminal step with a page-level error.
		e.logger.Warn("submission failed", "session_id", state.SessionID, "err", err)
		e.emitSubmit(ctx, state.SessionID, false)
		state.Status = domain.StatusActive
		state.SubmitError = err.Error()
		return state, domain.Fail("", domain.CodeSubmit, err.Error()), nil
	}

	e.emitSubmit(ctx, state.SessionID, true)
	state.Status = domain.StatusSubmitted
	state.Record = record
	state.SubmitError = ""

	e.logger.Info("wizard submitted", "session_id", state.SessionID)
	return state, domain.OK(), nil
}
