package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/internal/presentation/tui"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/session"
)

// RunSession executes a single interactive wizard session.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner()

	wizard, _, err := buildWizard(opts, logger)
	if err != nil {
		return fmt.Errorf("error initializing wizard: %w", err)
	}

	_, manager, err := setupPersistence(opts)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "local"
	}

	state, err := manager.LoadOrStart(sigCtx, sessionID, wizard.Catalog())
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}

	if opts.SessionID != "" {
		logger.Info("Session active", "session_id", sessionID, "step", state.StepID)
		printSystemMessage("Session '%s' active.", sessionID)
	}

	finalState, runErr := runLoop(sigCtx, wizard, manager, state, NewPrompter())

	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(finalState, runErr, sigCtx)
	return handleExecutionError(runErr)
}

// runLoop drives the render/read/answer cycle until the session submits,
// the user quits, or the context is cancelled.
func runLoop(ctx context.Context, wizard *stile.Wizard, manager *session.Manager, state *domain.State, prompter *Prompter) (*domain.State, error) {
	render := tui.NewRenderer()

	for {
		if ctx.Err() != nil {
			return state, ctx.Err()
		}

		if state.Submitted() {
			printSystemMessage("Signup created: %s", state.Record.ID)
			return state, nil
		}

		view, err := wizard.Render(ctx, state)
		if err != nil {
			return state, err
		}

		fmt.Println(tui.ProgressLine(view))
		if out, rerr := render(view.Prompt); rerr == nil {
			fmt.Print(out)
		} else {
			fmt.Println(view.Prompt)
		}
		if len(view.Step.Options) > 0 {
			fmt.Print(tui.OptionsLine(view.Step.Options))
		}

		raw, err := prompter.Read(ctx, view)
		if err != nil {
			return state, err
		}

		if input, ok := raw.(string); ok {
			if next, handled, err := handleCommand(ctx, wizard, manager, state, input); handled {
				if err != nil {
					return next, err
				}
				state = next
				continue
			}
		}

		next, outcome, err := wizard.Next(ctx, state, raw)
		if err != nil {
			return state, err
		}
		state = next

		if err := manager.Save(ctx, state.SessionID, state); err != nil {
			return state, err
		}

		if !outcome.Valid {
			fmt.Println(tui.OutcomeLine(outcome))
		}
	}
}

// handleCommand intercepts navigation commands. Everything else flows to the
// engine as an answer.
func handleCommand(ctx context.Context, wizard *stile.Wizard, manager *session.Manager, state *domain.State, input string) (*domain.State, bool, error) {
	trimmed := strings.TrimSpace(input)

	switch {
	case trimmed == "q" || trimmed == "quit" || trimmed == "exit":
		printSystemMessage("Progress saved. Run again to resume.")
		return state, true, errors.New("interrupted")

	case trimmed == ":back":
		next, err := wizard.Back(ctx, state)
		if err != nil {
			if errors.Is(err, domain.ErrExitWizard) {
				return state, true, errors.New("interrupted")
			}
			fmt.Println(tui.OutcomeLine(domain.Fail("", domain.CodeFormat, err.Error())))
			return state, true, nil
		}
		if err := manager.Save(ctx, next.SessionID, next); err != nil {
			return next, true, err
		}
		return next, true, nil

	case strings.HasPrefix(trimmed, ":jump "):
		target := strings.TrimSpace(strings.TrimPrefix(trimmed, ":jump "))
		next, _, err := wizard.JumpTo(ctx, state, target)
		if err != nil {
			fmt.Println(tui.OutcomeLine(domain.Fail("", domain.CodeFormat, err.Error())))
			return state, true, nil
		}
		if err := manager.Save(ctx, next.SessionID, next); err != nil {
			return next, true, err
		}
		return next, true, nil
	}

	return state, false, nil
}

func logCompletion(state *domain.State, err error, sigCtx *SignalContext) {
	stepID := ""
	if state != nil {
		stepID = state.StepID
	}

	if err == nil {
		return
	}
	if !isInterrupted(err) {
		return
	}

	if sigCtx.Signal() != nil {
		fmt.Printf("\n")
	}
	if state != nil && state.Submitted() {
		return
	}
	printSystemMessage("Interrupted at '%s' step. Progress saved.", stepID)
}
