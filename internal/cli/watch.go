package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/stile/internal/presentation/tui"
	"github.com/aretw0/stile/pkg/domain"
)

// RunWatch executes the wizard in development mode, reloading the flow
// catalog whenever a step document changes. Session state survives reloads
// so authors can iterate on later steps without re-answering earlier ones.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner()

	// Default session for watch mode to enable stateful hot reload. Scoped
	// by path hash to prevent collisions between flow directories.
	if opts.SessionID == "" {
		hash := md5.Sum([]byte(opts.FlowPath + "/" + opts.Flow))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	if opts.Fresh {
		ResetSession(opts, opts.SessionID)
	}

	logger.Info("Starting watcher", "path", opts.FlowPath, "flow", opts.Flow, "session_id", opts.SessionID)
	printSystemMessage("Watcher at '%s' session.", opts.SessionID)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// One pump goroutine owns stdin across reload iterations; a second
	// reader would steal lines after the first reload.
	prompter := NewInterruptiblePrompter()

	for {
		if !runWatchIteration(sigCtx, opts, prompter) {
			break
		}
		logger.Info("Watcher restarting")
	}

	return nil
}

func runWatchIteration(parentCtx *SignalContext, opts RunOptions, prompter *Prompter) bool {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	logger := createLogger(opts.Debug)

	wizard, _, err := buildWizard(opts, logger)
	if err != nil {
		logger.Error("Wizard initialization failed", "err", err)
		printSystemMessage("Flow failed to load: %v", err)
		// Wait for a fix before retrying.
		select {
		case <-parentCtx.Done():
			return false
		case <-time.After(2 * time.Second):
			return true
		}
	}

	_, manager, err := setupPersistence(opts)
	if err != nil {
		logger.Error("Persistence setup failed", "err", err)
		return false
	}

	state, err := manager.LoadOrStart(ctx, opts.SessionID, wizard.Catalog())
	if err != nil {
		logger.Error("State rehydration failed", "err", err)
		return false
	}

	// A reloaded catalog may have dropped the step the session was parked
	// on; JumpTo-style clamping happens on the next render, but a step that
	// no longer exists needs an explicit reset to the front.
	if _, ok := wizard.Catalog().Get(state.StepID); !ok && state.StepID != "" {
		printSystemMessage("Step '%s' no longer exists, restarting at the top.", state.StepID)
		fresh := wizard.Start(state.SessionID)
		fresh.Values = state.Values
		state = fresh
	}

	watchCh, err := wizard.Watch(ctx)
	if err != nil {
		logger.Warn("Source does not support watching", "err", err)
	}

	reloadCh := make(chan struct{}, 1)
	go func() {
		if watchCh == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case _, ok := <-watchCh:
			if ok {
				fmt.Printf("\n")
				printSystemMessage("Change detected, reloading flow.")
				// Delay slightly to ensure the file system is stable.
				time.Sleep(100 * time.Millisecond)
				reloadCh <- struct{}{}
				cancel()
			}
		}
	}()

	doneCh := make(chan struct {
		state *domain.State
		err   error
	}, 1)
	go func() {
		s, err := runLoop(ctx, wizard, manager, state, prompter)
		doneCh <- struct {
			state *domain.State
			err   error
		}{s, err}
	}()

	select {
	case <-parentCtx.Done():
		cancel()
		<-doneCh
		printSystemMessage("Stopping watcher.")
		return false
	case <-reloadCh:
		cancel()
		<-doneCh
		return true
	case res := <-doneCh:
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) {
				return true
			}
			if isInterrupted(res.err) {
				return false
			}
			logger.Error("Runtime error", "err", res.err)
		}
		if res.state != nil && res.state.Submitted() {
			printSystemMessage("Flow finished. Waiting for changes...")
		}
		select {
		case <-parentCtx.Done():
			return false
		case <-reloadCh:
			return true
		case <-ctx.Done():
			return true
		}
	}
}
