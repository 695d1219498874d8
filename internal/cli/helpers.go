package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/internal/logging"
	"github.com/aretw0/stile/pkg/adapters/backend"
	"github.com/aretw0/stile/pkg/adapters/file"
	loamadapter "github.com/aretw0/stile/pkg/adapters/loam"
	redisstore "github.com/aretw0/stile/pkg/adapters/redis"
	"github.com/aretw0/stile/pkg/ports"
	"github.com/aretw0/stile/pkg/session"
	goredis "github.com/redis/go-redis/v9"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// buildStore selects the session persistence backend: Redis when a URL is
// given, local files otherwise.
func buildStore(opts RunOptions) (ports.StateStore, error) {
	if opts.RedisURL != "" {
		redisOpts, err := goredis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		return redisstore.NewFromClient(goredis.NewClient(redisOpts)), nil
	}
	return file.New(opts.StorePath), nil
}

// buildWizard assembles a wizard from the flow directory plus, when a
// backend URL is configured, the remote check and submit collaborators.
func buildWizard(opts RunOptions, logger *slog.Logger) (*stile.Wizard, *loamadapter.Source, error) {
	source, err := loamadapter.Open(opts.FlowPath)
	if err != nil {
		return nil, nil, err
	}

	wizardOpts := []stile.Option{
		stile.WithSource(source, opts.Flow),
		stile.WithLogger(logger),
	}

	if opts.BackendURL != "" {
		client := backend.NewClient(opts.BackendURL, backend.WithLogger(logger))
		wizardOpts = append(wizardOpts,
			stile.WithChecker(client),
			stile.WithSubmitter(client),
		)
	}

	wizard, err := stile.New(nil, wizardOpts...)
	if err != nil {
		return nil, nil, err
	}
	return wizard, source, nil
}

// setupPersistence initializes the state store and session manager.
func setupPersistence(opts RunOptions) (ports.StateStore, *session.Manager, error) {
	store, err := buildStore(opts)
	if err != nil {
		return nil, nil, err
	}
	return store, session.NewManager(store), nil
}

// ResetSession clears the session data for the given ID.
func ResetSession(opts RunOptions, sessionID string) {
	store, err := buildStore(opts)
	if err != nil {
		return
	}
	_ = store.Delete(context.Background(), sessionID)
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		err.Error() == "interrupted" ||
		errors.Is(err, io.EOF) ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}
