package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrCheckPending is returned when navigation is attempted while a remote
// check is outstanding for the session. The pending operation must resolve
// first; concurrent calls are rejected, not queued.
var ErrCheckPending = errors.New("remote check pending")

// ErrSubmitInFlight is returned when a second submission is attempted while
// one is already outstanding for the session.
var ErrSubmitInFlight = errors.New("submission in flight")

// ErrExitWizard signals that Back was called on the first step and the
// wizard is configured to delegate the exit to its host.
var ErrExitWizard = errors.New("exit wizard")

// ErrStepNotFound is returned when a step ID is not in the catalog or is not
// currently visible.
var ErrStepNotFound = errors.New("step not found")

// ErrCatalogInvalid is returned when a catalog fails structural validation.
var ErrCatalogInvalid = errors.New("invalid catalog")

// ErrSubmitted is returned when navigation is attempted on a session that
// has already completed.
var ErrSubmitted = errors.New("session already submitted")
