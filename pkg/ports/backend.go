package ports

import (
	"context"

	"github.com/aretw0/stile/pkg/domain"
)

// Checker performs remote availability/validity checks gating forward
// navigation (is this email free, is this invitation code active).
//
// The contract is uniform: a transport failure is returned as an error and
// treated by the engine as "cannot verify" (blocking but retryable); a nil
// error carries a boolean available/valid flag.
type Checker interface {
	Check(ctx context.Context, name, value string) (bool, error)
}

// Suggester resolves a free-text query into ranked address candidates.
// The provider is opaque; the engine only consumes the top-level shape.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]domain.AddressSuggestion, error)
}

// Uploader stores raw image bytes and returns a resource reference (URL)
// to place into the value map.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Submitter receives the assembled submission payload. It is called exactly
// once per successful terminal validation. A returned error's message is
// surfaced verbatim to the user.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]any) (*domain.Record, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, name, value string) (bool, error)

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context, name, value string) (bool, error) {
	return f(ctx, name, value)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, payload map[string]any) (*domain.Record, error)

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, payload map[string]any) (*domain.Record, error) {
	return f(ctx, payload)
}
