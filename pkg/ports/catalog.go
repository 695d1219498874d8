package ports

import (
	"context"

	"github.com/aretw0/stile/pkg/domain"
)

// CatalogSource defines how the engine retrieves a step catalog.
// This allows the storage layer (Loam, memory) to be decoupled.
type CatalogSource interface {
	// Load retrieves the catalog for a named flow (e.g. "signup",
	// "add-business").
	Load(ctx context.Context, flow string) (*domain.Catalog, error)

	// Flows lists the flow names available from this source.
	Flows(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for catalog sources that can notify about
// backend changes. Used for hot reload in dev mode.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying catalog
	// changes. It abstracts away the event details, signaling only that a
	// reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
