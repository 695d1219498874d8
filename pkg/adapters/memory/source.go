package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stile/pkg/domain"
)

// Source implements ports.CatalogSource over an in-memory flow map.
// Useful for tests and for embedding catalogs directly in the host binary.
type Source struct {
	mu    sync.RWMutex
	flows map[string]*domain.Catalog
}

// NewSource creates an empty in-memory catalog source.
func NewSource() *Source {
	return &Source{flows: make(map[string]*domain.Catalog)}
}

// NewFromSteps creates a source serving a single flow built from the given
// steps. This handles catalog construction, improving DX for tests.
func NewFromSteps(flow string, steps ...domain.Step) (*Source, error) {
	catalog, err := domain.NewCatalog(steps...)
	if err != nil {
		return nil, fmt.Errorf("failed to build flow %s: %w", flow, err)
	}
	s := NewSource()
	s.Add(flow, catalog)
	return s, nil
}

// Add registers (or replaces) a flow.
func (s *Source) Add(flow string, catalog *domain.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[flow] = catalog
}

// Load retrieves the catalog for a named flow.
func (s *Source) Load(ctx context.Context, flow string) (*domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog, ok := s.flows[flow]
	if !ok {
		return nil, fmt.Errorf("flow not found: %s", flow)
	}
	return catalog, nil
}

// Flows lists the registered flow names in deterministic order.
func (s *Source) Flows(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.flows))
	for name := range s.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
