package domain

import "fmt"

// Catalog is the full static, ordered list of possible steps for a wizard.
type Catalog struct {
	steps []Step
	index map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate step IDs and
// unknown kinds.
func NewCatalog(steps ...Step) (*Catalog, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: catalog has no steps", ErrCatalogInvalid)
	}

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: step at position %d missing id", ErrCatalogInvalid, i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate step id %q", ErrCatalogInvalid, s.ID)
		}
		if !validKind(s.Kind) {
			return nil, fmt.Errorf("%w: step %q has unknown kind %q", ErrCatalogInvalid, s.ID, s.Kind)
		}
		index[s.ID] = i
	}

	return &Catalog{steps: append([]Step(nil), steps...), index: index}, nil
}

func validKind(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Steps returns the full ordered step list.
func (c *Catalog) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// Len returns the number of steps in the catalog.
func (c *Catalog) Len() int {
	return len(c.steps)
}

// Get returns a step by ID.
func (c *Catalog) Get(id string) (Step, bool) {
	i, ok := c.index[id]
	if !ok {
		return Step{}, false
	}
	return c.steps[i], true
}

// Position returns the catalog position of a step ID, or -1.
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Visible filters the catalog down to the steps relevant for the given
// values. The filtering is stable: relative catalog order is preserved, so
// indices into the result stay meaningful between recomputes.
func (c *Catalog) Visible(v Values) []Step {
	out := make([]Step, 0, len(c.steps))
	for _, s := range c.steps {
		if s.Skipped(v) {
			continue
		}
		out = append(out, s)
	}
	return out
}
