package runtime

import "github.com/aretw0/stile/pkg/domain"

// locate resolves the visible sequence for the given values and the index of
// the focused step within it.
//
// If the focused step was hidden by a values change, the index is clamped to
// the nearest still-visible step in the direction of travel (forward, toward
// the terminal step), falling back to the last visible step when the hidden
// step was past the end of the new sequence. The index returned is always a
// valid index into the returned slice, provided the catalog has at least one
// visible step.
func (e *Engine) locate(values domain.Values, stepID string) ([]domain.Step, int) {
	visible := e.catalog.Visible(values)
	if len(visible) == 0 {
		return visible, 0
	}

	for i, s := range visible {
		if s.ID == stepID {
			return visible, i
		}
	}

	// Hidden: clamp forward using catalog positions, which stay meaningful
	// because visibility filtering is order-stable.
	pos := e.catalog.Position(stepID)
	for i, s := range visible {
		if e.catalog.Position(s.ID) > pos {
			return visible, i
		}
	}
	return visible, len(visible) - 1
}
