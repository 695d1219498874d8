/*
Package domain contains the core domain models of the stile wizard engine.

It defines the fundamental entities of a multi-step form: Steps, Catalogs,
the session State, and validation Outcomes. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Step: one screen/prompt, bound to at most one field, with a kind that
    selects its input affordance and validation rule.
  - Catalog: the full static ordered list of steps for a wizard, filtered to
    a visible subsequence by each step's SkipWhen predicate.
  - State: the runtime snapshot of a session (current step, collected values,
    history, pending remote check).
  - Outcome: the step-scoped result of validation, never an error.
*/
package domain
