package domain

// Status defines the current mode of a wizard session.
type Status string

const (
	// StatusActive means the session is collecting answers.
	StatusActive Status = "active"
	// StatusChecking means a remote field check is outstanding; navigation
	// on the session is blocked until it resolves.
	StatusChecking Status = "checking"
	// StatusSubmitting means the terminal submission is in flight.
	StatusSubmitting Status = "submitting"
	// StatusSubmitted means the create call succeeded; the session is done.
	StatusSubmitted Status = "submitted"
)

// PendingCheck records the step and value an outstanding remote check was
// issued for. A resolution is discarded unless it still matches.
type PendingCheck struct {
	StepID string `json:"step_id"`
	Value  string `json:"value"`
}

// State is one running wizard session: its answers and its position.
// The value map is owned exclusively by the session; all mutation flows
// through the engine, which clones before writing.
type State struct {
	// SessionID correlates the session across stores and adapters.
	SessionID string `json:"session_id"`

	// StepID is the id of the step currently in focus. Positions are always
	// addressed by id, never by raw index: indices shift when visibility
	// changes.
	StepID string `json:"step_id"`

	// Status indicates whether the session is collecting, blocked on a
	// remote check, submitting, or finished.
	Status Status `json:"status"`

	// Values holds every collected answer keyed by field name.
	Values Values `json:"values"`

	// History tracks visited step ids, for debugging and resume UX.
	History []string `json:"history"`

	// Pending is set while a remote check is outstanding.
	Pending *PendingCheck `json:"pending,omitempty"`

	// SubmitError carries the server's message verbatim after a failed
	// terminal submission. Page-level, distinct from field outcomes.
	SubmitError string `json:"submit_error,omitempty"`

	// Record is the created record after a successful submission.
	Record *Record `json:"record,omitempty"`
}

// NewState creates a clean session positioned at the first visible step of
// the catalog, with every bound field seeded to its unanswered default.
func NewState(sessionID string, c *Catalog) *State {
	values := make(Values)
	for _, s := range c.steps {
		field := s.FieldName()
		if _, ok := values[field]; !ok {
			values[field] = s.ZeroValue()
		}
	}

	first := ""
	if visible := c.Visible(values); len(visible) > 0 {
		first = visible[0].ID
	}

	return &State{
		SessionID: sessionID,
		StepID:    first,
		Status:    StatusActive,
		Values:    values,
		History:   []string{first},
	}
}

// Clone creates a copy with an independent value map and history, safe for
// mutation without aliasing the source.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Values = s.Values.Clone()
	next.History = append([]string(nil), s.History...)
	if s.Pending != nil {
		p := *s.Pending
		next.Pending = &p
	}
	if s.Record != nil {
		r := *s.Record
		next.Record = &r
	}
	return &next
}

// Submitted reports whether the session has completed successfully.
func (s *State) Submitted() bool {
	return s.Status == StatusSubmitted
}
