package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventCheck     EventType = "check"
	EventSubmit    EventType = "submit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	StepID string `json:"step_id"`
	Kind   Kind   `json:"kind"`
}

// CheckEvent represents a remote availability/validity check.
type CheckEvent struct {
	EventBase
	StepID   string        `json:"step_id"`
	Check    string        `json:"check"`
	Valid    bool          `json:"valid"`
	Err      bool          `json:"err,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SubmitEvent represents a terminal submission attempt.
type SubmitEvent struct {
	EventBase
	Success bool `json:"success"`
}

// LifecycleHooks defines callbacks for engine observability. Nil hooks are
// skipped.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnCheck     func(context.Context, *CheckEvent)
	OnSubmit    func(context.Context, *SubmitEvent)
}
