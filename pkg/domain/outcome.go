package domain

// OutcomeCode classifies why a validation outcome failed. Adapters use it to
// distinguish "value rejected" from "unable to verify" without parsing
// messages.
type OutcomeCode string

const (
	// CodeRequired means a required field is empty or unselected.
	CodeRequired OutcomeCode = "required"
	// CodeFormat means the value is malformed (email shape, digit count).
	CodeFormat OutcomeCode = "format"
	// CodeMismatch means a confirmation value does not match its pair.
	CodeMismatch OutcomeCode = "mismatch"
	// CodeUnconfirmed means an address lacks a resolved street component.
	CodeUnconfirmed OutcomeCode = "unconfirmed"
	// CodeRejected means the remote service reported the value unacceptable
	// (duplicate email, expired invitation code).
	CodeRejected OutcomeCode = "rejected"
	// CodeUnverifiable means the remote check could not be reached; the
	// value may be fine, the user should retry.
	CodeUnverifiable OutcomeCode = "unverifiable"
	// CodeSubmit means the terminal create call failed; page-level.
	CodeSubmit OutcomeCode = "submit"
)

// Outcome is the result of validating one step. Failures are local and
// recoverable: they never escape as errors, the session stays on the step.
type Outcome struct {
	Valid   bool        `json:"valid"`
	Field   string      `json:"field,omitempty"`
	Code    OutcomeCode `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK is the valid outcome.
func OK() Outcome {
	return Outcome{Valid: true}
}

// Fail builds an invalid outcome scoped to a field.
func Fail(field string, code OutcomeCode, message string) Outcome {
	return Outcome{Field: field, Code: code, Message: message}
}

// Retryable reports whether the failure was transport-level rather than a
// rejection of the value itself.
func (o Outcome) Retryable() bool {
	return o.Code == CodeUnverifiable
}
