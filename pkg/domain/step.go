package domain

import "github.com/aretw0/stile/pkg/schema"

// Kind identifies the input affordance a step asks for. It governs which
// validator applies and what the presentation adapter should render.
type Kind string

const (
	KindChoice      Kind = "choice"
	KindChoiceMulti Kind = "choiceMulti"
	KindText        Kind = "text"
	KindEmail       Kind = "email"
	KindTel         Kind = "tel"
	KindPassword    Kind = "password"
	KindUpload      Kind = "upload"
	KindAddress     Kind = "address"
	KindTextarea    Kind = "textarea"
	KindCheckbox    Kind = "checkbox"
	KindYesNo       Kind = "yesNo"
	KindCompound    Kind = "compound"
)

// Kinds lists every supported step kind (used by catalog linting).
var Kinds = []Kind{
	KindChoice, KindChoiceMulti, KindText, KindEmail, KindTel, KindPassword,
	KindUpload, KindAddress, KindTextarea, KindCheckbox, KindYesNo, KindCompound,
}

// Remote check names understood by the engine. A Checker implementation maps
// these to whatever endpoint performs the lookup.
const (
	CheckEmail      = "email"
	CheckInviteCode = "inviteCode"
)

// Predicate decides whether a step is skipped for the given answers.
// Predicates must be pure: no side effects, deterministic for a value map.
// Each predicate is responsible for its own handling of missing keys.
type Predicate func(Values) bool

// Step is one screen/prompt in a wizard, bound to at most one field.
type Step struct {
	// ID is the stable symbolic name of the step, unique within a catalog.
	ID string `json:"id" yaml:"id"`

	// Field is the key in the value map this step reads and writes.
	// Empty means the step binds directly to its ID.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// Kind selects the input affordance and validation rule.
	Kind Kind `json:"kind" yaml:"kind"`

	// Prompt is the markdown shown to the user, with {{field}} placeholders
	// interpolated from collected values.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// Options constrains choice and choiceMulti steps.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Required blocks forward navigation while the bound value is empty.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// MatchField names another field this step's value must equal exactly
	// (password confirmation).
	MatchField string `json:"match_field,omitempty" yaml:"match_field,omitempty"`

	// Check names a remote availability/validity check gating this step
	// ("email", "inviteCode"). Empty means no remote check.
	Check string `json:"check,omitempty" yaml:"check,omitempty"`

	// Schema validates each row of a compound step's value.
	Schema schema.Schema `json:"-" yaml:"-"`

	// SkipWhen hides the step when it returns true. Evaluated fresh on every
	// values change.
	SkipWhen Predicate `json:"-" yaml:"-"`

	// Metadata carries extensible key-value pairs for adapters.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FieldName resolves the value-map key this step binds to.
func (s Step) FieldName() string {
	if s.Field != "" {
		return s.Field
	}
	return s.ID
}

// Skipped reports whether the step is hidden for the given values.
func (s Step) Skipped(v Values) bool {
	return s.SkipWhen != nil && s.SkipWhen(v)
}

// ZeroValue returns the unanswered default for the step's kind. Absence of an
// answer is "unanswered", not an error, so every bound field is seeded.
func (s Step) ZeroValue() any {
	switch s.Kind {
	case KindCheckbox:
		return false
	case KindChoiceMulti:
		return []string{}
	case KindCompound:
		return []any{}
	case KindAddress:
		return map[string]any{}
	default:
		return ""
	}
}
