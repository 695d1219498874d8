package loam

import (
	"fmt"

	"github.com/aretw0/stile/pkg/schema"
)

// StepMetadata represents the frontmatter of a step document. It uses
// "mapstructure" tags to match standard frontmatter/YAML keys.
type StepMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Field string `json:"field" mapstructure:"field"`
	Kind  string `json:"kind" mapstructure:"kind"`

	Options  []string `json:"options" mapstructure:"options"`
	Required bool     `json:"required" mapstructure:"required"`

	// MatchField names another field this step's value must equal
	// (password confirmation).
	MatchField string `json:"match_field" mapstructure:"match_field"`

	// Check names a remote check gating this step ("email", "inviteCode").
	Check string `json:"check" mapstructure:"check"`

	// SkipWhen is a condition expression hiding the step when true,
	// e.g. "userType != 'contractor'".
	SkipWhen string `json:"skip_when" mapstructure:"skip_when"`

	// Schema declares the row shape for compound steps,
	// e.g. {state: string, number: string}.
	Schema map[string]any `json:"schema" mapstructure:"schema"`

	// Position orders steps within a flow. Ties fall back to document ID
	// order, which tracks the filename.
	Position int `json:"position" mapstructure:"position"`

	// Metadata carries extensible key-value pairs for adapters.
	Metadata map[string]string `json:"metadata" mapstructure:"metadata"`
}

// normalizeSchema converts frontmatter schema declarations into the string
// form schema.ParseTypeMap understands. YAML lists like [string] arrive as
// single-element []any.
func normalizeSchema(raw map[string]any) (schema.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	normalized := make(map[string]string, len(raw))
	for key, value := range raw {
		typeStr, err := formatSchemaType(value)
		if err != nil {
			return nil, fmt.Errorf("schema.%s: %w", key, err)
		}
		normalized[key] = typeStr
	}

	return schema.ParseTypeMap(normalized)
}

func formatSchemaType(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []any:
		if len(v) != 1 {
			return "", fmt.Errorf("expected single element list for slice type")
		}
		inner, err := formatSchemaType(v[0])
		if err != nil {
			return "", err
		}
		return "[" + inner + "]", nil
	case []string:
		if len(v) != 1 {
			return "", fmt.Errorf("expected single element list for slice type")
		}
		return "[" + v[0] + "]", nil
	default:
		return "", fmt.Errorf("expected string or list, got %T", value)
	}
}
