package runtime

import (
	"strings"

	"github.com/aretw0/stile/pkg/domain"
)

// assemble merges the value map into the canonical submission payload.
//
// Only fields bound to currently-visible steps are included, so answers to
// steps hidden by a later edit (a stale "referralOther" after referral was
// changed back) are omitted rather than sent as leftovers. Strings are
// trimmed, and empty values are dropped entirely so the backend can
// distinguish "not provided" from "explicitly cleared".
func (e *Engine) assemble(state *domain.State) map[string]any {
	payload := make(map[string]any)

	for _, step := range e.catalog.Visible(state.Values) {
		field := step.FieldName()
		value, ok := state.Values[field]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				payload[field] = trimmed
			}
		case bool:
			if v {
				payload[field] = v
			}
		case []string:
			if len(v) > 0 {
				payload[field] = v
			}
		case []any:
			if len(v) > 0 {
				payload[field] = v
			}
		case map[string]any:
			if len(v) > 0 {
				payload[field] = assembleAddress(step, v)
			}
		case nil:
			// unanswered
		default:
			payload[field] = v
		}
	}

	return payload
}

// assembleAddress strips the engine-internal confirmation flag from address
// values before they leave the wizard.
func assembleAddress(step domain.Step, value map[string]any) map[string]any {
	if step.Kind != domain.KindAddress {
		return value
	}
	out := make(map[string]any, len(value))
	for k, v := range value {
		if k == "confirmed" {
			continue
		}
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out[k] = s
			}
			continue
		}
		out[k] = v
	}
	return out
}
