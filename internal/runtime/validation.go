package runtime

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/schema"
)

// User-facing validation messages. Field-adjacent, short, and specific: the
// user is never blocked without an explanation.
const (
	MsgRequired       = "This field is required"
	MsgSelectOne      = "Select at least one option"
	MsgUnknownOption  = "Select one of the listed options"
	MsgEmailFormat    = "Enter a valid email address"
	MsgEmailTaken     = "This email is already registered"
	MsgTelTooShort    = "Enter a phone number with at least 10 digits"
	MsgPasswordsMatch = "Passwords do not match"
	MsgAddressConfirm = "Select an address suggestion or confirm the address"
	MsgAgreeTerms     = "You must agree before continuing"
	MsgYesNo          = "Answer yes or no"
	MsgInviteInvalid  = "This invitation code is not valid or has expired"
	MsgUnverifiable   = "Unable to verify right now, please try again"
	MsgRejected       = "This value was not accepted"
)

// minTelDigits is the minimum digit count for a phone number after
// normalization.
const minTelDigits = 10

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateSync applies the per-kind rule for a step against the current
// values. Remote checks are not performed here; they gate navigation
// separately. Failures are outcomes, never errors.
func validateSync(step domain.Step, values domain.Values) domain.Outcome {
	field := step.FieldName()

	switch step.Kind {
	case domain.KindText, domain.KindTextarea:
		if step.Required && strings.TrimSpace(values.String(field)) == "" {
			return domain.Fail(field, domain.CodeRequired, MsgRequired)
		}

	case domain.KindEmail:
		v := strings.TrimSpace(values.String(field))
		if v == "" {
			if step.Required {
				return domain.Fail(field, domain.CodeRequired, MsgRequired)
			}
			return domain.OK()
		}
		if !emailShape.MatchString(v) {
			return domain.Fail(field, domain.CodeFormat, MsgEmailFormat)
		}

	case domain.KindTel:
		v := values.String(field)
		if v == "" {
			if step.Required {
				return domain.Fail(field, domain.CodeRequired, MsgRequired)
			}
			return domain.OK()
		}
		if len(telDigits(v)) < minTelDigits {
			return domain.Fail(field, domain.CodeFormat, MsgTelTooShort)
		}

	case domain.KindPassword:
		v := values.String(field)
		if v == "" {
			return domain.Fail(field, domain.CodeRequired, MsgRequired)
		}
		if step.MatchField != "" && v != values.String(step.MatchField) {
			return domain.Fail(field, domain.CodeMismatch, MsgPasswordsMatch)
		}

	case domain.KindChoice:
		v := values.String(field)
		if v == "" {
			if step.Required {
				return domain.Fail(field, domain.CodeRequired, MsgRequired)
			}
			return domain.OK()
		}
		if len(step.Options) > 0 && !containsOption(step.Options, v) {
			return domain.Fail(field, domain.CodeFormat, MsgUnknownOption)
		}

	case domain.KindChoiceMulti:
		selected := values.Strings(field)
		if step.Required && len(selected) == 0 {
			return domain.Fail(field, domain.CodeRequired, MsgSelectOne)
		}
		if len(step.Options) > 0 {
			for _, v := range selected {
				if !containsOption(step.Options, v) {
					return domain.Fail(field, domain.CodeFormat, MsgUnknownOption)
				}
			}
		}

	case domain.KindAddress:
		addr := values.Map(field)
		street, _ := addr["street"].(string)
		confirmed, _ := addr["confirmed"].(bool)
		if strings.TrimSpace(street) == "" || !confirmed {
			// A bare, unconfirmed text query is not sufficient.
			if !step.Required && len(addr) == 0 {
				return domain.OK()
			}
			return domain.Fail(field, domain.CodeUnconfirmed, MsgAddressConfirm)
		}

	case domain.KindUpload:
		// Optional by default: advancing without a value is allowed unless
		// the step is explicitly required.
		if step.Required && values.String(field) == "" {
			return domain.Fail(field, domain.CodeRequired, MsgRequired)
		}

	case domain.KindCheckbox:
		if step.Required && !values.Bool(field) {
			return domain.Fail(field, domain.CodeRequired, MsgAgreeTerms)
		}

	case domain.KindYesNo:
		v := values.String(field)
		if v == "" {
			if step.Required {
				return domain.Fail(field, domain.CodeRequired, MsgRequired)
			}
			return domain.OK()
		}
		if v != "yes" && v != "no" {
			return domain.Fail(field, domain.CodeFormat, MsgYesNo)
		}

	case domain.KindCompound:
		rows := values.Rows(field)
		if step.Required && len(rows) == 0 {
			return domain.Fail(field, domain.CodeRequired, MsgRequired)
		}
		for i, row := range rows {
			if err := schema.Validate(step.Schema, row); err != nil {
				return domain.Fail(field, domain.CodeFormat, fmt.Sprintf("entry %d: %s", i+1, err))
			}
		}
	}

	return domain.OK()
}

// rejectionMessage maps a failed remote check to its specific message.
func rejectionMessage(check string) string {
	switch check {
	case domain.CheckEmail:
		return MsgEmailTaken
	case domain.CheckInviteCode:
		return MsgInviteInvalid
	default:
		return MsgRejected
	}
}

func telDigits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// normalizeInput coerces raw host input into the stored representation for a
// step kind. Yes/no answers follow the usual CLI conventions.
func normalizeInput(step domain.Step, input any) any {
	switch step.Kind {
	case domain.KindYesNo:
		switch v := input.(type) {
		case bool:
			if v {
				return "yes"
			}
			return "no"
		case string:
			clean := strings.ToLower(strings.TrimSpace(v))
			switch clean {
			case "y", "yes", "true", "1":
				return "yes"
			case "n", "no", "false", "0":
				return "no"
			case "":
				return ""
			}
			return clean
		}

	case domain.KindCheckbox:
		switch v := input.(type) {
		case bool:
			return v
		case string:
			clean := strings.ToLower(strings.TrimSpace(v))
			return clean == "y" || clean == "yes" || clean == "true" || clean == "1"
		}

	case domain.KindChoiceMulti:
		switch v := input.(type) {
		case []string:
			return v
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case string:
			if v == "" {
				return []string{}
			}
			parts := strings.Split(v, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}

	case domain.KindAddress:
		switch v := input.(type) {
		case domain.AddressSuggestion:
			return v.AsValue()
		case *domain.AddressSuggestion:
			if v != nil {
				return v.AsValue()
			}
			return map[string]any{}
		case map[string]any:
			return v
		}
	}

	return input
}
