package domain

import (
	"fmt"
	"strings"
)

// CompileCondition turns a skip_when expression from a catalog file into a
// Predicate. The grammar is deliberately small:
//
//	field == 'value'   equality against a string literal
//	field != 'value'   inequality
//	field              truthy (non-empty string, true bool, non-empty slice)
//	!field             falsy
//
// Missing fields evaluate to their natural zero, so predicates tolerate
// unanswered values without special cases.
func CompileCondition(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty condition")
	}

	if field, lit, ok := splitOp(expr, "=="); ok {
		return func(v Values) bool { return literal(v, field) == lit }, nil
	}
	if field, lit, ok := splitOp(expr, "!="); ok {
		return func(v Values) bool { return literal(v, field) != lit }, nil
	}

	if rest, ok := strings.CutPrefix(expr, "!"); ok {
		field := strings.TrimSpace(rest)
		if !validField(field) {
			return nil, fmt.Errorf("invalid condition %q", expr)
		}
		return func(v Values) bool { return !truthy(v[field]) }, nil
	}

	if !validField(expr) {
		return nil, fmt.Errorf("invalid condition %q", expr)
	}
	field := expr
	return func(v Values) bool { return truthy(v[field]) }, nil
}

func splitOp(expr, op string) (field, lit string, ok bool) {
	parts := strings.SplitN(expr, op, 2)
	if len(parts) != 2 {
		return "", "", false
	}
	field = strings.TrimSpace(parts[0])
	lit = strings.TrimSpace(parts[1])
	if !validField(field) {
		return "", "", false
	}
	if !strings.HasPrefix(lit, "'") || !strings.HasSuffix(lit, "'") || len(lit) < 2 {
		return "", "", false
	}
	return field, strings.Trim(lit, "'"), true
}

func validField(field string) bool {
	if field == "" {
		return false
	}
	for _, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func literal(v Values, field string) string {
	switch t := v[field].(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truthy(val any) bool {
	switch t := val.(type) {
	case string:
		return t != ""
	case bool:
		return t
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case nil:
		return false
	default:
		return true
	}
}
