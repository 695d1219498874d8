package domain

// Values is the open key/value map holding collected answers.
// Values are strings, booleans, string slices, or nested maps/slices
// (e.g. a license row or an address).
type Values map[string]any

// String returns the value as a string, or "" when absent or not a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Bool returns the value as a bool, or false when absent or not a bool.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Strings returns the value as a string slice. JSON round-trips decode
// slices as []any, so both representations are accepted.
func (v Values) Strings(key string) []string {
	switch t := v[key].(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns the value as a nested map, or nil.
func (v Values) Map(key string) map[string]any {
	m, _ := v[key].(map[string]any)
	return m
}

// Rows returns the value as a slice of nested maps (compound steps).
func (v Values) Rows(key string) []map[string]any {
	raw, ok := v[key].([]any)
	if !ok {
		if rows, ok := v[key].([]map[string]any); ok {
			return rows
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Clone creates a copy safe for independent mutation. Nested maps and slices
// are copied one level deep, which covers every shape the engine writes.
func (v Values) Clone() Values {
	next := make(Values, len(v))
	for k, val := range v {
		switch t := val.(type) {
		case map[string]any:
			m := make(map[string]any, len(t))
			for mk, mv := range t {
				m[mk] = mv
			}
			next[k] = m
		case []string:
			next[k] = append([]string(nil), t...)
		case []any:
			next[k] = append([]any(nil), t...)
		default:
			next[k] = val
		}
	}
	return next
}
