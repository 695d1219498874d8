package domain

// Record is the created resource returned by a backend create call.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields,omitempty"`
}

// AddressSuggestion is one structured candidate from the address provider,
// ranked by relevance. The wizard only consumes this top-level shape.
type AddressSuggestion struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Formatted  string `json:"formatted"`
}

// AsValue converts a suggestion into the nested map stored for an address
// step. Selecting a suggestion counts as confirmation.
func (a AddressSuggestion) AsValue() map[string]any {
	return map[string]any{
		"street":      a.Street,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"formatted":   a.Formatted,
		"confirmed":   true,
	}
}

// ConfirmedAddress builds the stored value for a free-text address the user
// explicitly confirmed without picking a suggestion.
func ConfirmedAddress(street string) map[string]any {
	return map[string]any{
		"street":    street,
		"confirmed": true,
	}
}
