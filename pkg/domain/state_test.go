package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/pkg/domain"
)

func TestNewState(t *testing.T) {
	catalog, err := domain.NewCatalog(
		domain.Step{ID: "userType", Kind: domain.KindChoice, Options: []string{"customer", "contractor"}},
		domain.Step{ID: "inviteCode", Kind: domain.KindText, SkipWhen: func(v domain.Values) bool {
			return v.String("userType") != "contractor"
		}},
		domain.Step{ID: "trades", Kind: domain.KindChoiceMulti},
		domain.Step{ID: "terms", Kind: domain.KindCheckbox},
	)
	require.NoError(t, err)

	state := domain.NewState("s1", catalog)
	assert.Equal(t, "s1", state.SessionID)
	assert.Equal(t, "userType", state.StepID)
	assert.Equal(t, domain.StatusActive, state.Status)
	assert.Equal(t, []string{"userType"}, state.History)

	// Every bound field is seeded, hidden steps included: absence means
	// "unanswered", never "missing key".
	assert.Equal(t, "", state.Values["userType"])
	assert.Equal(t, "", state.Values["inviteCode"])
	assert.Equal(t, []string{}, state.Values["trades"])
	assert.Equal(t, false, state.Values["terms"])
}

func TestStateClone(t *testing.T) {
	catalog, err := domain.NewCatalog(
		domain.Step{ID: "trades", Kind: domain.KindChoiceMulti},
		domain.Step{ID: "address", Kind: domain.KindAddress},
	)
	require.NoError(t, err)

	state := domain.NewState("s1", catalog)
	state.Values["trades"] = []string{"plumbing"}
	state.Values["address"] = map[string]any{"street": "1 Main St"}
	state.Pending = &domain.PendingCheck{StepID: "email", Value: "a@b.co"}

	clone := state.Clone()
	clone.Values["trades"] = append(clone.Values.Strings("trades"), "roofing")
	clone.Values.Map("address")["street"] = "2 Oak Ave"
	clone.History = append(clone.History, "address")
	clone.Pending.Value = "changed"

	assert.Equal(t, []string{"plumbing"}, state.Values.Strings("trades"))
	assert.Equal(t, "1 Main St", state.Values.Map("address")["street"])
	assert.Equal(t, []string{"trades"}, state.History)
	assert.Equal(t, "a@b.co", state.Pending.Value)
}

func TestValuesAccessors(t *testing.T) {
	v := domain.Values{
		"name":    "Ada",
		"agree":   true,
		"typed":   []string{"a", "b"},
		"decoded": []any{"a", "b"},
		"addr":    map[string]any{"street": "1 Main St"},
		"rows":    []any{map[string]any{"state": "CA"}},
	}

	assert.Equal(t, "Ada", v.String("name"))
	assert.Equal(t, "", v.String("missing"))
	assert.True(t, v.Bool("agree"))
	assert.False(t, v.Bool("name"))
	assert.Equal(t, []string{"a", "b"}, v.Strings("typed"))
	// JSON round trips decode slices as []any.
	assert.Equal(t, []string{"a", "b"}, v.Strings("decoded"))
	assert.Equal(t, "1 Main St", v.Map("addr")["street"])
	require.Len(t, v.Rows("rows"), 1)
	assert.Equal(t, "CA", v.Rows("rows")[0]["state"])
}

func TestOutcome(t *testing.T) {
	ok := domain.OK()
	assert.True(t, ok.Valid)
	assert.False(t, ok.Retryable())

	fail := domain.Fail("email", domain.CodeRejected, "taken")
	assert.False(t, fail.Valid)
	assert.False(t, fail.Retryable())

	unverifiable := domain.Fail("email", domain.CodeUnverifiable, "try again")
	assert.True(t, unverifiable.Retryable())
}
