package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/internal/runtime"
	"github.com/aretw0/stile/pkg/domain"
)

func TestEngine_PayloadAssembly(t *testing.T) {
	catalog, err := domain.NewCatalog(
		domain.Step{ID: "fullName", Kind: domain.KindText, Required: true},
		domain.Step{ID: "nickname", Kind: domain.KindText},
		domain.Step{ID: "trades", Kind: domain.KindChoiceMulti, Options: []string{"plumbing", "roofing"}},
		domain.Step{ID: "address", Kind: domain.KindAddress},
		domain.Step{ID: "newsletter", Kind: domain.KindCheckbox},
		domain.Step{ID: "terms", Kind: domain.KindCheckbox, Required: true},
	)
	require.NoError(t, err)

	submitter := &fakeSubmitter{}
	eng := runtime.NewEngine(catalog, runtime.WithSubmitter(submitter))

	state := domain.NewState("s1", catalog)
	state = advance(t, eng, state, "  Ada Lovelace  ")
	state = advance(t, eng, state, "")  // optional text, left blank
	state = advance(t, eng, state, "")  // no trades selected
	state = advance(t, eng, state, domain.AddressSuggestion{
		Street: " 1 Ferry Plaza ", City: "San Francisco", State: "CA", PostalCode: "94111",
	})
	state = advance(t, eng, state, false) // newsletter declined
	final, outcome, err := eng.Next(context.Background(), state, true)
	require.NoError(t, err)
	require.True(t, outcome.Valid)
	require.True(t, final.Submitted())

	payload := submitter.lastPayload()

	assert.Equal(t, "Ada Lovelace", payload["fullName"], "strings are trimmed")
	assert.NotContains(t, payload, "nickname", "blank optionals are dropped")
	assert.NotContains(t, payload, "trades", "empty selections are dropped")
	assert.NotContains(t, payload, "newsletter", "declined checkboxes are dropped")
	assert.Equal(t, true, payload["terms"])

	addr, ok := payload["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1 Ferry Plaza", addr["street"], "address components are trimmed")
	assert.Equal(t, "San Francisco", addr["city"])
	assert.NotContains(t, addr, "confirmed", "the confirmation flag never leaves the wizard")
}
