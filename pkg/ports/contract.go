package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stile/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog(
		domain.Step{ID: "firstName", Kind: domain.KindText, Required: true},
		domain.Step{ID: "email", Kind: domain.KindEmail, Required: true},
	)
	require.NoError(t, err)
	return catalog
}

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	catalog := contractCatalog(t)
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, catalog)
		state.Values["firstName"] = "Ada"
		state.Values["trades"] = []string{"plumbing", "electrical"}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.StepID, loaded.StepID)
		assert.Equal(t, "Ada", loaded.Values.String("firstName"))
		// JSON persistence decodes slices as []any; the typed accessor must
		// tolerate both representations.
		assert.Equal(t, []string{"plumbing", "electrical"}, loaded.Values.Strings("trades"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, catalog))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, catalog))
		_ = store.Save(ctx, id2, domain.NewState(id2, catalog))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunCatalogSourceContract verifies that a CatalogSource implementation
// serves the given flow with the expected step IDs in order.
func RunCatalogSourceContract(t *testing.T, source CatalogSource, flow string, wantSteps []string) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		catalog, err := source.Load(ctx, flow)
		require.NoError(t, err, "Load should not return error")

		steps := catalog.Steps()
		require.Len(t, steps, len(wantSteps))
		for i, s := range steps {
			assert.Equal(t, wantSteps[i], s.ID, "step order must be stable")
		}
	})

	t.Run("Load Unknown Flow", func(t *testing.T) {
		_, err := source.Load(ctx, "no-such-flow-"+flow)
		assert.Error(t, err)
	})

	t.Run("Flows", func(t *testing.T) {
		flows, err := source.Flows(ctx)
		require.NoError(t, err)
		assert.Contains(t, flows, flow)
	})
}
