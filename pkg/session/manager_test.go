package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/session"
)

func signupCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog(
		domain.Step{ID: "fullName", Kind: domain.KindText, Required: true},
		domain.Step{ID: "email", Kind: domain.KindEmail, Required: true},
	)
	require.NoError(t, err)
	return catalog
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.State
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.State)
	}
	s.data[sessionID] = state
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.data[sessionID]; ok {
		return state, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_Locking(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	catalog := signupCatalog(t)
	ctx := context.Background()
	id := "race-test"

	_ = manager.Save(ctx, id, domain.NewState(id, catalog))

	var wg sync.WaitGroup
	concurrentWrites := 10

	// Read-modify-write without locking would lose updates; the manager
	// must serialize these.
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Save(ctx, id, domain.NewState(id, catalog))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	catalog := signupCatalog(t)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := manager.LoadOrStart(ctx, id, catalog)
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fullName", state.StepID)

	t.Run("resume keeps progress", func(t *testing.T) {
		state.StepID = "email"
		state.Values["fullName"] = "Ada"
		require.NoError(t, manager.Save(ctx, id, state))

		resumed, err := manager.LoadOrStart(ctx, id, catalog)
		require.NoError(t, err)
		assert.Equal(t, "email", resumed.StepID)
		assert.Equal(t, "Ada", resumed.Values.String("fullName"))
	})
}
