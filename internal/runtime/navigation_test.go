package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/internal/runtime"
	"github.com/aretw0/stile/pkg/domain"
)

func TestEngine_TerminalStepSubmits(t *testing.T) {
	eng, _, submitter := newTestEngine(t)
	state := fillCustomer(t, eng)

	final, outcome, err := eng.Next(context.Background(), state, true)
	require.NoError(t, err)
	require.True(t, outcome.Valid)

	assert.Equal(t, domain.StatusSubmitted, final.Status)
	assert.True(t, final.Submitted())
	require.NotNil(t, final.Record)
	assert.Equal(t, "rec-123", final.Record.ID)
	assert.Equal(t, 1, submitter.callCount(), "exactly one create call")

	payload := submitter.lastPayload()
	assert.Equal(t, "Ada Lovelace", payload["fullName"])
	assert.Equal(t, "ada@example.com", payload["email"])
	assert.Equal(t, true, payload["terms"])
	assert.NotContains(t, payload, "inviteCode", "hidden fields are omitted")
}

func TestEngine_SubmittedSessionRejectsEverything(t *testing.T) {
	eng, _, submitter := newTestEngine(t)
	state := fillCustomer(t, eng)

	final, _, err := eng.Next(context.Background(), state, true)
	require.NoError(t, err)
	require.True(t, final.Submitted())

	_, _, err = eng.Next(context.Background(), final, true)
	assert.ErrorIs(t, err, domain.ErrSubmitted)

	_, err = eng.Back(context.Background(), final)
	assert.ErrorIs(t, err, domain.ErrSubmitted)

	_, _, err = eng.JumpTo(context.Background(), final, "email")
	assert.ErrorIs(t, err, domain.ErrSubmitted)

	_, err = eng.SetValue(final, "fullName", "Mallory")
	assert.ErrorIs(t, err, domain.ErrSubmitted)

	assert.Equal(t, 1, submitter.callCount(), "no second create call ever fires")
}

func TestEngine_SubmissionFailureKeepsProgress(t *testing.T) {
	eng, _, submitter := newTestEngine(t)
	submitter.err = errors.New("503 service unavailable")

	state := fillCustomer(t, eng)
	next, outcome, err := eng.Next(context.Background(), state, true)
	require.NoError(t, err, "a failed create is an outcome, not an engine error")

	assert.False(t, outcome.Valid)
	assert.Equal(t, domain.CodeSubmit, outcome.Code)
	assert.Empty(t, outcome.Field, "submission failures are page-level")
	assert.Equal(t, domain.StatusActive, next.Status)
	assert.Equal(t, "terms", next.StepID, "the session stays on the terminal step")
	assert.Equal(t, "503 service unavailable", next.SubmitError)

	// Retry after the backend recovers.
	submitter.err = nil
	final, outcome, err := eng.Next(context.Background(), next, true)
	require.NoError(t, err)
	assert.True(t, outcome.Valid)
	assert.True(t, final.Submitted())
	assert.Empty(t, final.SubmitError)
	assert.Equal(t, 2, submitter.callCount())
}

func TestEngine_ConcurrentNextDuringCheckIsRejected(t *testing.T) {
	eng, checker, _ := newTestEngine(t)
	checker.gate = make(chan struct{})

	state := domain.NewState("s1", eng.Catalog())
	state = advance(t, eng, state, "customer")
	state = advance(t, eng, state, "Ada")
	require.Equal(t, "email", state.StepID)

	done := make(chan *domain.State, 1)
	go func() {
		next, _, err := eng.Next(context.Background(), state, "ada@example.com")
		if err != nil {
			done <- nil
			return
		}
		done <- next
	}()

	// Wait for the goroutine to enter the blocked check.
	require.Eventually(t, func() bool { return checker.callCount() == 1 },
		time.Second, time.Millisecond)

	_, _, err := eng.Next(context.Background(), state, "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrCheckPending, "navigation is rejected, not queued")

	_, err = eng.Back(context.Background(), state)
	assert.ErrorIs(t, err, domain.ErrCheckPending)

	close(checker.gate)
	next := <-done
	require.NotNil(t, next)
	assert.Equal(t, "phone", next.StepID)
	assert.Equal(t, 1, checker.callCount(), "the duplicate attempt never reached the checker")
}

func TestEngine_ConcurrentNextDuringSubmitIsRejected(t *testing.T) {
	eng, _, submitter := newTestEngine(t)
	submitter.gate = make(chan struct{})

	state := fillCustomer(t, eng)

	done := make(chan *domain.State, 1)
	go func() {
		final, _, err := eng.Next(context.Background(), state, true)
		if err != nil {
			done <- nil
			return
		}
		done <- final
	}()

	require.Eventually(t, func() bool { return submitter.callCount() == 1 },
		time.Second, time.Millisecond)

	_, _, err := eng.Next(context.Background(), state, true)
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)

	close(submitter.gate)
	final := <-done
	require.NotNil(t, final)
	assert.True(t, final.Submitted())
	assert.Equal(t, 1, submitter.callCount(), "double-click protection: one create call")
}

func TestEngine_Back(t *testing.T) {
	ctx := context.Background()

	t.Run("retreats one visible step", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := domain.NewState("s1", eng.Catalog())
		state = advance(t, eng, state, "customer")
		require.Equal(t, "fullName", state.StepID)

		prev, err := eng.Back(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, "userType", prev.StepID)
		assert.Equal(t, "customer", prev.Values.String("userType"), "answers survive going back")
	})

	t.Run("skips hidden steps on the way back", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := domain.NewState("s1", eng.Catalog())
		state = advance(t, eng, state, "customer")

		prev, err := eng.Back(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, "userType", prev.StepID, "inviteCode is hidden for customers")
	})

	t.Run("no-op at the first step by default", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := domain.NewState("s1", eng.Catalog())

		prev, err := eng.Back(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, "userType", prev.StepID)
	})

	t.Run("delegates the exit when configured", func(t *testing.T) {
		eng, _, _ := newTestEngine(t, runtime.WithExitOnBack())
		state := domain.NewState("s1", eng.Catalog())

		_, err := eng.Back(ctx, state)
		assert.ErrorIs(t, err, domain.ErrExitWizard)
	})
}

func TestEngine_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("revisits an answered step with fresh validation", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := fillCustomer(t, eng)

		next, outcome, err := eng.JumpTo(ctx, state, "phone")
		require.NoError(t, err)
		assert.Equal(t, "phone", next.StepID)
		assert.True(t, outcome.Valid, "the held value is re-validated, not trusted")
	})

	t.Run("reports a stale value", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := fillCustomer(t, eng)

		// Corrupt the held phone through the mutation entry point.
		state, err := eng.SetValue(state, "phone", "555")
		require.NoError(t, err)

		_, outcome, err := eng.JumpTo(ctx, state, "phone")
		require.NoError(t, err)
		assert.False(t, outcome.Valid)
		assert.Equal(t, domain.CodeFormat, outcome.Code)
	})

	t.Run("rejects hidden steps", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := fillCustomer(t, eng)

		_, _, err := eng.JumpTo(ctx, state, "inviteCode")
		assert.ErrorIs(t, err, domain.ErrStepNotFound)
	})

	t.Run("rejects unknown steps", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		state := fillCustomer(t, eng)

		_, _, err := eng.JumpTo(ctx, state, "nope")
		assert.ErrorIs(t, err, domain.ErrStepNotFound)
	})
}

func TestEngine_ConditionalFieldRoundTrip(t *testing.T) {
	eng, _, submitter := newTestEngine(t)
	state := domain.NewState("s1", eng.Catalog())
	state = advance(t, eng, state, "customer")
	state = advance(t, eng, state, "Ada Lovelace")
	state = advance(t, eng, state, "ada@example.com")
	state = advance(t, eng, state, "4155550123")
	state = advance(t, eng, state, "Abc12345")
	state = advance(t, eng, state, "Abc12345")

	// Pick Other, answer the detail, then change the referral back.
	state = advance(t, eng, state, "Other")
	require.Equal(t, "referralOther", state.StepID)
	state = advance(t, eng, state, "A podcast")
	require.Equal(t, "terms", state.StepID)

	state, _, err := eng.JumpTo(context.Background(), state, "referral")
	require.NoError(t, err)
	state = advance(t, eng, state, "Friend")

	// referralOther is hidden again; the session clamps past it to terms.
	require.Equal(t, "terms", state.StepID)

	final, outcome, err := eng.Next(context.Background(), state, true)
	require.NoError(t, err)
	require.True(t, outcome.Valid)
	require.True(t, final.Submitted())

	payload := submitter.lastPayload()
	assert.Equal(t, "Friend", payload["referral"])
	assert.NotContains(t, payload, "referralOther",
		"answers to steps hidden by a later edit never reach the payload")
	assert.Equal(t, "A podcast", final.Values.String("referralOther"),
		"the value itself is retained in case the user flips back")
}
