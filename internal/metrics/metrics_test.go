package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/stile/pkg/domain"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	hooks := rec.Hooks()
	ctx := context.Background()

	hooks.OnStepEnter(ctx, &domain.StepEvent{StepID: "email", Kind: domain.KindEmail})
	hooks.OnStepEnter(ctx, &domain.StepEvent{StepID: "email", Kind: domain.KindEmail})

	hooks.OnCheck(ctx, &domain.CheckEvent{Check: "email", Valid: true, Duration: 30 * time.Millisecond})
	hooks.OnCheck(ctx, &domain.CheckEvent{Check: "email", Valid: false, Duration: 25 * time.Millisecond})
	hooks.OnCheck(ctx, &domain.CheckEvent{Check: "inviteCode", Err: true})

	hooks.OnSubmit(ctx, &domain.SubmitEvent{Success: true})
	hooks.OnSubmit(ctx, &domain.SubmitEvent{Success: false})

	assert.Equal(t, float64(2),
		testutil.ToFloat64(rec.stepsEntered.WithLabelValues("email", "email")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(rec.checksTotal.WithLabelValues("email", "valid")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(rec.checksTotal.WithLabelValues("email", "rejected")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(rec.checksTotal.WithLabelValues("inviteCode", "error")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(rec.submissions.WithLabelValues("success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(rec.submissions.WithLabelValues("failure")))
}
