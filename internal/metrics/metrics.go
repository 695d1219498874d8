// Package metrics provides Prometheus instrumentation for wizard engines,
// exposed through domain.LifecycleHooks so the core stays metrics-agnostic.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stile/pkg/domain"
)

// Recorder holds the wizard metric collectors.
type Recorder struct {
	stepsEntered  *prometheus.CounterVec
	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	submissions   *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		stepsEntered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stile",
				Name:      "steps_entered_total",
				Help:      "Total number of step entries by step ID",
			},
			[]string{"step_id", "kind"},
		),
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stile",
				Name:      "checks_total",
				Help:      "Total number of remote checks by name and result",
			},
			[]string{"check", "result"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stile",
				Name:      "check_duration_seconds",
				Help:      "Duration of remote checks in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"check"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stile",
				Name:      "submissions_total",
				Help:      "Total number of terminal submissions by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(r.stepsEntered, r.checksTotal, r.checkDuration, r.submissions)
	return r
}

// Hooks returns lifecycle hooks feeding the collectors. Merge with other
// hooks in the host if it has its own.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			r.stepsEntered.WithLabelValues(e.StepID, string(e.Kind)).Inc()
		},
		OnCheck: func(ctx context.Context, e *domain.CheckEvent) {
			result := "valid"
			switch {
			case e.Err:
				result = "error"
			case !e.Valid:
				result = "rejected"
			}
			r.checksTotal.WithLabelValues(e.Check, result).Inc()
			r.checkDuration.WithLabelValues(e.Check).Observe(e.Duration.Seconds())
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			result := "success"
			if !e.Success {
				result = "failure"
			}
			r.submissions.WithLabelValues(result).Inc()
		},
	}
}
