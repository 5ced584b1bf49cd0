package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/herdops/internal/metrics"
	"github.com/slok/herdops/internal/model"
)

const namespace = "herdops"

// Recorder is a Prometheus metrics recorder.
type Recorder struct {
	opDuration       *prometheus.HistogramVec
	planTransitions  *prometheus.CounterVec
	sideEffectFails  *prometheus.CounterVec
	sideEffectFixed  *prometheus.CounterVec
	opsDue           *prometheus.GaugeVec
	sideEffectsQueue prometheus.Gauge
}

var _ metrics.Recorder = &Recorder{}

// NewRecorder returns a new recorder registered on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "The duration of the engine service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "success"}),

		planTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "transitions_total",
			Help:      "The number of plan transitions by outcome.",
		}, []string{"outcome"}),

		sideEffectFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "side_effect",
			Name:      "failures_total",
			Help:      "The number of failed animal registry side effects.",
		}, []string{"kind"}),

		sideEffectFixed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "side_effect",
			Name:      "resolved_total",
			Help:      "The number of failed side effects resolved by reconciliation.",
		}, []string{"kind"}),

		opsDue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "operation",
			Name:      "due",
			Help:      "The number of pending operations due, by window.",
		}, []string{"window"}),

		sideEffectsQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "side_effect",
			Name:      "pending",
			Help:      "The number of unresolved side effect failures.",
		}),
	}

	reg.MustRegister(
		r.opDuration,
		r.planTransitions,
		r.sideEffectFails,
		r.sideEffectFixed,
		r.opsDue,
		r.sideEffectsQueue,
	)

	return r
}

func (r *Recorder) ObserveOperation(_ context.Context, operation string, success bool, duration time.Duration) {
	s := "false"
	if success {
		s = "true"
	}
	r.opDuration.WithLabelValues(operation, s).Observe(duration.Seconds())
}

func (r *Recorder) IncPlanTransition(_ context.Context, outcome string) {
	r.planTransitions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) IncSideEffectFailure(_ context.Context, kind model.SideEffectKind) {
	r.sideEffectFails.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) IncSideEffectResolved(_ context.Context, kind model.SideEffectKind) {
	r.sideEffectFixed.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) SetOperationsDue(_ context.Context, overdue, today int) {
	r.opsDue.WithLabelValues("overdue").Set(float64(overdue))
	r.opsDue.WithLabelValues("today").Set(float64(today))
}

func (r *Recorder) SetSideEffectsPending(_ context.Context, pending int) {
	r.sideEffectsQueue.Set(float64(pending))
}
