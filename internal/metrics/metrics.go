package metrics

import (
	"context"
	"time"

	"github.com/slok/herdops/internal/model"
)

// Recorder records the engine metrics.
type Recorder interface {
	// ObserveOperation records a service operation outcome.
	ObserveOperation(ctx context.Context, operation string, success bool, duration time.Duration)
	// IncPlanTransition counts a plan transition (advanced, completed...).
	IncPlanTransition(ctx context.Context, outcome string)
	// IncSideEffectFailure counts a failed registry side effect.
	IncSideEffectFailure(ctx context.Context, kind model.SideEffectKind)
	// IncSideEffectResolved counts a side effect failure resolved by reconciliation.
	IncSideEffectResolved(ctx context.Context, kind model.SideEffectKind)
	// SetOperationsDue sets the current number of overdue and due today operations.
	SetOperationsDue(ctx context.Context, overdue, today int)
	// SetSideEffectsPending sets the current number of unresolved side effect failures.
	SetSideEffectsPending(ctx context.Context, pending int)
}

// Noop is a recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObserveOperation(context.Context, string, bool, time.Duration) {}
func (noop) IncPlanTransition(context.Context, string) {}
func (noop) IncSideEffectFailure(context.Context, model.SideEffectKind) {}
func (noop) IncSideEffectResolved(context.Context, model.SideEffectKind) {}
func (noop) SetOperationsDue(context.Context, int, int) {}
func (noop) SetSideEffectsPending(context.Context, int) {}

// Observe is a helper to measure a service operation, use it with defer.
//
//	defer metrics.Observe(ctx, rec, "complete_operation", time.Now(), &err)
func Observe(ctx context.Context, rec Recorder, operation string, start time.Time, err *error) {
	rec.ObserveOperation(ctx, operation, err == nil || *err == nil, time.Since(start))
}
