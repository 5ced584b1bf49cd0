package prometheus_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herdprom "github.com/slok/herdops/internal/metrics/prometheus"
	"github.com/slok/herdops/internal/model"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec := herdprom.NewRecorder(reg)

	rec.IncPlanTransition(ctx, "advanced")
	rec.IncPlanTransition(ctx, "advanced")
	rec.IncPlanTransition(ctx, "plan_completed")
	rec.IncSideEffectFailure(ctx, model.SideEffectKindGroup)
	rec.IncSideEffectResolved(ctx, model.SideEffectKindGroup)
	rec.SetOperationsDue(ctx, 3, 5)
	rec.SetSideEffectsPending(ctx, 1)
	rec.ObserveOperation(ctx, "complete_operation", true, 10*time.Millisecond)

	expected := `
# HELP herdops_plan_transitions_total The number of plan transitions by outcome.
# TYPE herdops_plan_transitions_total counter
herdops_plan_transitions_total{outcome="advanced"} 2
herdops_plan_transitions_total{outcome="plan_completed"} 1
# HELP herdops_operation_due The number of pending operations due, by window.
# TYPE herdops_operation_due gauge
herdops_operation_due{window="overdue"} 3
herdops_operation_due{window="today"} 5
# HELP herdops_side_effect_failures_total The number of failed animal registry side effects.
# TYPE herdops_side_effect_failures_total counter
herdops_side_effect_failures_total{kind="group"} 1
# HELP herdops_side_effect_pending The number of unresolved side effect failures.
# TYPE herdops_side_effect_pending gauge
herdops_side_effect_pending 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"herdops_plan_transitions_total",
		"herdops_operation_due",
		"herdops_side_effect_failures_total",
		"herdops_side_effect_pending",
	)
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "herdops_service_operation_duration_seconds"))
}
