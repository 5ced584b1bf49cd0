package lib_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/animal/fake"
	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/pkg/lib"
)

// newTestClient creates a client on the backend with a fixed clock for test isolation.
func newTestClient(t *testing.T, backend lib.Backend, mod func(*lib.Config)) (*lib.Client, *clock.Fixed) {
	t.Helper()

	clk := clock.NewFixedDate("2024-06-01")
	cfg := lib.Config{
		Backend: backend,
		DBPath:  filepath.Join(t.TempDir(), "test.db"),
		Clock:   clk,
	}
	if mod != nil {
		mod(&cfg)
	}

	client, err := lib.New(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, clk
}

func forEachBackend(t *testing.T, fn func(t *testing.T, backend lib.Backend)) {
	for _, b := range []lib.Backend{lib.BackendMemory, lib.BackendSQLite} {
		t.Run(string(b), func(t *testing.T) { fn(t, b) })
	}
}

func TestNewConfig(t *testing.T) {
	tests := map[string]struct {
		cfg    lib.Config
		expErr error
	}{
		"An unknown backend should fail.": {
			cfg:    lib.Config{Backend: "mongo"},
			expErr: lib.ErrNotValid,
		},

		"Postgres without DSN should fail.": {
			cfg:    lib.Config{Backend: lib.BackendPostgres},
			expErr: lib.ErrNotValid,
		},

		"Memory backend should not need any other setting.": {
			cfg: lib.Config{Backend: lib.BackendMemory},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client, err := lib.New(context.Background(), test.cfg)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, client.Close())
		})
	}
}

func createProtocol(t *testing.T, client *lib.Client) lib.Template {
	t.Helper()
	ctx := context.Background()

	tpl, err := client.CreateTemplate(ctx, lib.CreateTemplateRequest{Name: "AI protocol", IsActive: true})
	require.NoError(t, err)

	steps := []lib.CreateStepRequest{
		{Name: "Insemination", OperationType: lib.OperationTypeInsemination, SortOrder: 0},
		{Name: "Pregnancy test", OperationType: lib.OperationTypePregnancyTest, DaysAfterPrevious: 30, SortOrder: 1},
		{Name: "Dry off", OperationType: lib.OperationTypeGroupChange, DaysAfterPrevious: 200, Condition: lib.StepConditionPositive, ChangeStatus: "pregnant", ChangeGroupID: "dry", SortOrder: 2},
		{Name: "Resync", OperationType: lib.OperationTypeInsemination, DaysAfterPrevious: 10, Condition: lib.StepConditionNegative, ChangeStatus: "open", SortOrder: 3},
	}
	for _, s := range steps {
		s.TemplateID = tpl.ID
		_, err := client.CreateStep(ctx, s)
		require.NoError(t, err)
	}

	return *tpl
}

func TestClientPlanLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend lib.Backend) {
		assert := assert.New(t)
		require := require.New(t)
		ctx := context.Background()
		client, clk := newTestClient(t, backend, nil)

		require.NoError(client.CreateAnimal(ctx, lib.Animal{ID: "cow-1", Status: "open", GroupID: "heifers"}))
		tpl := createProtocol(t, client)

		a, err := client.AssignPlan(ctx, lib.AssignRequest{TemplateID: tpl.ID, AnimalID: "cow-1", StartDate: client.Today()})
		require.NoError(err)
		assert.Equal("2024-06-01", a.Operation.ScheduledDate.String())

		today, err := client.TodayOperations(ctx)
		require.NoError(err)
		require.Len(today, 1)
		assert.Equal(a.Operation.ID, today[0].ID)

		// Insemination, then pregnancy test 30 days later.
		res, err := client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: a.Operation.ID})
		require.NoError(err)
		assert.Equal(lib.OutcomeAdvanced, res.Outcome)
		assert.Equal("2024-07-01", res.Next.ScheduledDate.String())

		upcoming, err := client.UpcomingOperations(ctx, 30)
		require.NoError(err)
		require.Len(upcoming, 1)

		// Positive result skips the resync and dries off the cow.
		clk.AddDays(30)
		res, err = client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: res.Next.ID, Result: lib.ResultPositive})
		require.NoError(err)
		assert.Equal(lib.OutcomeAdvanced, res.Outcome)
		assert.Equal("Dry off", mustStepName(t, client, tpl.ID, res.Next.StepID))

		res, err = client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: res.Next.ID})
		require.NoError(err)
		assert.Equal(lib.OutcomePlanCompleted, res.Outcome)
		assert.Empty(res.Warnings)
		assert.True(res.Plan.IsCompleted)

		cow, err := client.GetAnimal(ctx, "cow-1")
		require.NoError(err)
		assert.Equal(&lib.Animal{ID: "cow-1", Status: "pregnant", GroupID: "dry"}, cow)

		ops, err := client.OperationsForAnimal(ctx, "cow-1")
		require.NoError(err)
		assert.Len(ops, 3)

		plans, err := client.ListPlans(ctx, lib.PlanFilter{ActiveOnly: true})
		require.NoError(err)
		assert.Empty(plans)

		_, err = client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: a.Operation.ID})
		assert.ErrorIs(err, lib.ErrConflict)
	})
}

func mustStepName(t *testing.T, client *lib.Client, templateID, stepID string) string {
	t.Helper()
	steps, err := client.ListSteps(context.Background(), templateID)
	require.NoError(t, err)
	for _, s := range steps {
		if s.ID == stepID {
			return s.Name
		}
	}
	t.Fatalf("step %s not found", stepID)
	return ""
}

func TestClientSideEffectReconciliation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	registry := fake.NewRegistry()
	registry.FailWith("status", errors.New("registry down"))
	client, _ := newTestClient(t, lib.BackendMemory, func(c *lib.Config) { c.Registry = registry })

	tpl, err := client.CreateTemplate(ctx, lib.CreateTemplateRequest{Name: "Status", IsActive: true})
	require.NoError(err)
	_, err = client.CreateStep(ctx, lib.CreateStepRequest{TemplateID: tpl.ID, Name: "Mark", OperationType: lib.OperationTypeStatusChange, ChangeStatus: "sold"})
	require.NoError(err)

	a, err := client.AssignPlan(ctx, lib.AssignRequest{TemplateID: tpl.ID, AnimalID: "cow-7", StartDate: client.Today()})
	require.NoError(err)

	res, err := client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: a.Operation.ID})
	require.NoError(err)
	assert.Equal(lib.OutcomePlanCompleted, res.Outcome)
	require.Len(res.Warnings, 1)

	pending, err := client.PendingSideEffects(ctx)
	require.NoError(err)
	assert.Len(pending, 1)

	registry.FailWith("status", nil)
	retry, err := client.RetrySideEffects(ctx)
	require.NoError(err)
	assert.Len(retry.Resolved, 1)
	assert.Empty(retry.Failed)

	cow, ok := registry.Animal("cow-7")
	require.True(ok)
	assert.Equal("sold", cow.Status)

	// The custom registry owns the animals.
	_, err = client.ListAnimals(ctx)
	assert.ErrorIs(err, lib.ErrNotValid)
}

func TestClientImportTemplateFile(t *testing.T) {
	tests := map[string]struct {
		content  string
		expSteps []string
		expErr   bool
	}{
		"A valid protocol file should be imported.": {
			content: `name: Ovsynch
steps:
  - name: GnRH
    type: INSEMINATION
  - name: Check
    type: PREGNANCY_TEST
    days_after_previous: 28
`,
			expSteps: []string{"GnRH", "Check"},
		},

		"A protocol without steps should fail.": {
			content: "name: Empty\n",
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()
			client, _ := newTestClient(t, lib.BackendMemory, nil)

			path := filepath.Join(t.TempDir(), "protocol.yaml")
			require.NoError(os.WriteFile(path, []byte(test.content), 0o600))

			tpl, steps, err := client.ImportTemplateFile(ctx, path)
			if test.expErr {
				assert.Error(err)
				tpls, err := client.ListTemplates(ctx, false)
				require.NoError(err)
				assert.Empty(tpls)
				return
			}
			require.NoError(err)
			assert.True(tpl.IsActive)

			gotNames := []string{}
			for _, s := range steps {
				gotNames = append(gotNames, s.Name)
			}
			assert.Equal(test.expSteps, gotNames)
		})
	}
}

func TestClientRefreshMetrics(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	client, clk := newTestClient(t, lib.BackendMemory, func(c *lib.Config) { c.MetricsRegisterer = reg })
	tpl := createProtocol(t, client)

	_, err := client.AssignPlan(ctx, lib.AssignRequest{TemplateID: tpl.ID, AnimalID: "cow-1", StartDate: lib.NewDate(2024, 5, 20)})
	require.NoError(err)
	_, err = client.AssignPlan(ctx, lib.AssignRequest{TemplateID: tpl.ID, AnimalID: "cow-2", StartDate: clk.Today()})
	require.NoError(err)

	require.NoError(client.RefreshMetrics(ctx))

	expMetrics := `
# HELP herdops_operation_due The number of pending operations due, by window.
# TYPE herdops_operation_due gauge
herdops_operation_due{window="overdue"} 1
herdops_operation_due{window="today"} 1
# HELP herdops_side_effect_pending The number of unresolved side effect failures.
# TYPE herdops_side_effect_pending gauge
herdops_side_effect_pending 0
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expMetrics), "herdops_operation_due", "herdops_side_effect_pending")
	require.NoError(err)
}
