package advance_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/animal/animalmock"
	"github.com/slok/herdops/internal/animal/fake"
	"github.com/slok/herdops/internal/app/advance"
	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
	"github.com/slok/herdops/internal/storage/memory"
	"github.com/slok/herdops/internal/storage/sqlite"
)

type backend struct {
	name    string
	newRepo func(t *testing.T) storage.Repository
}

var backends = []backend{
	{
		name: "memory",
		newRepo: func(t *testing.T) storage.Repository {
			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(t, err)
			return repo
		},
	},
	{
		name: "sqlite",
		newRepo: func(t *testing.T) storage.Repository {
			repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
				DBPath: filepath.Join(t.TempDir(), "herdops.db"),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		},
	},
}

// stepDef is a compact step declaration for scenarios.
type stepDef struct {
	name   string
	cond   model.StepCondition
	days   int
	status string
	group  string
}

type env struct {
	repo     storage.Repository
	svc      *advance.Service
	registry *fake.Registry
	clock    *clock.Fixed
	steps    map[string]model.OperationStep
	tplID    string
}

func newEnv(t *testing.T, repo storage.Repository, steps ...stepDef) *env {
	t.Helper()
	ctx := context.Background()

	e := &env{
		repo:     repo,
		registry: fake.NewRegistry(),
		clock:    clock.NewFixedDate("2024-06-01"),
		steps:    map[string]model.OperationStep{},
	}

	svc, err := advance.NewService(advance.ServiceConfig{
		Repository:        repo,
		Registry:          e.registry,
		Clock:             e.clock,
		SideEffectTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	e.svc = svc

	tpl := model.OperationTemplate{ID: model.NewID(), Name: "protocol", IsActive: true, CreatedAt: time.Unix(0, 0).UTC(), UpdatedAt: time.Unix(0, 0).UTC()}
	require.NoError(t, repo.CreateTemplate(ctx, tpl))
	e.tplID = tpl.ID

	for i, sd := range steps {
		cond := sd.cond
		if cond == "" {
			cond = model.StepConditionAlways
		}
		st := model.OperationStep{
			ID:                model.NewID(),
			TemplateID:        tpl.ID,
			OperationType:     model.OperationTypePregnancyTest,
			Name:              sd.name,
			DaysAfterPrevious: sd.days,
			Condition:         cond,
			ChangeStatus:      sd.status,
			ChangeGroupID:     sd.group,
			SortOrder:         (i + 1) * 10,
		}
		require.NoError(t, repo.CreateStep(ctx, st))
		e.steps[sd.name] = st
	}

	return e
}

// assign creates a plan for the animal and seeds it.
func (e *env) assign(t *testing.T, animalID string) (model.AssignedPlan, *model.ScheduledOperation) {
	t.Helper()
	plan := model.AssignedPlan{ID: model.NewID(), TemplateID: e.tplID, AnimalID: animalID, StartDate: e.clock.Today()}
	require.NoError(t, e.repo.CreatePlan(context.Background(), plan))
	op, err := e.svc.Seed(context.Background(), plan)
	require.NoError(t, err)
	return plan, op
}

func (e *env) stepName(id string) string {
	for name, st := range e.steps {
		if st.ID == id {
			return name
		}
	}
	return ""
}

func (e *env) pending(t *testing.T, planID string) []model.ScheduledOperation {
	t.Helper()
	incomplete := false
	ops, err := e.repo.ListOperations(context.Background(), model.OperationFilter{PlanID: planID, Completed: &incomplete})
	require.NoError(t, err)
	return ops
}

func forEachBackend(t *testing.T, f func(t *testing.T, newRepo func(t *testing.T) storage.Repository)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) { f(t, b.newRepo) })
	}
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config advance.ServiceConfig
		expErr bool
	}{
		"valid config": {
			config: advance.ServiceConfig{Repository: &memory.Repository{}, Registry: fake.NewRegistry()},
		},
		"missing repository": {
			config: advance.ServiceConfig{Registry: fake.NewRegistry()},
			expErr: true,
		},
		"missing registry": {
			config: advance.ServiceConfig{Repository: &memory.Repository{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := advance.NewService(test.config)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConditionalBranching(t *testing.T) {
	steps := []stepDef{
		{name: "A"},
		{name: "B", cond: model.StepConditionPositive},
		{name: "C", cond: model.StepConditionNegative},
		{name: "D"},
	}

	tests := map[string]struct {
		results  []model.Result
		expNexts []string
	}{
		"A positive goes through B then D.": {
			results:  []model.Result{model.ResultPositive, model.ResultNone, model.ResultNegative},
			expNexts: []string{"B", "D", ""},
		},
		"A negative goes through C then D.": {
			results:  []model.Result{model.ResultNegative, model.ResultPositive, model.ResultPositive},
			expNexts: []string{"C", "D", ""},
		},
		"A without result skips both branches.": {
			results:  []model.Result{model.ResultNone, model.ResultNone},
			expNexts: []string{"D", ""},
		},
	}

	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		for name, test := range tests {
			t.Run(name, func(t *testing.T) {
				assert := assert.New(t)
				require := require.New(t)
				ctx := context.Background()

				e := newEnv(t, newRepo(t), steps...)
				plan, op := e.assign(t, "cow-1")
				assert.Equal("A", e.stepName(op.StepID))

				lastOrder := e.steps["A"].SortOrder
				for i, r := range test.results {
					res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID, Result: r})
					require.NoError(err)

					exp := test.expNexts[i]
					if exp == "" {
						assert.Equal(advance.OutcomePlanCompleted, res.Outcome)
						assert.Nil(res.Next)
						assert.True(res.Plan.IsCompleted)
						assert.Equal("2024-06-01", res.Plan.CompletedDate.String())
						break
					}

					require.Equal(advance.OutcomeAdvanced, res.Outcome)
					require.NotNil(res.Next)
					assert.Equal(exp, e.stepName(res.Next.StepID))

					// Materialized steps follow a strictly increasing sort order.
					order := e.steps[exp].SortOrder
					assert.Greater(order, lastOrder)
					lastOrder = order

					assert.Len(e.pending(t, plan.ID), 1)
					op = res.Next
				}

				assert.Empty(e.pending(t, plan.ID))
				stored, err := e.repo.GetPlan(ctx, plan.ID)
				require.NoError(err)
				assert.True(stored.IsCompleted)
			})
		}
	})
}

func TestTerminationOnRejectedBranch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		ctx := context.Background()
		e := newEnv(t, newRepo(t), stepDef{name: "A"}, stepDef{name: "B", cond: model.StepConditionPositive})
		plan, op := e.assign(t, "cow-1")

		res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID, Result: model.ResultNegative})
		require.NoError(t, err)
		assert.Equal(t, advance.OutcomePlanCompleted, res.Outcome)
		assert.Nil(t, res.Next)

		ops, err := e.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID})
		require.NoError(t, err)
		assert.Len(t, ops, 1)
	})
}

func TestDateComputation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		ctx := context.Background()
		e := newEnv(t, newRepo(t), stepDef{name: "A", days: 5}, stepDef{name: "B", days: 30})

		// The first operation lands on the plan start date regardless of its offset.
		_, op := e.assign(t, "cow-1")
		assert.Equal(t, "2024-06-01", op.ScheduledDate.String())

		res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
		require.NoError(t, err)
		assert.Equal(t, "2024-07-01", res.Next.ScheduledDate.String())
		assert.Equal(t, "2024-06-01", res.Operation.CompletedDate.String())

		stored, err := e.repo.GetOperation(ctx, res.Next.ID)
		require.NoError(t, err)
		assert.Equal(t, "2024-07-01", stored.ScheduledDate.String())
		assert.Equal(t, model.OperationTypePregnancyTest, stored.OperationType)
		assert.Equal(t, "cow-1", stored.AnimalID)
	})
}

func TestDateAnchorIsCompletionDay(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A"}, stepDef{name: "B", days: 30})
	_, op := e.assign(t, "cow-1")

	e.clock.AddDays(10)
	res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-11", res.Next.ScheduledDate.String())
}

func TestSideEffects(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		ctx := context.Background()
		e := newEnv(t, newRepo(t), stepDef{name: "A", status: "Стел"}, stepDef{name: "B", group: "dry", status: "pregnant"})
		_, op := e.assign(t, "cow-1")

		res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assert.Equal(t, []fake.Change{{AnimalID: "cow-1", Kind: model.SideEffectKindStatus, Value: "Стел"}}, e.registry.Changes())

		_, err = e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: res.Next.ID})
		require.NoError(t, err)
		a, ok := e.registry.Animal("cow-1")
		require.True(t, ok)
		assert.Equal(t, model.Animal{ID: "cow-1", Status: "pregnant", GroupID: "dry"}, a)
	})
}

func TestSideEffectFailuresAreWarnings(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		ctx := context.Background()
		e := newEnv(t, newRepo(t), stepDef{name: "A", status: "inseminated", group: "g2"}, stepDef{name: "B"})
		plan, op := e.assign(t, "cow-1")
		e.registry.FailWith(model.SideEffectKindGroup, errors.New("registry down"))

		res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
		require.NoError(t, err)
		assert.Equal(t, advance.OutcomeAdvanced, res.Outcome)
		require.Len(t, res.Warnings, 1)
		w := res.Warnings[0]
		assert.Equal(t, model.SideEffectKindGroup, w.Kind)
		assert.Equal(t, "g2", w.Value)
		assert.Equal(t, "registry down", w.Error)
		assert.Equal(t, plan.ID, w.PlanID)
		assert.Equal(t, op.ID, w.OperationID)

		failures, err := e.repo.ListSideEffectFailures(ctx, true)
		require.NoError(t, err)
		require.Len(t, failures, 1)
		assert.Equal(t, w.ID, failures[0].ID)

		// The status change still landed.
		a, _ := e.registry.Animal("cow-1")
		assert.Equal(t, "inseminated", a.Status)
	})
}

func TestSideEffectTimeout(t *testing.T) {
	tests := map[string]struct {
		registry func(t *testing.T, e *env) advance.ServiceConfig
	}{
		"A slow registry honouring the context should time out.": {
			registry: func(t *testing.T, e *env) advance.ServiceConfig {
				e.registry.SetLatency(time.Second)
				return advance.ServiceConfig{Registry: e.registry}
			},
		},
		"A slow registry ignoring the context should time out.": {
			registry: func(t *testing.T, e *env) advance.ServiceConfig {
				reg := animalmock.NewMockRegistry(t)
				reg.On("SetStatus", mock.Anything, "cow-1", "open").Once().Run(func(mock.Arguments) {
					time.Sleep(2 * time.Second)
				}).Return(nil)
				return advance.ServiceConfig{Registry: reg}
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A", status: "open"}, stepDef{name: "B"})
			_, op := e.assign(t, "cow-1")

			cfg := test.registry(t, e)
			cfg.Repository = e.repo
			cfg.Clock = e.clock
			cfg.SideEffectTimeout = 50 * time.Millisecond
			svc, err := advance.NewService(cfg)
			require.NoError(t, err)

			start := time.Now()
			res, err := svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
			require.NoError(t, err)
			assert.Less(t, time.Since(start), 500*time.Millisecond)
			assert.Equal(t, advance.OutcomeAdvanced, res.Outcome)
			require.Len(t, res.Warnings, 1)
			assert.Contains(t, res.Warnings[0].Error, context.DeadlineExceeded.Error())

			failures, err := e.repo.ListSideEffectFailures(ctx, true)
			require.NoError(t, err)
			assert.Len(t, failures, 1)
		})
	}
}

func TestSideEffectCallsWithMock(t *testing.T) {
	ctx := context.Background()
	repo := backends[0].newRepo(t)
	e := newEnv(t, repo, stepDef{name: "A", status: "Стел"}, stepDef{name: "B"})
	_, op := e.assign(t, "cow-1")

	reg := animalmock.NewMockRegistry(t)
	reg.On("SetStatus", mock.Anything, "cow-1", "Стел").Once().Return(nil)
	svc, err := advance.NewService(advance.ServiceConfig{Repository: repo, Registry: reg, Clock: e.clock})
	require.NoError(t, err)

	_, err = svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
	require.NoError(t, err)
	reg.AssertNotCalled(t, "SetGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteOperationErrors(t *testing.T) {
	tests := map[string]struct {
		prepare func(t *testing.T, e *env, op *model.ScheduledOperation) advance.CompleteRequest
		expErr  error
		expMsg  string
	}{
		"A missing operation should fail with not found.": {
			prepare: func(t *testing.T, e *env, op *model.ScheduledOperation) advance.CompleteRequest {
				return advance.CompleteRequest{OperationID: model.NewID()}
			},
			expErr: model.ErrNotFound,
			expMsg: "operation not found",
		},
		"An empty operation id should fail validation.": {
			prepare: func(t *testing.T, e *env, op *model.ScheduledOperation) advance.CompleteRequest {
				return advance.CompleteRequest{}
			},
			expErr: model.ErrNotValid,
		},
		"An unknown result should fail validation.": {
			prepare: func(t *testing.T, e *env, op *model.ScheduledOperation) advance.CompleteRequest {
				return advance.CompleteRequest{OperationID: op.ID, Result: "MAYBE"}
			},
			expErr: model.ErrNotValid,
		},
		"A deleted step should fail with step not found.": {
			prepare: func(t *testing.T, e *env, op *model.ScheduledOperation) advance.CompleteRequest {
				require.NoError(t, e.repo.DeleteStep(context.Background(), op.StepID))
				return advance.CompleteRequest{OperationID: op.ID}
			},
			expErr: model.ErrNotFound,
			expMsg: "step not found",
		},
		"An already completed operation should conflict.": {
			prepare: func(t *testing.T, e *env, op *model.ScheduledOperation) advance.CompleteRequest {
				_, err := e.svc.CompleteOperation(context.Background(), advance.CompleteRequest{OperationID: op.ID})
				require.NoError(t, err)
				return advance.CompleteRequest{OperationID: op.ID}
			},
			expErr: model.ErrConflict,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A"}, stepDef{name: "B"}, stepDef{name: "C"})
			_, op := e.assign(t, "cow-1")

			req := test.prepare(t, e, op)
			_, err := e.svc.CompleteOperation(context.Background(), req)
			assert.ErrorIs(t, err, test.expErr)
			if test.expMsg != "" {
				assert.Contains(t, err.Error(), test.expMsg)
			}
		})
	}
}

func TestDoubleCompletionNeverReAdvances(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A"}, stepDef{name: "B"}, stepDef{name: "C"})
	plan, op := e.assign(t, "cow-1")

	_, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
	require.NoError(t, err)
	_, err = e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
	assert.ErrorIs(t, err, model.ErrConflict)

	ops, err := e.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID})
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestConcurrentCompletionsKeepSingleOutstanding(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		ctx := context.Background()
		e := newEnv(t, newRepo(t), stepDef{name: "A"}, stepDef{name: "B"}, stepDef{name: "C"})
		plan, op := e.assign(t, "cow-1")

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID, Result: model.ResultPositive})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, model.ErrConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, 9, conflicts)
		assert.Len(t, e.pending(t, plan.ID), 1)

		ops, err := e.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID})
		require.NoError(t, err)
		assert.Len(t, ops, 2)
	})
}

func TestConcurrentCompletionsAcrossEngines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "herdops.db")

	// Every engine has its own connection pool and plan locks, like separate processes.
	newRepo := func(t *testing.T) storage.Repository {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: path})
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	}
	e := newEnv(t, newRepo(t), stepDef{name: "A", status: "inseminated"}, stepDef{name: "B"}, stepDef{name: "C"})
	plan, op := e.assign(t, "cow-1")

	const engines = 4
	svcs := make([]*advance.Service, 0, engines)
	for i := 0; i < engines; i++ {
		svc, err := advance.NewService(advance.ServiceConfig{
			Repository: newRepo(t),
			Registry:   e.registry,
			Clock:      e.clock,
		})
		require.NoError(t, err)
		svcs = append(svcs, svc)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, svc := range svcs {
		wg.Add(1)
		go func(svc *advance.Service) {
			defer wg.Done()
			_, err := svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID, Result: model.ResultPositive})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %s", err)
			}
		}(svc)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, engines-1, conflicts)
	assert.Len(t, e.pending(t, plan.ID), 1)
	assert.Len(t, e.registry.Changes(), 1, "losing completions must not apply side effects")

	stored, err := e.repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStep)
}

func TestScheduleDateOutOfRange(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
		ctx := context.Background()
		e := newEnv(t, newRepo(t), stepDef{name: "A"}, stepDef{name: "B", days: model.MaxDaysAfterPrevious})
		e.clock.Set(time.Date(9995, time.January, 1, 12, 0, 0, 0, time.UTC))
		plan, op := e.assign(t, "cow-1")

		_, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotValid)

		ops, err := e.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID})
		require.NoError(t, err)
		assert.Len(t, ops, 1)

		stored, err := e.repo.GetPlan(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.CurrentStep)
		assert.False(t, stored.IsCompleted)
	})
}

func TestManuallyCompletedPlanDoesNotAdvance(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A"}, stepDef{name: "B"})
	plan, op := e.assign(t, "cow-1")

	done := model.MustParseDate("2024-05-31")
	plan.IsCompleted = true
	plan.CompletedDate = &done
	require.NoError(t, e.repo.UpdatePlan(ctx, plan))

	res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: op.ID, Result: model.ResultPositive})
	require.NoError(t, err)
	assert.Equal(t, advance.OutcomePlanCompleted, res.Outcome)
	assert.Nil(t, res.Next)
	assert.Equal(t, model.ResultPositive, res.Operation.Result)
	assert.Equal(t, "2024-05-31", res.Plan.CompletedDate.String())
	assert.Empty(t, e.pending(t, plan.ID))
}

func TestAdvance(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A"}, stepDef{name: "B", cond: model.StepConditionNegative}, stepDef{name: "C"})
	plan, op := e.assign(t, "cow-1")

	// Outstanding operation.
	_, err := e.svc.Advance(ctx, advance.AdvanceRequest{OperationID: op.ID})
	assert.ErrorIs(t, err, model.ErrConflict)

	// Completion recorded without advancing, then re-driven.
	today := e.clock.Today()
	op.IsCompleted = true
	op.CompletedDate = &today
	op.Result = model.ResultNegative
	require.NoError(t, e.repo.UpdateOperation(ctx, *op))

	res, err := e.svc.Advance(ctx, advance.AdvanceRequest{OperationID: op.ID, Result: model.ResultNegative})
	require.NoError(t, err)
	assert.Equal(t, advance.OutcomeAdvanced, res.Outcome)
	assert.Equal(t, "B", e.stepName(res.Next.StepID))

	stored, err := e.repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStep)

	_, err = e.svc.Advance(ctx, advance.AdvanceRequest{OperationID: op.ID, Result: model.ResultNegative})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestAdvanceRejectsOperationsBehindThePlan(t *testing.T) {
	tests := map[string]struct {
		prepare        func(t *testing.T, e *env, opA model.ScheduledOperation)
		latestAdvances bool
	}{
		"An operation of an earlier step should conflict.": {
			prepare:        func(t *testing.T, e *env, opA model.ScheduledOperation) {},
			latestAdvances: true,
		},
		"An operation of a removed step should conflict when a later operation exists.": {
			prepare: func(t *testing.T, e *env, opA model.ScheduledOperation) {
				require.NoError(t, e.repo.DeleteStep(context.Background(), opA.StepID))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
				ctx := context.Background()
				e := newEnv(t, newRepo(t), stepDef{name: "A"}, stepDef{name: "B"}, stepDef{name: "C"})
				plan, opA := e.assign(t, "cow-1")

				res, err := e.svc.CompleteOperation(ctx, advance.CompleteRequest{OperationID: opA.ID})
				require.NoError(t, err)
				opB := *res.Next

				// B completion is recorded without advancing, so nothing is outstanding.
				today := e.clock.Today()
				opB.IsCompleted = true
				opB.CompletedDate = &today
				require.NoError(t, e.repo.CompleteOperation(ctx, opB))

				test.prepare(t, e, *opA)

				_, err = e.svc.Advance(ctx, advance.AdvanceRequest{OperationID: opA.ID})
				assert.ErrorIs(t, err, model.ErrConflict)

				stored, err := e.repo.GetPlan(ctx, plan.ID)
				require.NoError(t, err)
				assert.Equal(t, 1, stored.CurrentStep)
				assert.False(t, stored.IsCompleted)
				assert.Empty(t, e.pending(t, plan.ID))

				if !test.latestAdvances {
					return
				}

				// The latest operation still drives the plan.
				res, err = e.svc.Advance(ctx, advance.AdvanceRequest{OperationID: opB.ID})
				require.NoError(t, err)
				assert.Equal(t, advance.OutcomeAdvanced, res.Outcome)
				assert.Equal(t, "C", e.stepName(res.Next.StepID))
			})
		})
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("A template without steps should fail validation.", func(t *testing.T) {
		e := newEnv(t, backends[0].newRepo(t))
		plan := model.AssignedPlan{ID: model.NewID(), TemplateID: e.tplID, AnimalID: "cow-1", StartDate: e.clock.Today()}
		require.NoError(t, e.repo.CreatePlan(ctx, plan))

		_, err := e.svc.Seed(ctx, plan)
		assert.ErrorIs(t, err, model.ErrNotValid)
		assert.Contains(t, err.Error(), "template has no steps")
	})

	t.Run("Seeding twice should conflict.", func(t *testing.T) {
		e := newEnv(t, backends[0].newRepo(t), stepDef{name: "A"})
		plan, _ := e.assign(t, "cow-1")

		_, err := e.svc.Seed(ctx, plan)
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("The first operation should use the first step in sort order.", func(t *testing.T) {
		repo := backends[0].newRepo(t)
		e := newEnv(t, repo, stepDef{name: "A"})
		late := model.OperationStep{ID: model.NewID(), TemplateID: e.tplID, OperationType: model.OperationTypeCalving, Name: "Z", Condition: model.StepConditionAlways, SortOrder: -5}
		require.NoError(t, repo.CreateStep(ctx, late))

		plan := model.AssignedPlan{ID: model.NewID(), TemplateID: e.tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-05-20")}
		require.NoError(t, repo.CreatePlan(ctx, plan))
		op, err := e.svc.Seed(ctx, plan)
		require.NoError(t, err)
		assert.Equal(t, late.ID, op.StepID)
		assert.Equal(t, model.OperationTypeCalving, op.OperationType)
		assert.Equal(t, "2024-05-20", op.ScheduledDate.String())
	})
}
