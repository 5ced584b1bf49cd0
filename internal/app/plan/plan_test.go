package plan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/animal/fake"
	"github.com/slok/herdops/internal/app/advance"
	"github.com/slok/herdops/internal/app/plan"
	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage/memory"
	"github.com/slok/herdops/internal/utils/keymutex"
)

type seederFunc func(ctx context.Context, p model.AssignedPlan) (*model.ScheduledOperation, error)

func (f seederFunc) Seed(ctx context.Context, p model.AssignedPlan) (*model.ScheduledOperation, error) {
	return f(ctx, p)
}

type env struct {
	repo   *memory.Repository
	svc    *plan.Service
	clock  *clock.Fixed
	locker *keymutex.KeyMutex
}

func newEnv(t *testing.T, seeder plan.Seeder) *env {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	c := clock.NewFixedDate("2024-06-01")
	locker := keymutex.New()
	if seeder == nil {
		adv, err := advance.NewService(advance.ServiceConfig{
			Repository: repo,
			Registry:   fake.NewRegistry(),
			Clock:      c,
			Locker:     locker,
		})
		require.NoError(t, err)
		seeder = adv
	}

	svc, err := plan.NewService(plan.ServiceConfig{
		Repository:      repo,
		Seeder:          seeder,
		Clock:           c,
		Locker:          locker,
		BulkConcurrency: 3,
	})
	require.NoError(t, err)

	return &env{repo: repo, svc: svc, clock: c, locker: locker}
}

func (e *env) template(t *testing.T, active bool, steps ...string) string {
	t.Helper()
	ctx := context.Background()
	tpl := model.OperationTemplate{ID: model.NewID(), Name: "Ovsynch", IsActive: active, CreatedAt: time.Unix(0, 0).UTC(), UpdatedAt: time.Unix(0, 0).UTC()}
	require.NoError(t, e.repo.CreateTemplate(ctx, tpl))
	for i, name := range steps {
		require.NoError(t, e.repo.CreateStep(ctx, model.OperationStep{
			ID:            model.NewID(),
			TemplateID:    tpl.ID,
			OperationType: model.OperationTypeInsemination,
			Name:          name,
			Condition:     model.StepConditionAlways,
			SortOrder:     i,
		}))
	}
	return tpl.ID
}

func (e *env) counts(t *testing.T) (plans, ops int) {
	t.Helper()
	ps, err := e.repo.ListPlans(context.Background(), model.PlanFilter{})
	require.NoError(t, err)
	opList, err := e.repo.ListOperations(context.Background(), model.OperationFilter{})
	require.NoError(t, err)
	return len(ps), len(opList)
}

func TestNewService(t *testing.T) {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	noopSeeder := seederFunc(func(context.Context, model.AssignedPlan) (*model.ScheduledOperation, error) { return nil, nil })

	tests := map[string]struct {
		config plan.ServiceConfig
		expErr bool
	}{
		"valid config": {
			config: plan.ServiceConfig{Repository: repo, Seeder: noopSeeder},
		},
		"missing repository": {
			config: plan.ServiceConfig{Seeder: noopSeeder},
			expErr: true,
		},
		"missing seeder": {
			config: plan.ServiceConfig{Repository: repo},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := plan.NewService(test.config)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceAssign(t *testing.T) {
	start := model.MustParseDate("2024-06-10")

	tests := map[string]struct {
		seeder   plan.Seeder
		req      func(t *testing.T, e *env) plan.AssignRequest
		expErr   error
		expMsg   string
		expPlans int
		expOps   int
	}{
		"Assigning a template with steps should create the plan and its first operation.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: e.template(t, true, "AI", "Check"), AnimalID: "cow-1", StartDate: start}
			},
			expPlans: 1,
			expOps:   1,
		},
		"A missing template id should fail validation.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{AnimalID: "cow-1", StartDate: start}
			},
			expErr: model.ErrNotValid,
		},
		"A missing animal id should fail validation.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: e.template(t, true, "AI"), StartDate: start}
			},
			expErr: model.ErrNotValid,
		},
		"A missing start date should fail validation.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: e.template(t, true, "AI"), AnimalID: "cow-1"}
			},
			expErr: model.ErrNotValid,
		},
		"A template without steps should fail and create nothing.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: e.template(t, true), AnimalID: "cow-1", StartDate: start}
			},
			expErr: model.ErrNotValid,
			expMsg: "template has no steps",
		},
		"An inactive template should fail validation.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: e.template(t, false, "AI"), AnimalID: "cow-1", StartDate: start}
			},
			expErr: model.ErrNotValid,
		},
		"A missing template should fail with not found.": {
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: model.NewID(), AnimalID: "cow-1", StartDate: start}
			},
			expErr: model.ErrNotFound,
		},
		"A seeding failure should remove the plan.": {
			seeder: seederFunc(func(context.Context, model.AssignedPlan) (*model.ScheduledOperation, error) {
				return nil, errors.New("whatever")
			}),
			req: func(t *testing.T, e *env) plan.AssignRequest {
				return plan.AssignRequest{TemplateID: e.template(t, true, "AI"), AnimalID: "cow-1", StartDate: start}
			},
			expMsg: "could not seed plan",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			e := newEnv(t, test.seeder)
			req := test.req(t, e)
			a, err := e.svc.Assign(context.Background(), req)

			plans, ops := e.counts(t)
			assert.Equal(test.expPlans, plans)
			assert.Equal(test.expOps, ops)

			if test.expErr != nil || test.expMsg != "" {
				require.Error(err)
				if test.expErr != nil {
					assert.ErrorIs(err, test.expErr)
				}
				if test.expMsg != "" {
					assert.Contains(err.Error(), test.expMsg)
				}
				return
			}
			require.NoError(err)

			assert.Equal(0, a.Plan.CurrentStep)
			assert.False(a.Plan.IsCompleted)
			assert.Equal(req.AnimalID, a.Plan.AnimalID)
			assert.Equal(a.Plan.ID, a.Operation.PlanID)
			assert.Equal(start, a.Operation.ScheduledDate)
			assert.False(a.Operation.IsCompleted)
		})
	}
}

func TestServiceAssignBulk(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI", "Check")

	res, err := e.svc.AssignBulk(ctx, plan.AssignBulkRequest{
		TemplateID: tplID,
		AnimalIDs:  []string{"cow-1", "cow-2", "", "cow-1", "cow-3"},
		StartDate:  model.MustParseDate("2024-06-01"),
	})
	require.NoError(t, err)

	require.Len(t, res.Items, 4)
	assert.Equal(t, []string{"cow-1", "cow-2", "", "cow-3"}, []string{res.Items[0].AnimalID, res.Items[1].AnimalID, res.Items[2].AnimalID, res.Items[3].AnimalID})
	assert.Equal(t, 3, res.Succeeded())

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "", failed[0].AnimalID)
	assert.ErrorIs(t, failed[0].Err, model.ErrNotValid)

	plans, ops := e.counts(t)
	assert.Equal(t, 3, plans)
	assert.Equal(t, 3, ops)
}

func TestServiceAssignBulkCanceled(t *testing.T) {
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.svc.AssignBulk(ctx, plan.AssignBulkRequest{TemplateID: tplID, AnimalIDs: []string{"cow-1", "cow-2"}, StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Succeeded())
	for _, it := range res.Items {
		assert.ErrorIs(t, it.Err, context.Canceled)
	}
}

func TestServiceComplete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI")

	a, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)

	p, err := e.svc.Complete(ctx, a.Plan.ID)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.Equal(t, "2024-06-01", p.CompletedDate.String())

	// Idempotent, keeps the first completion date.
	e.clock.AddDays(3)
	p, err = e.svc.Complete(ctx, a.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", p.CompletedDate.String())

	_, err = e.svc.Complete(ctx, model.NewID())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestServiceAssignRollbackTakesPlanLock(t *testing.T) {
	ctx := context.Background()

	var e *env
	locked := make(chan struct{})
	planSeenDuringLock := make(chan bool, 1)
	seeder := seederFunc(func(ctx context.Context, p model.AssignedPlan) (*model.ScheduledOperation, error) {
		// Another writer holds the plan while the seed fails.
		go func() {
			unlock := e.locker.Lock(p.ID)
			defer unlock()
			close(locked)
			time.Sleep(100 * time.Millisecond)
			_, err := e.repo.GetPlan(ctx, p.ID)
			planSeenDuringLock <- err == nil
		}()
		<-locked
		return nil, errors.New("seed failed")
	})
	e = newEnv(t, seeder)
	tplID := e.template(t, true, "AI")

	_, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-06-01")})
	require.Error(t, err)

	assert.True(t, <-planSeenDuringLock, "the plan must not be removed while another writer holds it")
	plans, ops := e.counts(t)
	assert.Equal(t, 0, plans)
	assert.Equal(t, 0, ops)
}

func TestServiceCompleteLeavesCursor(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI", "PD")

	a, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)

	moved := a.Plan
	moved.CurrentStep = 1
	require.NoError(t, e.repo.AdvancePlan(ctx, moved, 0))

	p, err := e.svc.Complete(ctx, a.Plan.ID)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)

	stored, err := e.repo.GetPlan(ctx, a.Plan.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, 1, stored.CurrentStep)
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI")

	a, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)
	_, err = e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-2", StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, a.Plan.ID))

	_, err = e.repo.GetOperation(ctx, a.Operation.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	plans, ops := e.counts(t)
	assert.Equal(t, 1, plans)
	assert.Equal(t, 1, ops)

	assert.ErrorIs(t, e.svc.Delete(ctx, a.Plan.ID), model.ErrNotFound)
}

func TestTemplateDeletionKeepsPlans(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI")

	a, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)
	require.NoError(t, e.repo.DeleteTemplate(ctx, tplID))

	got, err := e.svc.Get(ctx, a.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, tplID, got.TemplateID)
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	tplID := e.template(t, true, "AI")

	a1, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-1", StartDate: model.MustParseDate("2024-06-05")})
	require.NoError(t, err)
	a2, err := e.svc.Assign(ctx, plan.AssignRequest{TemplateID: tplID, AnimalID: "cow-2", StartDate: model.MustParseDate("2024-06-01")})
	require.NoError(t, err)
	_, err = e.svc.Complete(ctx, a2.Plan.ID)
	require.NoError(t, err)

	all, err := e.svc.List(ctx, model.PlanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a2.Plan.ID, all[0].ID)
	assert.Equal(t, a1.Plan.ID, all[1].ID)

	active, err := e.svc.List(ctx, model.PlanFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a1.Plan.ID, active[0].ID)

	byAnimal, err := e.svc.List(ctx, model.PlanFilter{AnimalID: "cow-2"})
	require.NoError(t, err)
	require.Len(t, byAnimal, 1)
}
