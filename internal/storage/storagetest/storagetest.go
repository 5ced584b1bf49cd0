// Package storagetest has the behavior every storage.Repository backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
)

// RepositoryFactory returns a new empty repository for a test.
type RepositoryFactory func(t *testing.T) storage.Repository

// TemplateFixture returns a valid template.
func TemplateFixture(name string) model.OperationTemplate {
	now := time.Now().UTC().Truncate(time.Second)
	return model.OperationTemplate{
		ID:          model.NewID(),
		Name:        name,
		Description: name + " protocol",
		IsActive:    true,
		CreatedByID: "vet-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// StepFixture returns a valid step for a template.
func StepFixture(templateID, name string, sortOrder int) model.OperationStep {
	return model.OperationStep{
		ID:                model.NewID(),
		TemplateID:        templateID,
		OperationType:     model.OperationTypeInsemination,
		Name:              name,
		DaysAfterPrevious: 0,
		Condition:         model.StepConditionAlways,
		SortOrder:         sortOrder,
	}
}

// PlanFixture returns a valid plan.
func PlanFixture(templateID, animalID string, start model.Date) model.AssignedPlan {
	return model.AssignedPlan{
		ID:         model.NewID(),
		TemplateID: templateID,
		AnimalID:   animalID,
		StartDate:  start,
	}
}

// OperationFixture returns a valid incomplete operation.
func OperationFixture(p model.AssignedPlan, stepID string, date model.Date) model.ScheduledOperation {
	return model.ScheduledOperation{
		ID:            model.NewID(),
		PlanID:        p.ID,
		StepID:        stepID,
		AnimalID:      p.AnimalID,
		OperationType: model.OperationTypePregnancyTest,
		ScheduledDate: date,
	}
}

// TestRepository runs the shared repository behavior against a backend.
func TestRepository(t *testing.T, newRepo RepositoryFactory) {
	t.Run("Templates", func(t *testing.T) { testTemplates(t, newRepo(t)) })
	t.Run("Steps", func(t *testing.T) { testSteps(t, newRepo(t)) })
	t.Run("Plans", func(t *testing.T) { testPlans(t, newRepo(t)) })
	t.Run("Operations", func(t *testing.T) { testOperations(t, newRepo(t)) })
	t.Run("SideEffectFailures", func(t *testing.T) { testSideEffectFailures(t, newRepo(t)) })
	t.Run("CompleteOperation", func(t *testing.T) { testCompleteOperation(t, newRepo(t)) })
	t.Run("AdvancePlan", func(t *testing.T) { testAdvancePlan(t, newRepo(t)) })
	t.Run("MalformedIDs", func(t *testing.T) { testMalformedIDs(t, newRepo(t)) })
	t.Run("DateBounds", func(t *testing.T) { testDateBounds(t, newRepo(t)) })
}

func testTemplates(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	tplB := TemplateFixture("B protocol")
	tplA := TemplateFixture("A protocol")
	require.NoError(t, repo.CreateTemplate(ctx, tplB))
	require.NoError(t, repo.CreateTemplate(ctx, tplA))

	err := repo.CreateTemplate(ctx, tplA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	bad := TemplateFixture("bad")
	bad.ID = "not-an-uuid"
	err = repo.CreateTemplate(ctx, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotValid))

	got, err := repo.GetTemplate(ctx, tplA.ID)
	require.NoError(t, err)
	assert.Equal(t, "A protocol", got.Name)
	assert.Equal(t, "vet-1", got.CreatedByID)
	assert.True(t, got.IsActive)
	assert.True(t, tplA.CreatedAt.Equal(got.CreatedAt))

	all, err := repo.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, tplA.ID, all[0].ID)
	assert.Equal(t, tplB.ID, all[1].ID)

	tplA.IsActive = false
	tplA.Description = "changed"
	require.NoError(t, repo.UpdateTemplate(ctx, tplA))
	got, err = repo.GetTemplate(ctx, tplA.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "changed", got.Description)

	missing := TemplateFixture("missing")
	err = repo.UpdateTemplate(ctx, missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	// Deleting a template cascades to steps but not plans.
	step := StepFixture(tplA.ID, "s1", 1)
	require.NoError(t, repo.CreateStep(ctx, step))
	plan := PlanFixture(tplA.ID, "cow-1", model.MustParseDate("2024-06-01"))
	require.NoError(t, repo.CreatePlan(ctx, plan))

	require.NoError(t, repo.DeleteTemplate(ctx, tplA.ID))
	_, err = repo.GetTemplate(ctx, tplA.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	_, err = repo.GetStep(ctx, step.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	steps, err := repo.ListSteps(ctx, tplA.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)
	gotPlan, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, tplA.ID, gotPlan.TemplateID)

	err = repo.DeleteTemplate(ctx, tplA.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testSteps(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	tpl := TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))
	other := TemplateFixture("Other")
	require.NoError(t, repo.CreateTemplate(ctx, other))

	// Unknown template is a validation error.
	orphan := StepFixture(model.NewID(), "orphan", 1)
	err := repo.CreateStep(ctx, orphan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotValid))

	s30 := StepFixture(tpl.ID, "s30", 30)
	s10 := StepFixture(tpl.ID, "s10", 10)
	s20a := StepFixture(tpl.ID, "s20a", 20)
	s20b := StepFixture(tpl.ID, "s20b", 20)
	s20b.Condition = model.StepConditionNegative
	s20b.ChangeStatus = "Open"
	s20b.ChangeGroupID = "group-7"
	s20b.DaysAfterPrevious = 14
	s20b.OperationType = model.OperationTypeGroupChange
	otherStep := StepFixture(other.ID, "other", 1)
	for _, s := range []model.OperationStep{s30, s10, s20a, s20b, otherStep} {
		require.NoError(t, repo.CreateStep(ctx, s))
	}

	err = repo.CreateStep(ctx, s10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	steps, err := repo.ListSteps(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, []string{"s10", "s20a", "s20b", "s30"}, stepNames(steps))
	assert.Equal(t, s20b, steps[2])

	// Updating keeps insertion order for ties.
	s20a.Name = "s20a-renamed"
	require.NoError(t, repo.UpdateStep(ctx, s20a))
	steps, err = repo.ListSteps(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s10", "s20a-renamed", "s20b", "s30"}, stepNames(steps))

	s30.SortOrder = 5
	require.NoError(t, repo.UpdateStep(ctx, s30))
	steps, err = repo.ListSteps(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s30", "s10", "s20a-renamed", "s20b"}, stepNames(steps))

	require.NoError(t, repo.DeleteStep(ctx, s10.ID))
	_, err = repo.GetStep(ctx, s10.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	err = repo.DeleteStep(ctx, s10.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	missing := StepFixture(tpl.ID, "missing", 1)
	err = repo.UpdateStep(ctx, missing)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testPlans(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	tpl := TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))

	p2 := PlanFixture(tpl.ID, "cow-2", model.MustParseDate("2024-06-02"))
	p1 := PlanFixture(tpl.ID, "cow-1", model.MustParseDate("2024-06-01"))
	p3 := PlanFixture(model.NewID(), "cow-1", model.MustParseDate("2024-06-02"))
	for _, p := range []model.AssignedPlan{p2, p1, p3} {
		require.NoError(t, repo.CreatePlan(ctx, p))
	}

	err := repo.CreatePlan(ctx, p1)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	got, err := repo.GetPlan(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1, *got)

	all, err := repo.ListPlans(ctx, model.PlanFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p2.ID, p3.ID}, planIDs(all))

	byAnimal, err := repo.ListPlans(ctx, model.PlanFilter{AnimalID: "cow-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p3.ID}, planIDs(byAnimal))

	byTemplate, err := repo.ListPlans(ctx, model.PlanFilter{TemplateID: tpl.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p2.ID}, planIDs(byTemplate))

	done := model.MustParseDate("2024-07-01")
	p2.IsCompleted = true
	p2.CompletedDate = &done
	p2.CurrentStep = 3
	require.NoError(t, repo.UpdatePlan(ctx, p2))

	got, err = repo.GetPlan(ctx, p2.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 3, got.CurrentStep)
	require.NotNil(t, got.CompletedDate)
	assert.Equal(t, "2024-07-01", got.CompletedDate.String())

	active, err := repo.ListPlans(ctx, model.PlanFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p3.ID}, planIDs(active))

	// Deleting a plan cascades to its operations.
	op1 := OperationFixture(p1, model.NewID(), p1.StartDate)
	op2 := OperationFixture(p1, model.NewID(), p1.StartDate.AddDays(10))
	opOther := OperationFixture(p2, model.NewID(), p2.StartDate)
	for _, o := range []model.ScheduledOperation{op1, op2, opOther} {
		require.NoError(t, repo.CreateOperation(ctx, o))
	}

	require.NoError(t, repo.DeletePlan(ctx, p1.ID))
	_, err = repo.GetPlan(ctx, p1.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	ops, err := repo.ListOperations(ctx, model.OperationFilter{PlanID: p1.ID})
	require.NoError(t, err)
	assert.Empty(t, ops)
	_, err = repo.GetOperation(ctx, op1.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	_, err = repo.GetOperation(ctx, opOther.ID)
	assert.NoError(t, err)

	err = repo.DeletePlan(ctx, p1.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	err = repo.UpdatePlan(ctx, p1)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testOperations(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	today := model.MustParseDate("2024-06-10")
	yesterday := today.AddDays(-1)
	tomorrow := today.AddDays(1)

	tpl := TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))
	p1 := PlanFixture(tpl.ID, "cow-1", yesterday)
	p2 := PlanFixture(tpl.ID, "cow-2", yesterday)
	require.NoError(t, repo.CreatePlan(ctx, p1))
	require.NoError(t, repo.CreatePlan(ctx, p2))

	orphan := OperationFixture(PlanFixture(tpl.ID, "cow-x", today), model.NewID(), today)
	err := repo.CreateOperation(ctx, orphan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotValid))

	opTomorrow := OperationFixture(p1, model.NewID(), tomorrow)
	opToday := OperationFixture(p1, model.NewID(), today)
	opYesterday := OperationFixture(p2, model.NewID(), yesterday)
	opYesterdayDone := OperationFixture(p2, model.NewID(), yesterday)
	opYesterdayDone.IsCompleted = true
	opYesterdayDone.CompletedDate = &yesterday
	opYesterdayDone.Result = model.ResultPositive
	for _, o := range []model.ScheduledOperation{opTomorrow, opToday, opYesterday, opYesterdayDone} {
		require.NoError(t, repo.CreateOperation(ctx, o))
	}

	err = repo.CreateOperation(ctx, opToday)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	got, err := repo.GetOperation(ctx, opYesterdayDone.ID)
	require.NoError(t, err)
	assert.Equal(t, opYesterdayDone, *got)

	all, err := repo.ListOperations(ctx, model.OperationFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{opYesterday.ID, opYesterdayDone.ID, opToday.ID, opTomorrow.ID}, operationIDs(all))

	incomplete := false
	overdue, err := repo.ListOperations(ctx, model.OperationFilter{Completed: &incomplete, ScheduledBefore: &today})
	require.NoError(t, err)
	assert.Equal(t, []string{opYesterday.ID}, operationIDs(overdue))

	onToday, err := repo.ListOperations(ctx, model.OperationFilter{Completed: &incomplete, ScheduledOn: &today})
	require.NoError(t, err)
	assert.Equal(t, []string{opToday.ID}, operationIDs(onToday))

	upcoming, err := repo.ListOperations(ctx, model.OperationFilter{Completed: &incomplete, ScheduledAfter: &today, ScheduledUntil: &tomorrow})
	require.NoError(t, err)
	assert.Equal(t, []string{opTomorrow.ID}, operationIDs(upcoming))

	byAnimal, err := repo.ListOperations(ctx, model.OperationFilter{AnimalID: "cow-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{opToday.ID, opTomorrow.ID}, operationIDs(byAnimal))

	opToday.IsCompleted = true
	opToday.CompletedDate = &today
	opToday.Result = model.ResultNegative
	require.NoError(t, repo.UpdateOperation(ctx, opToday))
	got, err = repo.GetOperation(ctx, opToday.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, model.ResultNegative, got.Result)
	assert.Equal(t, today.String(), got.CompletedDate.String())

	missing := OperationFixture(p1, model.NewID(), today)
	err = repo.UpdateOperation(ctx, missing)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testSideEffectFailures(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	f1 := model.SideEffectFailure{
		ID:          "01HZX0000000000000000000A1",
		OperationID: model.NewID(),
		PlanID:      model.NewID(),
		AnimalID:    "cow-1",
		Kind:        model.SideEffectKindStatus,
		Value:       "Open",
		Error:       "timeout",
		Attempts:    1,
		CreatedAt:   now,
	}
	f2 := f1
	f2.ID = "01HZX0000000000000000000A2"
	f2.Kind = model.SideEffectKindGroup
	f2.Value = "group-1"
	require.NoError(t, repo.CreateSideEffectFailure(ctx, f2))
	require.NoError(t, repo.CreateSideEffectFailure(ctx, f1))

	err := repo.CreateSideEffectFailure(ctx, f1)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	pending, err := repo.ListSideEffectFailures(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, f1.ID, pending[0].ID)
	assert.Equal(t, f2.ID, pending[1].ID)
	assert.Equal(t, model.SideEffectKindGroup, pending[1].Kind)

	resolved := now.Add(time.Minute)
	f1.ResolvedAt = &resolved
	f1.Attempts = 2
	require.NoError(t, repo.UpdateSideEffectFailure(ctx, f1))

	pending, err = repo.ListSideEffectFailures(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, f2.ID, pending[0].ID)

	all, err := repo.ListSideEffectFailures(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Attempts)
	require.NotNil(t, all[0].ResolvedAt)
	assert.True(t, resolved.Equal(*all[0].ResolvedAt))

	missing := f1
	missing.ID = "01HZX0000000000000000000A9"
	err = repo.UpdateSideEffectFailure(ctx, missing)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testCompleteOperation(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	today := model.MustParseDate("2024-06-10")

	tpl := TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))
	p := PlanFixture(tpl.ID, "cow-1", today)
	require.NoError(t, repo.CreatePlan(ctx, p))
	op := OperationFixture(p, model.NewID(), today)
	require.NoError(t, repo.CreateOperation(ctx, op))

	pending := op
	err := repo.CompleteOperation(ctx, pending)
	assert.True(t, errors.Is(err, model.ErrNotValid), "a pending operation can't be stored as a completion")

	first := op
	first.IsCompleted = true
	first.CompletedDate = &today
	first.Result = model.ResultPositive
	require.NoError(t, repo.CompleteOperation(ctx, first))

	// A second completion loses, whatever result it carries.
	second := first
	second.Result = model.ResultNegative
	err = repo.CompleteOperation(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))

	got, err := repo.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, model.ResultPositive, got.Result)
	assert.Equal(t, today.String(), got.CompletedDate.String())
	assert.Equal(t, op.ScheduledDate.String(), got.ScheduledDate.String())

	missing := OperationFixture(p, model.NewID(), today)
	missing.IsCompleted = true
	missing.CompletedDate = &today
	err = repo.CompleteOperation(ctx, missing)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testAdvancePlan(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	start := model.MustParseDate("2024-06-01")

	tpl := TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))
	p := PlanFixture(tpl.ID, "cow-1", start)
	require.NoError(t, repo.CreatePlan(ctx, p))

	next := p
	next.CurrentStep = 1
	require.NoError(t, repo.AdvancePlan(ctx, next, 0))

	// A writer that read the plan at step 0 must not move it again.
	stale := p
	stale.CurrentStep = 2
	err := repo.AdvancePlan(ctx, stale, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))

	got, err := repo.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStep)

	done := start.AddDays(30)
	completed := next
	completed.IsCompleted = true
	completed.CompletedDate = &done
	require.NoError(t, repo.AdvancePlan(ctx, completed, 1))

	err = repo.AdvancePlan(ctx, completed, 1)
	assert.True(t, errors.Is(err, model.ErrConflict), "a completed plan can't advance")

	got, err = repo.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, done.String(), got.CompletedDate.String())

	missing := PlanFixture(tpl.ID, "cow-2", start)
	err = repo.AdvancePlan(ctx, missing, 0)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testMalformedIDs(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	bad := "not-an-uuid"

	tests := map[string]func() error{
		"Get template.":    func() error { _, err := repo.GetTemplate(ctx, bad); return err },
		"Delete template.": func() error { return repo.DeleteTemplate(ctx, bad) },
		"Get step.":        func() error { _, err := repo.GetStep(ctx, bad); return err },
		"List steps.":      func() error { _, err := repo.ListSteps(ctx, bad); return err },
		"Delete step.":     func() error { return repo.DeleteStep(ctx, bad) },
		"Get plan.":        func() error { _, err := repo.GetPlan(ctx, bad); return err },
		"Delete plan.":     func() error { return repo.DeletePlan(ctx, bad) },
		"Get operation.":   func() error { _, err := repo.GetOperation(ctx, bad); return err },
		"Upper case id.": func() error {
			_, err := repo.GetPlan(ctx, "7F3C2A1E-5B4D-4C8E-9A6F-0D1E2F3A4B5C")
			return err
		},
	}

	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrNotValid))
			assert.False(t, errors.Is(err, model.ErrNotFound))
		})
	}
}

func testDateBounds(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	last := model.MustParseDate("9999-12-31")
	beyond := last.AddDays(1)

	tpl := TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))

	long := StepFixture(tpl.ID, "Too late", 1)
	long.DaysAfterPrevious = model.MaxDaysAfterPrevious + 1
	err := repo.CreateStep(ctx, long)
	assert.True(t, errors.Is(err, model.ErrNotValid))

	longest := StepFixture(tpl.ID, "Latest", 2)
	longest.DaysAfterPrevious = model.MaxDaysAfterPrevious
	require.NoError(t, repo.CreateStep(ctx, longest))
	got, err := repo.GetStep(ctx, longest.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaxDaysAfterPrevious, got.DaysAfterPrevious)

	err = repo.CreatePlan(ctx, PlanFixture(tpl.ID, "cow-1", beyond))
	assert.True(t, errors.Is(err, model.ErrNotValid))

	p := PlanFixture(tpl.ID, "cow-1", last)
	require.NoError(t, repo.CreatePlan(ctx, p))

	err = repo.CreateOperation(ctx, OperationFixture(p, longest.ID, beyond))
	assert.True(t, errors.Is(err, model.ErrNotValid))

	op := OperationFixture(p, longest.ID, last)
	require.NoError(t, repo.CreateOperation(ctx, op))

	// Every stored date must be readable back.
	ops, err := repo.ListOperations(ctx, model.OperationFilter{PlanID: p.ID})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "9999-12-31", ops[0].ScheduledDate.String())
}

func stepNames(steps []model.OperationStep) []string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	return names
}

func planIDs(plans []model.AssignedPlan) []string {
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	return ids
}

func operationIDs(ops []model.ScheduledOperation) []string {
	ids := make([]string, 0, len(ops))
	for _, o := range ops {
		ids = append(ids, o.ID)
	}
	return ids
}
