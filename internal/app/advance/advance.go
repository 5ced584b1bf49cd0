package advance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/metrics"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
	"github.com/slok/herdops/internal/utils/keymutex"
)

// Outcome is the plan transition produced by completing an operation.
type Outcome string

const (
	// OutcomeAdvanced means a next operation was scheduled.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomePlanCompleted means the plan has no more eligible steps.
	OutcomePlanCompleted Outcome = "plan_completed"
)

// ServiceConfig is the configuration for the advancement service.
type ServiceConfig struct {
	Repository storage.Repository
	Registry   animal.Registry
	Clock      clock.Clock
	// Locker serializes the writes of a plan. Share it with every service writing plans.
	Locker *keymutex.KeyMutex
	// SideEffectTimeout bounds each animal registry call.
	SideEffectTimeout time.Duration
	Metrics           metrics.Recorder
	Logger            log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Registry == nil {
		return fmt.Errorf("animal registry is required")
	}

	if c.Clock == nil {
		c.Clock = clock.NewSystem(time.UTC)
	}

	if c.Locker == nil {
		c.Locker = keymutex.New()
	}

	if c.SideEffectTimeout <= 0 {
		c.SideEffectTimeout = 5 * time.Second
	}

	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Advance"})

	return nil
}

// Service is the advancement engine. It materializes the steps of a plan as scheduled
// operations, one at a time, as their results arrive.
type Service struct {
	repo      storage.Repository
	registry  animal.Registry
	clock     clock.Clock
	locker    *keymutex.KeyMutex
	seTimeout time.Duration
	metrics   metrics.Recorder
	logger    log.Logger
}

// NewService creates a new advancement service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		registry:  cfg.Registry,
		clock:     cfg.Clock,
		locker:    cfg.Locker,
		seTimeout: cfg.SideEffectTimeout,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}, nil
}

// Result is the outcome of completing (or advancing past) an operation.
type Result struct {
	// Operation is the completed operation.
	Operation *model.ScheduledOperation
	Outcome   Outcome
	// Next is the new scheduled operation when the plan advanced.
	Next *model.ScheduledOperation
	Plan *model.AssignedPlan
	// Warnings are the side effects that failed and were queued for reconciliation.
	Warnings []model.SideEffectFailure
}

// Seed materializes the first step of a new plan, scheduled on the plan start date.
func (s *Service) Seed(ctx context.Context, plan model.AssignedPlan) (op *model.ScheduledOperation, err error) {
	defer metrics.Observe(ctx, s.metrics, "seed", time.Now(), &err)

	unlock := s.locker.Lock(plan.ID)
	defer unlock()

	existing, err := s.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID})
	if err != nil {
		return nil, fmt.Errorf("could not list plan operations: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("plan %s is already seeded: %w", plan.ID, model.ErrConflict)
	}

	steps, err := s.repo.ListSteps(ctx, plan.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("could not list template steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("template has no steps: %w", model.ErrNotValid)
	}

	op, err = s.schedule(ctx, plan, steps[0], plan.StartDate)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("seeded plan %s with operation %s on %s", plan.ID, op.ID, op.ScheduledDate)
	return op, nil
}

// CompleteRequest represents the operation completion parameters.
type CompleteRequest struct {
	OperationID string
	// Result is optional.
	Result model.Result
}

// CompleteOperation marks the operation completed, applies the step side effects and
// advances its plan to the next eligible step. The completion is a conditional write
// so only one of many concurrent completions of the same operation wins, the others
// fail with model.ErrConflict before any side effect runs.
func (s *Service) CompleteOperation(ctx context.Context, req CompleteRequest) (res *Result, err error) {
	defer metrics.Observe(ctx, s.metrics, "complete_operation", time.Now(), &err)

	if req.OperationID == "" {
		return nil, fmt.Errorf("operation id is required: %w", model.ErrNotValid)
	}
	if !req.Result.Valid() {
		return nil, fmt.Errorf("unknown result %q: %w", req.Result, model.ErrNotValid)
	}

	op, err := s.getOperation(ctx, req.OperationID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(op.PlanID)
	defer unlock()

	// Reload under the plan lock, a concurrent completion may have won.
	op, err = s.getOperation(ctx, req.OperationID)
	if err != nil {
		return nil, err
	}
	if op.IsCompleted {
		return nil, fmt.Errorf("operation %s is already completed: %w", op.ID, model.ErrConflict)
	}

	plan, err := s.getPlan(ctx, op.PlanID)
	if err != nil {
		return nil, err
	}
	step, err := s.getStep(ctx, op.StepID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	op.IsCompleted = true
	op.CompletedDate = &today
	op.Result = req.Result
	if err := s.repo.CompleteOperation(ctx, *op); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("operation %s is already completed: %w", op.ID, model.ErrConflict)
		}
		return nil, fmt.Errorf("could not mark operation completed: %w", err)
	}
	s.logger.Infof("completed operation %s of plan %s (result: %q)", op.ID, plan.ID, op.Result)

	warnings := s.applySideEffects(ctx, *op, *step)

	res = &Result{Operation: op, Plan: plan, Warnings: warnings}

	// Manually completed plans keep the result but never advance.
	if plan.IsCompleted {
		res.Outcome = OutcomePlanCompleted
		return res, nil
	}

	if err := s.advance(ctx, plan, op.StepID, req.Result, res); err != nil {
		return nil, err
	}

	return res, nil
}

// AdvanceRequest represents the advancement parameters.
type AdvanceRequest struct {
	// OperationID is the already completed operation to advance past.
	OperationID string
	Result      model.Result
}

// Advance selects and materializes the step following an already completed operation.
// It refuses to run while the plan has an outstanding operation, or when the operation
// belongs to a step the plan has already moved past.
func (s *Service) Advance(ctx context.Context, req AdvanceRequest) (res *Result, err error) {
	defer metrics.Observe(ctx, s.metrics, "advance", time.Now(), &err)

	if req.OperationID == "" {
		return nil, fmt.Errorf("operation id is required: %w", model.ErrNotValid)
	}
	if !req.Result.Valid() {
		return nil, fmt.Errorf("unknown result %q: %w", req.Result, model.ErrNotValid)
	}

	op, err := s.getOperation(ctx, req.OperationID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(op.PlanID)
	defer unlock()

	plan, err := s.getPlan(ctx, op.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.IsCompleted {
		return nil, fmt.Errorf("plan %s is already completed: %w", plan.ID, model.ErrConflict)
	}

	incomplete := false
	pending, err := s.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID, Completed: &incomplete})
	if err != nil {
		return nil, fmt.Errorf("could not list plan operations: %w", err)
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("plan %s has an outstanding operation %s: %w", plan.ID, pending[0].ID, model.ErrConflict)
	}

	steps, err := s.repo.ListSteps(ctx, plan.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("could not list template steps: %w", err)
	}
	behind, err := s.behindPlan(ctx, *plan, steps, *op)
	if err != nil {
		return nil, err
	}
	if behind {
		return nil, fmt.Errorf("operation %s is behind plan %s step %d: %w", op.ID, plan.ID, plan.CurrentStep, model.ErrConflict)
	}

	res = &Result{Operation: op, Plan: plan}
	if err := s.advance(ctx, plan, op.StepID, req.Result, res); err != nil {
		return nil, err
	}

	return res, nil
}

// advance is a single forward scan over the template steps after stepID, the first
// step whose condition accepts the result is scheduled. The plan lock must be held.
// The plan cursor moves with a conditional write from the loaded step, a plan moved
// by another writer meanwhile fails with model.ErrConflict.
func (s *Service) advance(ctx context.Context, plan *model.AssignedPlan, stepID string, result model.Result, res *Result) error {
	steps, err := s.repo.ListSteps(ctx, plan.TemplateID)
	if err != nil {
		return fmt.Errorf("could not list template steps: %w", err)
	}

	from := *plan
	idx := stepIndex(steps, stepID)
	if idx >= 0 {
		for i := idx + 1; i < len(steps); i++ {
			candidate := steps[i]
			if !candidate.Condition.Accepts(result) {
				continue
			}

			date := s.clock.Today().AddDays(candidate.DaysAfterPrevious)
			next := newOperation(*plan, candidate, date)
			if err := next.Validate(); err != nil {
				return fmt.Errorf("could not schedule step %q: %w", candidate.Name, err)
			}

			moved := from
			moved.CurrentStep = i
			if err := s.repo.AdvancePlan(ctx, moved, from.CurrentStep); err != nil {
				return fmt.Errorf("could not update plan cursor: %w", err)
			}
			if err := s.repo.CreateOperation(ctx, next); err != nil {
				if rerr := s.repo.AdvancePlan(ctx, from, moved.CurrentStep); rerr != nil {
					s.logger.Errorf("could not restore plan %s cursor to step %d: %s", plan.ID, from.CurrentStep, rerr)
				}
				return fmt.Errorf("could not create scheduled operation: %w", err)
			}

			*plan = moved
			res.Outcome = OutcomeAdvanced
			res.Next = &next
			res.Plan = plan
			s.metrics.IncPlanTransition(ctx, string(OutcomeAdvanced))
			s.logger.Infof("plan %s advanced to step %q (%d), operation %s on %s", plan.ID, candidate.Name, i, next.ID, next.ScheduledDate)
			return nil
		}
	}

	today := s.clock.Today()
	completed := from
	completed.IsCompleted = true
	completed.CompletedDate = &today
	if err := s.repo.AdvancePlan(ctx, completed, from.CurrentStep); err != nil {
		return fmt.Errorf("could not complete plan: %w", err)
	}

	*plan = completed
	res.Outcome = OutcomePlanCompleted
	res.Plan = plan
	s.metrics.IncPlanTransition(ctx, string(OutcomePlanCompleted))
	s.logger.Infof("plan %s completed", plan.ID)
	return nil
}

func (s *Service) schedule(ctx context.Context, plan model.AssignedPlan, step model.OperationStep, date model.Date) (*model.ScheduledOperation, error) {
	op := newOperation(plan, step, date)
	if err := s.repo.CreateOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("could not create scheduled operation: %w", err)
	}
	return &op, nil
}

func newOperation(plan model.AssignedPlan, step model.OperationStep, date model.Date) model.ScheduledOperation {
	return model.ScheduledOperation{
		ID:            model.NewID(),
		PlanID:        plan.ID,
		StepID:        step.ID,
		AnimalID:      plan.AnimalID,
		OperationType: step.OperationType,
		ScheduledDate: date,
	}
}

// behindPlan reports whether op belongs to a step before the plan cursor. An op whose
// step is no longer in the template is behind if any other op of the plan still has
// its step in the template.
func (s *Service) behindPlan(ctx context.Context, plan model.AssignedPlan, steps []model.OperationStep, op model.ScheduledOperation) (bool, error) {
	if idx := stepIndex(steps, op.StepID); idx >= 0 {
		return idx < plan.CurrentStep, nil
	}

	ops, err := s.repo.ListOperations(ctx, model.OperationFilter{PlanID: plan.ID})
	if err != nil {
		return false, fmt.Errorf("could not list plan operations: %w", err)
	}
	for _, o := range ops {
		if o.ID != op.ID && stepIndex(steps, o.StepID) >= 0 {
			return true, nil
		}
	}
	return false, nil
}

// stepIndex returns the position of the step in the ordered list, -1 if missing.
func stepIndex(steps []model.OperationStep, stepID string) int {
	for i, st := range steps {
		if st.ID == stepID {
			return i
		}
	}
	return -1
}

func (s *Service) getOperation(ctx context.Context, id string) (*model.ScheduledOperation, error) {
	op, err := s.repo.GetOperation(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Errorf("operation not found: %s", id)
			return nil, fmt.Errorf("operation not found: %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get operation: %w", err)
	}
	return op, nil
}

func (s *Service) getPlan(ctx context.Context, id string) (*model.AssignedPlan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Errorf("plan not found: %s", id)
			return nil, fmt.Errorf("plan not found: %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get plan: %w", err)
	}
	return plan, nil
}

func (s *Service) getStep(ctx context.Context, id string) (*model.OperationStep, error) {
	step, err := s.repo.GetStep(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Errorf("step not found: %s", id)
			return nil, fmt.Errorf("step not found: %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get step: %w", err)
	}
	return step, nil
}
