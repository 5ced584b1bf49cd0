package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/metrics"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
	"github.com/slok/herdops/internal/utils/keymutex"
)

// Seeder materializes the first operation of a new plan.
type Seeder interface {
	Seed(ctx context.Context, plan model.AssignedPlan) (*model.ScheduledOperation, error)
}

// ServiceConfig is the configuration for the plan service.
type ServiceConfig struct {
	Repository storage.Repository
	Seeder     Seeder
	Clock      clock.Clock
	// Locker must be the same one the seeder uses.
	Locker *keymutex.KeyMutex
	// BulkConcurrency is the number of assignments run at the same time by AssignBulk.
	BulkConcurrency int
	Metrics         metrics.Recorder
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Seeder == nil {
		return fmt.Errorf("seeder is required")
	}

	if c.Clock == nil {
		c.Clock = clock.NewSystem(time.UTC)
	}

	if c.Locker == nil {
		c.Locker = keymutex.New()
	}

	if c.BulkConcurrency <= 0 {
		c.BulkConcurrency = 8
	}

	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Plan"})

	return nil
}

// Service manages the plans assigned to animals.
type Service struct {
	repo            storage.Repository
	seeder          Seeder
	clock           clock.Clock
	locker          *keymutex.KeyMutex
	bulkConcurrency int
	metrics         metrics.Recorder
	logger          log.Logger
}

// NewService creates a new plan service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:            cfg.Repository,
		seeder:          cfg.Seeder,
		clock:           cfg.Clock,
		locker:          cfg.Locker,
		bulkConcurrency: cfg.BulkConcurrency,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
	}, nil
}

// AssignRequest represents the plan assignment parameters.
type AssignRequest struct {
	TemplateID string
	AnimalID   string
	StartDate  model.Date
}

func (r AssignRequest) validate() error {
	if r.TemplateID == "" {
		return fmt.Errorf("template id is required: %w", model.ErrNotValid)
	}
	if r.AnimalID == "" {
		return fmt.Errorf("animal id is required: %w", model.ErrNotValid)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("start date is required: %w", model.ErrNotValid)
	}
	return nil
}

// Assignment is an assigned plan with its first scheduled operation.
type Assignment struct {
	Plan      model.AssignedPlan
	Operation model.ScheduledOperation
}

// Assign instantiates a template for an animal and schedules its first operation on the
// start date. Either both are created or none.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (a *Assignment, err error) {
	defer metrics.Observe(ctx, s.metrics, "assign", time.Now(), &err)

	if err := req.validate(); err != nil {
		return nil, err
	}

	tpl, err := s.repo.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("template not found: %s: %w", req.TemplateID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get template: %w", err)
	}
	if !tpl.IsActive {
		return nil, fmt.Errorf("template %q is not active: %w", tpl.Name, model.ErrNotValid)
	}

	steps, err := s.repo.ListSteps(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list template steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("template has no steps: %w", model.ErrNotValid)
	}

	plan := model.AssignedPlan{
		ID:          model.NewID(),
		TemplateID:  tpl.ID,
		AnimalID:    req.AnimalID,
		StartDate:   req.StartDate,
		CurrentStep: 0,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("could not create plan: %w", err)
	}

	op, err := s.seeder.Seed(ctx, plan)
	if err != nil {
		s.removeUnseeded(ctx, plan.ID)
		return nil, fmt.Errorf("could not seed plan: %w", err)
	}

	s.metrics.IncPlanTransition(ctx, "assigned")
	s.logger.Infof("assigned template %q to animal %s (plan: %s)", tpl.Name, plan.AnimalID, plan.ID)

	return &Assignment{Plan: plan, Operation: *op}, nil
}

func (s *Service) removeUnseeded(ctx context.Context, planID string) {
	unlock := s.locker.Lock(planID)
	defer unlock()

	if err := s.repo.DeletePlan(ctx, planID); err != nil {
		s.logger.Errorf("could not remove unseeded plan %s: %s", planID, err)
	}
}

// completeAttempts bounds the retries when the plan moves while being completed.
const completeAttempts = 3

// Complete marks a plan as completed. Completing an already completed plan keeps its
// original completion date.
func (s *Service) Complete(ctx context.Context, planID string) (*model.AssignedPlan, error) {
	unlock := s.locker.Lock(planID)
	defer unlock()

	for attempt := 1; ; attempt++ {
		plan, err := s.Get(ctx, planID)
		if err != nil {
			return nil, err
		}
		if plan.IsCompleted {
			return plan, nil
		}

		today := s.clock.Today()
		completed := *plan
		completed.IsCompleted = true
		completed.CompletedDate = &today
		err = s.repo.AdvancePlan(ctx, completed, plan.CurrentStep)
		if err == nil {
			s.metrics.IncPlanTransition(ctx, "manually_completed")
			s.logger.Infof("plan %s manually completed", plan.ID)
			return &completed, nil
		}
		if !errors.Is(err, model.ErrConflict) || attempt >= completeAttempts {
			return nil, fmt.Errorf("could not complete plan: %w", err)
		}
		s.logger.Debugf("plan %s moved while completing, retrying", plan.ID)
	}
}

// Delete deletes a plan and all its scheduled operations.
func (s *Service) Delete(ctx context.Context, planID string) error {
	unlock := s.locker.Lock(planID)
	defer unlock()

	if err := s.repo.DeletePlan(ctx, planID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("plan not found: %s: %w", planID, model.ErrNotFound)
		}
		return fmt.Errorf("could not delete plan: %w", err)
	}

	s.logger.Infof("deleted plan: %s", planID)
	return nil
}

// Get returns a plan.
func (s *Service) Get(ctx context.Context, planID string) (*model.AssignedPlan, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("plan not found: %s: %w", planID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get plan: %w", err)
	}
	return plan, nil
}

// List returns the plans matching the filter ordered by start date.
func (s *Service) List(ctx context.Context, filter model.PlanFilter) ([]model.AssignedPlan, error) {
	plans, err := s.repo.ListPlans(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not list plans: %w", err)
	}
	return plans, nil
}
