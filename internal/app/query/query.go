package query

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
)

// ServiceConfig is the configuration for the query service.
type ServiceConfig struct {
	Repository storage.OperationRepository
	Clock      clock.Clock
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Clock == nil {
		c.Clock = clock.NewSystem(time.UTC)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Query"})

	return nil
}

// Service answers read only questions about the scheduled operations.
type Service struct {
	repo   storage.OperationRepository
	clock  clock.Clock
	logger log.Logger
}

// NewService creates a new query service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}, nil
}

// OverdueOperations returns the pending operations scheduled before today.
func (s *Service) OverdueOperations(ctx context.Context) ([]model.ScheduledOperation, error) {
	today := s.clock.Today()
	return s.list(ctx, model.OperationFilter{Completed: ptr(false), ScheduledBefore: &today})
}

// TodayOperations returns the pending operations scheduled for today.
func (s *Service) TodayOperations(ctx context.Context) ([]model.ScheduledOperation, error) {
	today := s.clock.Today()
	return s.list(ctx, model.OperationFilter{Completed: ptr(false), ScheduledOn: &today})
}

// UpcomingOperations returns the pending operations scheduled after today and up to
// the given number of days ahead.
func (s *Service) UpcomingOperations(ctx context.Context, days int) ([]model.ScheduledOperation, error) {
	if days < 0 {
		return nil, fmt.Errorf("days must be zero or positive: %w", model.ErrNotValid)
	}
	today := s.clock.Today()
	until := today.AddDays(days)
	return s.list(ctx, model.OperationFilter{Completed: ptr(false), ScheduledAfter: &today, ScheduledUntil: &until})
}

// OperationsForAnimal returns every operation of the animal, completed included.
func (s *Service) OperationsForAnimal(ctx context.Context, animalID string) ([]model.ScheduledOperation, error) {
	if animalID == "" {
		return nil, fmt.Errorf("animal id is required: %w", model.ErrNotValid)
	}
	return s.list(ctx, model.OperationFilter{AnimalID: animalID})
}

// OperationsForPlan returns every operation of the plan, completed included.
func (s *Service) OperationsForPlan(ctx context.Context, planID string) ([]model.ScheduledOperation, error) {
	if planID == "" {
		return nil, fmt.Errorf("plan id is required: %w", model.ErrNotValid)
	}
	return s.list(ctx, model.OperationFilter{PlanID: planID})
}

func (s *Service) list(ctx context.Context, f model.OperationFilter) ([]model.ScheduledOperation, error) {
	ops, err := s.repo.ListOperations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("could not list operations: %w", err)
	}
	return ops, nil
}

func ptr[T any](v T) *T { return &v }
