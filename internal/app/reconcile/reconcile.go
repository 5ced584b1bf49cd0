package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/metrics"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
)

// ServiceConfig is the configuration for the reconciliation service.
type ServiceConfig struct {
	Repository        storage.SideEffectRepository
	Registry          animal.Registry
	Clock             clock.Clock
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

	if c.SideEffectTimeout <= 0 {
		c.SideEffectTimeout = 5 * time.Second
	}

	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Reconcile"})

	return nil
}

// Service retries the animal registry changes that failed while completing operations.
type Service struct {
	repo      storage.SideEffectRepository
	registry  animal.Registry
	clock     clock.Clock
	seTimeout time.Duration
	metrics   metrics.Recorder
	logger    log.Logger
}

// NewService creates a new reconciliation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		registry:  cfg.Registry,
		clock:     cfg.Clock,
		seTimeout: cfg.SideEffectTimeout,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}, nil
}

// Pending returns the unresolved side effect failures, oldest first.
func (s *Service) Pending(ctx context.Context) ([]model.SideEffectFailure, error) {
	fs, err := s.repo.ListSideEffectFailures(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("could not list side effect failures: %w", err)
	}
	s.metrics.SetSideEffectsPending(ctx, len(fs))
	return fs, nil
}

// RetryResult summarizes a reconciliation run.
type RetryResult struct {
	Resolved []model.SideEffectFailure
	Failed   []model.SideEffectFailure
}

// Retry re-applies every pending failure. Successes are marked resolved, failures keep
// pending with the attempt counted and the last error.
func (s *Service) Retry(ctx context.Context) (res *RetryResult, err error) {
	defer metrics.Observe(ctx, s.metrics, "reconcile", time.Now(), &err)

	pending, err := s.Pending(ctx)
	if err != nil {
		return nil, err
	}

	res = &RetryResult{Resolved: []model.SideEffectFailure{}, Failed: []model.SideEffectFailure{}}
	for _, f := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f.Attempts++
		if cerr := s.apply(ctx, f); cerr != nil {
			f.Error = cerr.Error()
			res.Failed = append(res.Failed, f)
			s.logger.Warningf("side effect %s still failing after %d attempts: %s", f.ID, f.Attempts, cerr)
		} else {
			now := s.clock.Now().UTC().Truncate(time.Second)
			f.ResolvedAt = &now
			res.Resolved = append(res.Resolved, f)
			s.metrics.IncSideEffectResolved(ctx, f.Kind)
			s.logger.Infof("side effect %s resolved: %s %q for animal %s", f.ID, f.Kind, f.Value, f.AnimalID)
		}

		if err := s.repo.UpdateSideEffectFailure(ctx, f); err != nil {
			return nil, fmt.Errorf("could not update side effect failure %s: %w", f.ID, err)
		}
	}

	s.metrics.SetSideEffectsPending(ctx, len(res.Failed))
	return res, nil
}

func (s *Service) apply(ctx context.Context, f model.SideEffectFailure) error {
	switch f.Kind {
	case model.SideEffectKindStatus:
		return animal.CallWithTimeout(ctx, s.seTimeout, func(ctx context.Context) error {
			return s.registry.SetStatus(ctx, f.AnimalID, f.Value)
		})
	case model.SideEffectKindGroup:
		return animal.CallWithTimeout(ctx, s.seTimeout, func(ctx context.Context) error {
			return s.registry.SetGroup(ctx, f.AnimalID, f.Value)
		})
	}
	return fmt.Errorf("unknown side effect kind %q: %w", f.Kind, model.ErrNotValid)
}
