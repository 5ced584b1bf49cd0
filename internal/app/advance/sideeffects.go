package advance

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/model"
)

// applySideEffects calls the animal registry for the changes the step declares. Failures
// don't stop the completion, they are recorded for reconciliation and returned as warnings.
func (s *Service) applySideEffects(ctx context.Context, op model.ScheduledOperation, step model.OperationStep) []model.SideEffectFailure {
	var warnings []model.SideEffectFailure

	if step.ChangeStatus != "" {
		err := s.call(ctx, func(ctx context.Context) error {
			return s.registry.SetStatus(ctx, op.AnimalID, step.ChangeStatus)
		})
		if err != nil {
			warnings = append(warnings, s.recordFailure(ctx, op, model.SideEffectKindStatus, step.ChangeStatus, err))
		}
	}

	if step.ChangeGroupID != "" {
		err := s.call(ctx, func(ctx context.Context) error {
			return s.registry.SetGroup(ctx, op.AnimalID, step.ChangeGroupID)
		})
		if err != nil {
			warnings = append(warnings, s.recordFailure(ctx, op, model.SideEffectKindGroup, step.ChangeGroupID, err))
		}
	}

	return warnings
}

func (s *Service) call(ctx context.Context, f func(ctx context.Context) error) error {
	return animal.CallWithTimeout(ctx, s.seTimeout, f)
}

func (s *Service) recordFailure(ctx context.Context, op model.ScheduledOperation, kind model.SideEffectKind, value string, cause error) model.SideEffectFailure {
	f := model.SideEffectFailure{
		ID:          ulid.Make().String(),
		OperationID: op.ID,
		PlanID:      op.PlanID,
		AnimalID:    op.AnimalID,
		Kind:        kind,
		Value:       value,
		Error:       cause.Error(),
		Attempts:    1,
		CreatedAt:   s.clock.Now().UTC().Truncate(time.Second),
	}

	s.metrics.IncSideEffectFailure(ctx, kind)
	s.logger.Warningf("side effect failed, queued for reconciliation: %s", f)

	if err := s.repo.CreateSideEffectFailure(ctx, f); err != nil {
		s.logger.Errorf("could not record side effect failure %s: %s", f.ID, err)
	}

	return f
}
