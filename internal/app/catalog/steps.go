package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/herdops/internal/model"
)

// CreateStepRequest represents the step creation parameters.
type CreateStepRequest struct {
	TemplateID        string
	OperationType     model.OperationType
	Name              string
	DaysAfterPrevious int
	// Condition defaults to ALWAYS.
	Condition     model.StepCondition
	ChangeStatus  string
	ChangeGroupID string
	SortOrder     int
}

// CreateStep adds a step to an existing template.
func (s *Service) CreateStep(ctx context.Context, req CreateStepRequest) (*model.OperationStep, error) {
	step := model.OperationStep{
		ID:                model.NewID(),
		TemplateID:        req.TemplateID,
		OperationType:     req.OperationType,
		Name:              req.Name,
		DaysAfterPrevious: req.DaysAfterPrevious,
		Condition:         req.Condition,
		ChangeStatus:      req.ChangeStatus,
		ChangeGroupID:     req.ChangeGroupID,
		SortOrder:         req.SortOrder,
	}
	step.Defaults()
	if err := step.Validate(); err != nil {
		return nil, err
	}

	// A missing owner is reported by the repository as a validation error.
	if err := s.repo.CreateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("could not create step: %w", err)
	}

	s.logger.Debugf("created step %q (ID: %s) on template %s", step.Name, step.ID, step.TemplateID)
	return &step, nil
}

// UpdateStepRequest represents a partial step update, nil fields are kept.
type UpdateStepRequest struct {
	ID                string
	OperationType     *model.OperationType
	Name              *string
	DaysAfterPrevious *int
	Condition         *model.StepCondition
	ChangeStatus      *string
	ChangeGroupID     *string
	SortOrder         *int
}

// UpdateStep applies a partial update to a step. Already scheduled operations are not touched.
func (s *Service) UpdateStep(ctx context.Context, req UpdateStepRequest) (*model.OperationStep, error) {
	step, err := s.repo.GetStep(ctx, req.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("step not found: %s: %w", req.ID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get step: %w", err)
	}

	if req.OperationType != nil {
		step.OperationType = *req.OperationType
	}
	if req.Name != nil {
		step.Name = *req.Name
	}
	if req.DaysAfterPrevious != nil {
		step.DaysAfterPrevious = *req.DaysAfterPrevious
	}
	if req.Condition != nil {
		step.Condition = *req.Condition
	}
	if req.ChangeStatus != nil {
		step.ChangeStatus = *req.ChangeStatus
	}
	if req.ChangeGroupID != nil {
		step.ChangeGroupID = *req.ChangeGroupID
	}
	if req.SortOrder != nil {
		step.SortOrder = *req.SortOrder
	}
	step.Defaults()
	if err := step.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStep(ctx, *step); err != nil {
		return nil, fmt.Errorf("could not update step: %w", err)
	}

	s.logger.Debugf("updated step: %s", step.ID)
	return step, nil
}

// DeleteStep deletes a step. Already scheduled operations are not touched.
func (s *Service) DeleteStep(ctx context.Context, id string) error {
	if err := s.repo.DeleteStep(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("step not found: %s: %w", id, model.ErrNotFound)
		}
		return fmt.Errorf("could not delete step: %w", err)
	}

	s.logger.Debugf("deleted step: %s", id)
	return nil
}

// ListSteps returns the template steps in execution order.
func (s *Service) ListSteps(ctx context.Context, templateID string) ([]model.OperationStep, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	steps, err := s.repo.ListSteps(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("could not list steps: %w", err)
	}
	return steps, nil
}

// ImportTemplate creates a template and all its steps from a definition. If a step
// can't be created the template is removed.
func (s *Service) ImportTemplate(ctx context.Context, def model.TemplateDefinition) (*model.OperationTemplate, []model.OperationStep, error) {
	if len(def.Steps) == 0 {
		return nil, nil, fmt.Errorf("template has no steps: %w", model.ErrNotValid)
	}

	tpl, err := s.CreateTemplate(ctx, CreateTemplateRequest{
		Name:        def.Template.Name,
		Description: def.Template.Description,
		IsActive:    def.Template.IsActive,
		CreatedByID: def.Template.CreatedByID,
	})
	if err != nil {
		return nil, nil, err
	}

	steps := make([]model.OperationStep, 0, len(def.Steps))
	for i, ds := range def.Steps {
		step, err := s.CreateStep(ctx, CreateStepRequest{
			TemplateID:        tpl.ID,
			OperationType:     ds.OperationType,
			Name:              ds.Name,
			DaysAfterPrevious: ds.DaysAfterPrevious,
			Condition:         ds.Condition,
			ChangeStatus:      ds.ChangeStatus,
			ChangeGroupID:     ds.ChangeGroupID,
			SortOrder:         ds.SortOrder,
		})
		if err != nil {
			if derr := s.repo.DeleteTemplate(ctx, tpl.ID); derr != nil {
				s.logger.Errorf("could not remove partially imported template %s: %s", tpl.ID, derr)
			}
			return nil, nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, *step)
	}

	s.logger.Infof("imported template: %s (ID: %s) with %d steps", tpl.Name, tpl.ID, len(steps))
	return tpl, steps, nil
}
