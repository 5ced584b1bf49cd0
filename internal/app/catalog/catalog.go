package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
)

// ServiceConfig is the configuration for the catalog service.
type ServiceConfig struct {
	Repository storage.TemplateRepository
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Catalog"})

	return nil
}

// Service manages the operation templates and their steps.
type Service struct {
	repo   storage.TemplateRepository
	clock  clock.Clock
	logger log.Logger
}

// NewService creates a new catalog service.
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

// CreateTemplateRequest represents the template creation parameters.
type CreateTemplateRequest struct {
	Name        string
	Description string
	IsActive    bool
	CreatedByID string
}

// CreateTemplate creates a new template without steps.
func (s *Service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*model.OperationTemplate, error) {
	now := s.now()
	tpl := model.OperationTemplate{
		ID:          model.NewID(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		CreatedByID: req.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("could not create template: %w", err)
	}

	s.logger.Infof("created template: %s (ID: %s)", tpl.Name, tpl.ID)
	return &tpl, nil
}

// UpdateTemplateRequest represents a partial template update, nil fields are kept.
type UpdateTemplateRequest struct {
	ID          string
	Name        *string
	Description *string
	IsActive    *bool
}

// UpdateTemplate applies a partial update to a template.
func (s *Service) UpdateTemplate(ctx context.Context, req UpdateTemplateRequest) (*model.OperationTemplate, error) {
	tpl, err := s.GetTemplate(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Description != nil {
		tpl.Description = *req.Description
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	tpl.UpdatedAt = s.now()

	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTemplate(ctx, *tpl); err != nil {
		return nil, fmt.Errorf("could not update template: %w", err)
	}

	s.logger.Debugf("updated template: %s", tpl.ID)
	return tpl, nil
}

// DeleteTemplate deletes a template and its steps. Plans already assigned from it are kept.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("template not found: %s: %w", id, model.ErrNotFound)
		}
		return fmt.Errorf("could not delete template: %w", err)
	}

	s.logger.Infof("deleted template: %s", id)
	return nil
}

// GetTemplate returns a template.
func (s *Service) GetTemplate(ctx context.Context, id string) (*model.OperationTemplate, error) {
	tpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("template not found: %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get template: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns the templates ordered by name.
func (s *Service) ListTemplates(ctx context.Context, activeOnly bool) ([]model.OperationTemplate, error) {
	tpls, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list templates: %w", err)
	}
	if !activeOnly {
		return tpls, nil
	}

	active := []model.OperationTemplate{}
	for _, t := range tpls {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Second)
}
