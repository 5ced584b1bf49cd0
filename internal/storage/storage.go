package storage

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository --structname MockRepository --filename mocks.go

import (
	"context"

	"github.com/slok/herdops/internal/model"
)

// TemplateRepository persists templates and their steps.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, t model.OperationTemplate) error
	GetTemplate(ctx context.Context, id string) (*model.OperationTemplate, error)
	// ListTemplates returns all templates ordered by name.
	ListTemplates(ctx context.Context) ([]model.OperationTemplate, error)
	UpdateTemplate(ctx context.Context, t model.OperationTemplate) error
	// DeleteTemplate deletes the template and its steps. Plans are not touched.
	DeleteTemplate(ctx context.Context, id string) error

	// CreateStep fails with model.ErrNotValid if the owning template doesn't exist.
	CreateStep(ctx context.Context, s model.OperationStep) error
	GetStep(ctx context.Context, id string) (*model.OperationStep, error)
	// ListSteps returns the template steps ordered by sort order, ties by insertion order.
	ListSteps(ctx context.Context, templateID string) ([]model.OperationStep, error)
	UpdateStep(ctx context.Context, s model.OperationStep) error
	DeleteStep(ctx context.Context, id string) error
}

// PlanRepository persists assigned plans.
type PlanRepository interface {
	CreatePlan(ctx context.Context, p model.AssignedPlan) error
	GetPlan(ctx context.Context, id string) (*model.AssignedPlan, error)
	// ListPlans returns the plans ordered by start date, ties by insertion order.
	ListPlans(ctx context.Context, filter model.PlanFilter) ([]model.AssignedPlan, error)
	UpdatePlan(ctx context.Context, p model.AssignedPlan) error
	// AdvancePlan stores p only if the stored plan is still active at fromStep.
	// It fails with model.ErrConflict otherwise.
	AdvancePlan(ctx context.Context, p model.AssignedPlan, fromStep int) error
	// DeletePlan deletes the plan and all its scheduled operations.
	DeletePlan(ctx context.Context, id string) error
}

// OperationRepository persists scheduled operations.
type OperationRepository interface {
	// CreateOperation fails with model.ErrNotValid if the owning plan doesn't exist.
	CreateOperation(ctx context.Context, o model.ScheduledOperation) error
	GetOperation(ctx context.Context, id string) (*model.ScheduledOperation, error)
	// ListOperations returns the operations ordered by scheduled date, ties by insertion order.
	ListOperations(ctx context.Context, filter model.OperationFilter) ([]model.ScheduledOperation, error)
	UpdateOperation(ctx context.Context, o model.ScheduledOperation) error
	// CompleteOperation stores the completion of o only if the stored operation is
	// still pending. It fails with model.ErrConflict otherwise.
	CompleteOperation(ctx context.Context, o model.ScheduledOperation) error
}

// SideEffectRepository persists failed side effects pending reconciliation.
type SideEffectRepository interface {
	CreateSideEffectFailure(ctx context.Context, f model.SideEffectFailure) error
	// ListSideEffectFailures returns the failures ordered by creation.
	ListSideEffectFailures(ctx context.Context, pendingOnly bool) ([]model.SideEffectFailure, error)
	UpdateSideEffectFailure(ctx context.Context, f model.SideEffectFailure) error
}

// Repository is the full persistence interface the engine works against. Every
// backend must yield the same engine behavior.
type Repository interface {
	TemplateRepository
	PlanRepository
	OperationRepository
	SideEffectRepository
}
