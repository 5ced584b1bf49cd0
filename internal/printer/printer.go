package printer

import "github.com/slok/herdops/internal/model"

// Printer knows how to print herdops information in different formats.
type Printer interface {
	PrintTemplates(templates []model.OperationTemplate) error
	PrintTemplate(template model.OperationTemplate, steps []model.OperationStep) error
	PrintPlans(plans []model.AssignedPlan) error
	PrintPlan(plan model.AssignedPlan, ops []model.ScheduledOperation) error
	PrintOperations(ops []model.ScheduledOperation) error
	PrintCompletion(c Completion) error
	PrintBulk(rows []BulkRow) error
	PrintSideEffectFailures(failures []model.SideEffectFailure) error
	PrintAnimals(animals []model.Animal) error
	PrintMessage(msg string) error
}

// Completion is the outcome of completing an operation.
type Completion struct {
	Operation model.ScheduledOperation
	Outcome   string
	Next      *model.ScheduledOperation
	Warnings  []model.SideEffectFailure
}

// BulkRow is the per-animal result of a bulk assignment.
type BulkRow struct {
	AnimalID    string
	PlanID      string
	OperationID string
	Err         error
}
