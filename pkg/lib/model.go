package lib

import (
	"time"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/app/advance"
	"github.com/slok/herdops/internal/app/catalog"
	"github.com/slok/herdops/internal/app/plan"
	"github.com/slok/herdops/internal/app/reconcile"
	"github.com/slok/herdops/internal/model"
)

// Backend identifies the persistence backend of a client.
type Backend string

const (
	// BackendSQLite stores everything in a local SQLite database file.
	BackendSQLite Backend = "sqlite"
	// BackendPostgres stores everything in a PostgreSQL database.
	BackendPostgres Backend = "postgres"
	// BackendMemory keeps everything in memory, lost when the client is closed.
	// Useful for tests and dry runs.
	BackendMemory Backend = "memory"
)

// Date is a calendar date without time of day, textual form YYYY-MM-DD.
type Date = model.Date

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) { return model.ParseDate(s) }

// NewDate returns the date of the given year, month and day.
func NewDate(year int, month time.Month, day int) Date { return model.NewDate(year, month, day) }

// OperationType is the kind of farm operation a step produces.
type OperationType = model.OperationType

const (
	OperationTypeInsemination  = model.OperationTypeInsemination
	OperationTypePregnancyTest = model.OperationTypePregnancyTest
	OperationTypeGroupChange   = model.OperationTypeGroupChange
	OperationTypeStatusChange  = model.OperationTypeStatusChange
	OperationTypeCalving       = model.OperationTypeCalving
)

// StepCondition is the result a step requires from the previous operation to be eligible.
type StepCondition = model.StepCondition

const (
	StepConditionAlways   = model.StepConditionAlways
	StepConditionPositive = model.StepConditionPositive
	StepConditionNegative = model.StepConditionNegative
)

// Result is the outcome recorded when completing an operation. Empty means absent.
type Result = model.Result

const (
	ResultPositive = model.ResultPositive
	ResultNegative = model.ResultNegative
)

// Template is a reusable protocol made of ordered steps.
type Template = model.OperationTemplate

// Step is one stage of a template.
type Step = model.OperationStep

// TemplateDefinition is a template with its steps, as imported from a protocol file.
type TemplateDefinition = model.TemplateDefinition

// Plan is one animal's run through a template.
type Plan = model.AssignedPlan

// PlanFilter filters listed plans. Zero values match everything.
type PlanFilter = model.PlanFilter

// Operation is a dated task materialized from a plan step.
type Operation = model.ScheduledOperation

// Animal is the registry view of an animal.
type Animal = model.Animal

// SideEffectFailure is an animal registry change that failed and waits for reconciliation.
type SideEffectFailure = model.SideEffectFailure

// AnimalRegistry is the external animal registry step side effects are applied to.
type AnimalRegistry = animal.Registry

// Request and result types of the client operations.
type (
	CreateTemplateRequest = catalog.CreateTemplateRequest
	UpdateTemplateRequest = catalog.UpdateTemplateRequest
	CreateStepRequest     = catalog.CreateStepRequest
	UpdateStepRequest     = catalog.UpdateStepRequest
	AssignRequest         = plan.AssignRequest
	Assignment            = plan.Assignment
	AssignBulkRequest     = plan.AssignBulkRequest
	BulkResult            = plan.BulkResult
	BulkItem              = plan.BulkItem
	CompleteRequest       = advance.CompleteRequest
	AdvanceRequest        = advance.AdvanceRequest
	AdvanceResult         = advance.Result
	Outcome               = advance.Outcome
	RetryResult           = reconcile.RetryResult
)

const (
	OutcomeAdvanced      = advance.OutcomeAdvanced
	OutcomePlanCompleted = advance.OutcomePlanCompleted
)

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = model.ErrNotFound
	// ErrAlreadyExists is returned when a resource with the same identifier already exists.
	ErrAlreadyExists = model.ErrAlreadyExists
	// ErrNotValid is returned on invalid input or operation (e.g. assigning an empty template).
	ErrNotValid = model.ErrNotValid
	// ErrConflict is returned when a state transition collides with the current state
	// (e.g. completing an operation twice).
	ErrConflict = model.ErrConflict
)
