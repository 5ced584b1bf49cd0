package model

import "fmt"

// Result is the outcome recorded when an operation is completed.
type Result string

const (
	// ResultNone means no result was recorded.
	ResultNone     Result = ""
	ResultPositive Result = "POSITIVE"
	ResultNegative Result = "NEGATIVE"
)

// Valid reports whether the result is a known one (absent included).
func (r Result) Valid() bool {
	switch r {
	case ResultNone, ResultPositive, ResultNegative:
		return true
	}
	return false
}

// ScheduledOperation is a concrete dated task materialized from a plan step.
type ScheduledOperation struct {
	ID       string
	PlanID   string
	StepID   string
	AnimalID string
	// OperationType is a snapshot of the step's type at creation time.
	OperationType OperationType
	ScheduledDate Date
	IsCompleted   bool
	CompletedDate *Date
	Result        Result
}

// Validate validates the operation.
func (o *ScheduledOperation) Validate() error {
	if err := ValidateID("operation id", o.ID); err != nil {
		return err
	}
	if err := ValidateID("operation plan id", o.PlanID); err != nil {
		return err
	}
	if err := ValidateID("operation step id", o.StepID); err != nil {
		return err
	}
	if o.AnimalID == "" {
		return fmt.Errorf("operation animal id is required: %w", ErrNotValid)
	}
	if !o.OperationType.Valid() {
		return fmt.Errorf("unknown operation type %q: %w", o.OperationType, ErrNotValid)
	}
	if err := validateDate("operation scheduled date", o.ScheduledDate); err != nil {
		return err
	}
	if err := validateOptionalDate("operation completed date", o.CompletedDate); err != nil {
		return err
	}
	if !o.Result.Valid() {
		return fmt.Errorf("unknown operation result %q: %w", o.Result, ErrNotValid)
	}
	if o.IsCompleted && o.CompletedDate == nil {
		return fmt.Errorf("completed operation requires a completion date: %w", ErrNotValid)
	}
	return nil
}

// OperationFilter selects scheduled operations. Zero fields don't filter.
type OperationFilter struct {
	PlanID   string
	AnimalID string
	// Completed filters by completion state when set.
	Completed *bool
	// ScheduledBefore keeps operations scheduled strictly before the date.
	ScheduledBefore *Date
	// ScheduledOn keeps operations scheduled exactly on the date.
	ScheduledOn *Date
	// ScheduledAfter keeps operations scheduled strictly after the date.
	ScheduledAfter *Date
	// ScheduledUntil keeps operations scheduled on or before the date.
	ScheduledUntil *Date
}

// Match reports whether the operation passes the filter.
func (f OperationFilter) Match(o ScheduledOperation) bool {
	if f.PlanID != "" && o.PlanID != f.PlanID {
		return false
	}
	if f.AnimalID != "" && o.AnimalID != f.AnimalID {
		return false
	}
	if f.Completed != nil && o.IsCompleted != *f.Completed {
		return false
	}
	if f.ScheduledBefore != nil && !o.ScheduledDate.Before(*f.ScheduledBefore) {
		return false
	}
	if f.ScheduledOn != nil && !o.ScheduledDate.Equal(*f.ScheduledOn) {
		return false
	}
	if f.ScheduledAfter != nil && !o.ScheduledDate.After(*f.ScheduledAfter) {
		return false
	}
	if f.ScheduledUntil != nil && o.ScheduledDate.After(*f.ScheduledUntil) {
		return false
	}
	return true
}

// PlanFilter selects assigned plans. Zero fields don't filter.
type PlanFilter struct {
	AnimalID   string
	TemplateID string
	ActiveOnly bool
}

// Match reports whether the plan passes the filter.
func (f PlanFilter) Match(p AssignedPlan) bool {
	if f.AnimalID != "" && p.AnimalID != f.AnimalID {
		return false
	}
	if f.TemplateID != "" && p.TemplateID != f.TemplateID {
		return false
	}
	if f.ActiveOnly && p.IsCompleted {
		return false
	}
	return true
}
