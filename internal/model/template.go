package model

import (
	"fmt"
	"time"
)

// OperationType is the kind of farm operation a step produces.
type OperationType string

const (
	OperationTypeInsemination  OperationType = "INSEMINATION"
	OperationTypePregnancyTest OperationType = "PREGNANCY_TEST"
	OperationTypeGroupChange   OperationType = "GROUP_CHANGE"
	OperationTypeStatusChange  OperationType = "STATUS_CHANGE"
	OperationTypeCalving       OperationType = "CALVING"
)

// Valid reports whether the operation type is a known one.
func (t OperationType) Valid() bool {
	switch t {
	case OperationTypeInsemination,
		OperationTypePregnancyTest,
		OperationTypeGroupChange,
		OperationTypeStatusChange,
		OperationTypeCalving:
		return true
	}
	return false
}

// StepCondition gates a step on the result of the previously completed operation.
type StepCondition string

const (
	// StepConditionAlways makes the step eligible regardless of the result.
	StepConditionAlways StepCondition = "ALWAYS"
	// StepConditionPositive makes the step eligible only after a positive result.
	StepConditionPositive StepCondition = "POSITIVE"
	// StepConditionNegative makes the step eligible only after a negative result.
	StepConditionNegative StepCondition = "NEGATIVE"
)

// Valid reports whether the condition is a known one.
func (c StepCondition) Valid() bool {
	switch c {
	case StepConditionAlways, StepConditionPositive, StepConditionNegative:
		return true
	}
	return false
}

// Accepts reports whether a step with this condition is eligible after an
// operation completed with result r.
func (c StepCondition) Accepts(r Result) bool {
	switch c {
	case StepConditionAlways:
		return true
	case StepConditionPositive:
		return r == ResultPositive
	case StepConditionNegative:
		return r == ResultNegative
	}
	return false
}

// OperationTemplate is a reusable protocol made of ordered steps.
type OperationTemplate struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the template.
func (t *OperationTemplate) Validate() error {
	if err := ValidateID("template id", t.ID); err != nil {
		return err
	}
	if t.Name == "" {
		return fmt.Errorf("template name is required: %w", ErrNotValid)
	}
	return nil
}

// MaxDaysAfterPrevious is the largest delay a step can have, ten years.
const MaxDaysAfterPrevious = 3650

// OperationStep is one stage of a template.
type OperationStep struct {
	ID                string
	TemplateID        string
	OperationType     OperationType
	Name              string
	DaysAfterPrevious int
	Condition         StepCondition
	// ChangeStatus is the animal status set when the step's operation completes (optional).
	ChangeStatus string
	// ChangeGroupID is the group the animal is moved to when the step's operation completes (optional).
	ChangeGroupID string
	SortOrder     int
}

// Defaults fills the optional fields with their default values.
func (s *OperationStep) Defaults() {
	if s.Condition == "" {
		s.Condition = StepConditionAlways
	}
}

// Validate validates the step.
func (s *OperationStep) Validate() error {
	if err := ValidateID("step id", s.ID); err != nil {
		return err
	}
	if err := ValidateID("step template id", s.TemplateID); err != nil {
		return err
	}
	if s.Name == "" {
		return fmt.Errorf("step name is required: %w", ErrNotValid)
	}
	if !s.OperationType.Valid() {
		return fmt.Errorf("unknown operation type %q: %w", s.OperationType, ErrNotValid)
	}
	if !s.Condition.Valid() {
		return fmt.Errorf("unknown step condition %q: %w", s.Condition, ErrNotValid)
	}
	if s.DaysAfterPrevious < 0 {
		return fmt.Errorf("days after previous must be zero or positive: %w", ErrNotValid)
	}
	if s.DaysAfterPrevious > MaxDaysAfterPrevious {
		return fmt.Errorf("days after previous must be at most %d: %w", MaxDaysAfterPrevious, ErrNotValid)
	}
	return nil
}

// TemplateDefinition is a whole protocol authored outside the catalog, a template
// and its steps in order. IDs are assigned on import.
type TemplateDefinition struct {
	Template OperationTemplate
	Steps    []OperationStep
}
