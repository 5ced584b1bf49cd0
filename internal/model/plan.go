package model

import "fmt"

// AssignedPlan is one animal's run through a template.
type AssignedPlan struct {
	ID         string
	TemplateID string
	AnimalID   string
	StartDate  Date
	// CurrentStep is the index, in the template's ordered step list, of the last
	// step an operation was created for.
	CurrentStep   int
	IsCompleted   bool
	CompletedDate *Date
}

// Validate validates the plan.
func (p *AssignedPlan) Validate() error {
	if err := ValidateID("plan id", p.ID); err != nil {
		return err
	}
	if err := ValidateID("plan template id", p.TemplateID); err != nil {
		return err
	}
	if p.AnimalID == "" {
		return fmt.Errorf("plan animal id is required: %w", ErrNotValid)
	}
	if err := validateDate("plan start date", p.StartDate); err != nil {
		return err
	}
	if err := validateOptionalDate("plan completed date", p.CompletedDate); err != nil {
		return err
	}
	if p.CurrentStep < 0 {
		return fmt.Errorf("plan current step must be zero or positive: %w", ErrNotValid)
	}
	if p.IsCompleted && p.CompletedDate == nil {
		return fmt.Errorf("completed plan requires a completion date: %w", ErrNotValid)
	}
	return nil
}
