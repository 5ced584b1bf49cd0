package model

import (
	"fmt"
	"time"
)

// SideEffectKind is the animal registry call a step triggers.
type SideEffectKind string

const (
	SideEffectKindStatus SideEffectKind = "status"
	SideEffectKindGroup  SideEffectKind = "group"
)

// SideEffectFailure records an animal registry call that failed while completing an
// operation, kept for reconciliation.
type SideEffectFailure struct {
	ID          string
	OperationID string
	PlanID      string
	AnimalID    string
	Kind        SideEffectKind
	// Value is the status or group id that should have been applied.
	Value      string
	Error      string
	Attempts   int
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Resolved reports whether the side effect finally landed.
func (f SideEffectFailure) Resolved() bool { return f.ResolvedAt != nil }

// Validate validates the failure record.
func (f *SideEffectFailure) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("side effect failure id is required: %w", ErrNotValid)
	}
	if f.AnimalID == "" {
		return fmt.Errorf("side effect failure animal id is required: %w", ErrNotValid)
	}
	switch f.Kind {
	case SideEffectKindStatus, SideEffectKindGroup:
	default:
		return fmt.Errorf("unknown side effect kind %q: %w", f.Kind, ErrNotValid)
	}
	return nil
}

func (f SideEffectFailure) String() string {
	return fmt.Sprintf("%s change to %q for animal %s failed: %s", f.Kind, f.Value, f.AnimalID, f.Error)
}
