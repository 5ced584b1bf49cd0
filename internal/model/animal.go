package model

import "fmt"

// Animal is the registry view of an animal that the engine side effects touch.
type Animal struct {
	ID      string
	Status  string
	GroupID string
}

// Validate validates the animal.
func (a *Animal) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("animal id is required: %w", ErrNotValid)
	}
	return nil
}
