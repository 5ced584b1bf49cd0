package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a new canonical UUIDv4 identifier.
func NewID() string {
	for {
		u, err := uuid.NewRandom()
		if err != nil {
			continue
		}
		id := u.String()
		if ValidID(id) {
			return id
		}
	}
}

// ValidID reports whether id is a UUID in canonical (lower-case, hyphenated) text form.
func ValidID(id string) bool {
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.String() == id
}

// ValidateID checks id is a canonical uuid, naming field in the error.
func ValidateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s is required: %w", field, ErrNotValid)
	}
	if !ValidID(id) {
		return fmt.Errorf("%s %q is not a canonical uuid: %w", field, id, ErrNotValid)
	}
	return nil
}
