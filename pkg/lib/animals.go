package lib

import (
	"context"
	"fmt"
)

// CreateAnimal registers an animal in the built-in animal registry.
//
// Returns [ErrNotValid] when the client was configured with a custom registry.
func (c *Client) CreateAnimal(ctx context.Context, a Animal) error {
	if c.animals == nil {
		return errCustomRegistry
	}
	return c.animals.CreateAnimal(ctx, a)
}

// GetAnimal returns an animal of the built-in animal registry.
func (c *Client) GetAnimal(ctx context.Context, id string) (*Animal, error) {
	if c.animals == nil {
		return nil, errCustomRegistry
	}
	return c.animals.GetAnimal(ctx, id)
}

// ListAnimals returns the animals of the built-in animal registry ordered by ID.
func (c *Client) ListAnimals(ctx context.Context) ([]Animal, error) {
	if c.animals == nil {
		return nil, errCustomRegistry
	}
	return c.animals.ListAnimals(ctx)
}

var errCustomRegistry = fmt.Errorf("animals are managed by the custom registry: %w", ErrNotValid)
