package animal

import (
	"context"

	"github.com/slok/herdops/internal/model"
)

//go:generate mockery --case underscore --output animalmock --outpkg animalmock --name Registry --structname MockRegistry --filename mocks.go

// Registry is the external animal registry the engine applies step side effects to.
type Registry interface {
	// SetStatus sets the animal status.
	SetStatus(ctx context.Context, animalID, status string) error
	// SetGroup moves the animal to a group.
	SetGroup(ctx context.Context, animalID, groupID string) error
}

// Store is a registry that also owns the animal records.
type Store interface {
	Registry
	CreateAnimal(ctx context.Context, a model.Animal) error
	GetAnimal(ctx context.Context, id string) (*model.Animal, error)
	// ListAnimals returns the animals ordered by ID.
	ListAnimals(ctx context.Context) ([]model.Animal, error)
}

// Noop is a registry that accepts every change and does nothing.
const Noop = noop(0)

type noop int

func (noop) SetStatus(ctx context.Context, animalID, status string) error { return nil }
func (noop) SetGroup(ctx context.Context, animalID, groupID string) error { return nil }
