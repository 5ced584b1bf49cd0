package fake

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/model"
)

var _ animal.Store = (*Registry)(nil)

// Change is a registry change applied to an animal.
type Change struct {
	AnimalID string
	Kind     model.SideEffectKind
	Value    string
}

// Registry is an in-memory animal registry that records every change.
// Errors and latency can be injected to exercise failure handling.
type Registry struct {
	mu      sync.Mutex
	animals map[string]*model.Animal
	changes []Change
	failing map[model.SideEffectKind]error
	latency time.Duration
}

// NewRegistry returns a new fake registry. Unknown animals are created on first change.
func NewRegistry() *Registry {
	return &Registry{
		animals: map[string]*model.Animal{},
		failing: map[model.SideEffectKind]error{},
	}
}

// FailWith makes every change of kind fail with err until cleared with a nil error.
func (r *Registry) FailWith(kind model.SideEffectKind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failing, kind)
		return
	}
	r.failing[kind] = err
}

// SetLatency delays every change by d, honoring context cancellation.
func (r *Registry) SetLatency(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latency = d
}

func (r *Registry) SetStatus(ctx context.Context, animalID, status string) error {
	return r.apply(ctx, Change{AnimalID: animalID, Kind: model.SideEffectKindStatus, Value: status})
}

func (r *Registry) SetGroup(ctx context.Context, animalID, groupID string) error {
	return r.apply(ctx, Change{AnimalID: animalID, Kind: model.SideEffectKindGroup, Value: groupID})
}

func (r *Registry) apply(ctx context.Context, c Change) error {
	r.mu.Lock()
	latency := r.latency
	r.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("registry change canceled: %w", ctx.Err())
		case <-time.After(latency):
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failing[c.Kind]; err != nil {
		return err
	}

	a, ok := r.animals[c.AnimalID]
	if !ok {
		a = &model.Animal{ID: c.AnimalID}
		r.animals[c.AnimalID] = a
	}
	switch c.Kind {
	case model.SideEffectKindStatus:
		a.Status = c.Value
	case model.SideEffectKindGroup:
		a.GroupID = c.Value
	}
	r.changes = append(r.changes, c)

	return nil
}

// CreateAnimal registers a new animal.
func (r *Registry) CreateAnimal(_ context.Context, a model.Animal) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid animal: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.animals[a.ID]; ok {
		return fmt.Errorf("animal with id %s: %w", a.ID, model.ErrAlreadyExists)
	}
	r.animals[a.ID] = &a
	return nil
}

// GetAnimal returns an animal by ID.
func (r *Registry) GetAnimal(_ context.Context, id string) (*model.Animal, error) {
	a, ok := r.Animal(id)
	if !ok {
		return nil, fmt.Errorf("animal %s: %w", id, model.ErrNotFound)
	}
	return &a, nil
}

// ListAnimals returns the known animals ordered by ID.
func (r *Registry) ListAnimals(_ context.Context) ([]model.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	animals := make([]model.Animal, 0, len(r.animals))
	for _, a := range r.animals {
		animals = append(animals, *a)
	}
	sort.Slice(animals, func(i, j int) bool { return animals[i].ID < animals[j].ID })
	return animals, nil
}

// Animal returns the current view of an animal.
func (r *Registry) Animal(id string) (model.Animal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.animals[id]
	if !ok {
		return model.Animal{}, false
	}
	return *a, true
}

// Changes returns the applied changes in order.
func (r *Registry) Changes() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change{}, r.changes...)
}
