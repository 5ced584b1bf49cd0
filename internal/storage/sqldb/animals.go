package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/model"
)

var _ animal.Store = (*AnimalRegistry)(nil)

// AnimalRegistry is an animal registry backed by the animals table of the same database.
type AnimalRegistry struct {
	repo *Repository
}

// Animals returns the animal registry sharing the repository database.
func (r *Repository) Animals() *AnimalRegistry { return &AnimalRegistry{repo: r} }

// CreateAnimal registers a new animal.
func (a *AnimalRegistry) CreateAnimal(ctx context.Context, an model.Animal) error {
	if err := an.Validate(); err != nil {
		return fmt.Errorf("invalid animal: %w", err)
	}

	r := a.repo
	query := `INSERT INTO animals (id, status, group_id, updated_at) VALUES (?, ?, ?, ?)`
	_, err := r.exec(ctx, r.db, query, an.ID, an.Status, an.GroupID, time.Now().UTC().Unix())
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("animal with id %s: %w", an.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert animal: %w", err)
	}

	r.logger.Debugf("Created animal in registry: %s", an.ID)
	return nil
}

// GetAnimal retrieves an animal by ID.
func (a *AnimalRegistry) GetAnimal(ctx context.Context, id string) (*model.Animal, error) {
	r := a.repo
	var an model.Animal
	err := r.queryRow(ctx, r.db, `SELECT id, status, group_id FROM animals WHERE id = ?`, id).Scan(&an.ID, &an.Status, &an.GroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("animal %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query animal: %w", err)
	}
	return &an, nil
}

// ListAnimals returns all the registered animals ordered by ID.
func (a *AnimalRegistry) ListAnimals(ctx context.Context) ([]model.Animal, error) {
	r := a.repo
	rows, err := r.query(ctx, r.db, `SELECT id, status, group_id FROM animals ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query animals: %w", err)
	}
	defer rows.Close()

	animals := []model.Animal{}
	for rows.Next() {
		var an model.Animal
		if err := rows.Scan(&an.ID, &an.Status, &an.GroupID); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		animals = append(animals, an)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return animals, nil
}

// SetStatus sets the status of a registered animal.
func (a *AnimalRegistry) SetStatus(ctx context.Context, animalID, status string) error {
	return a.set(ctx, animalID, "status", status)
}

// SetGroup moves a registered animal to a group.
func (a *AnimalRegistry) SetGroup(ctx context.Context, animalID, groupID string) error {
	return a.set(ctx, animalID, "group_id", groupID)
}

func (a *AnimalRegistry) set(ctx context.Context, animalID, column, value string) error {
	r := a.repo
	query := `UPDATE animals SET ` + column + ` = ?, updated_at = ? WHERE id = ?`
	res, err := r.exec(ctx, r.db, query, value, time.Now().UTC().Unix(), animalID)
	if err != nil {
		return fmt.Errorf("could not update animal %s: %w", column, err)
	}
	if err := checkAffected(res, fmt.Errorf("animal %s: %w", animalID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated animal %s %s: %s", animalID, column, value)
	return nil
}
