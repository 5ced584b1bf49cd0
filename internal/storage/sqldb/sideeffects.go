package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slok/herdops/internal/model"
)

const failureColumns = `
	id, operation_id, plan_id, animal_id, kind,
	value, error, attempts, created_at, resolved_at`

// CreateSideEffectFailure stores a failed side effect.
func (r *Repository) CreateSideEffectFailure(ctx context.Context, f model.SideEffectFailure) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid side effect failure: %w", err)
	}

	query := `
		INSERT INTO side_effect_failures (` + failureColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, r.db, query,
		f.ID,
		f.OperationID,
		f.PlanID,
		f.AnimalID,
		string(f.Kind),
		f.Value,
		f.Error,
		f.Attempts,
		f.CreatedAt.Unix(),
		nullUnix(f.ResolvedAt),
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("side effect failure with id %s: %w", f.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert side effect failure: %w", err)
	}

	r.logger.Debugf("Created side effect failure in repository: %s", f.ID)
	return nil
}

// ListSideEffectFailures returns the stored failures ordered by ID (creation order).
func (r *Repository) ListSideEffectFailures(ctx context.Context, pendingOnly bool) ([]model.SideEffectFailure, error) {
	query := `SELECT ` + failureColumns + ` FROM side_effect_failures`
	if pendingOnly {
		query += ` WHERE resolved_at IS NULL`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.query(ctx, r.db, query)
	if err != nil {
		return nil, fmt.Errorf("could not query side effect failures: %w", err)
	}
	defer rows.Close()

	failures := []model.SideEffectFailure{}
	for rows.Next() {
		f, err := scanFailure(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return failures, nil
}

// UpdateSideEffectFailure updates a stored failure.
func (r *Repository) UpdateSideEffectFailure(ctx context.Context, f model.SideEffectFailure) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid side effect failure: %w", err)
	}

	query := `
		UPDATE side_effect_failures
		SET
			error = ?,
			attempts = ?,
			resolved_at = ?
		WHERE id = ?
	`
	res, err := r.exec(ctx, r.db, query,
		f.Error,
		f.Attempts,
		nullUnix(f.ResolvedAt),
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update side effect failure: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("side effect failure %s: %w", f.ID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated side effect failure in repository: %s", f.ID)
	return nil
}

func scanFailure(s scanner) (model.SideEffectFailure, error) {
	var f model.SideEffectFailure
	var kind string
	var createdAt int64
	var resolvedAt sql.NullInt64

	err := s.Scan(
		&f.ID,
		&f.OperationID,
		&f.PlanID,
		&f.AnimalID,
		&kind,
		&f.Value,
		&f.Error,
		&f.Attempts,
		&createdAt,
		&resolvedAt,
	)
	if err != nil {
		return model.SideEffectFailure{}, err
	}

	f.Kind = model.SideEffectKind(kind)
	f.CreatedAt = timeFromUnix(createdAt)
	f.ResolvedAt = nullTime(resolvedAt)
	return f, nil
}
