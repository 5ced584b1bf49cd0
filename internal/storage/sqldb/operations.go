package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/herdops/internal/model"
)

const operationColumns = `
	id, plan_id, step_id, animal_id, operation_type,
	scheduled_date, is_completed, completed_date, result`

// CreateOperation creates a new scheduled operation for an existing plan.
func (r *Repository) CreateOperation(ctx context.Context, o model.ScheduledOperation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := r.exists(ctx, tx, `SELECT 1 FROM assigned_plans WHERE id = ?`, o.PlanID)
		if err != nil {
			return fmt.Errorf("could not check operation plan: %w", err)
		}
		if !ok {
			return fmt.Errorf("operation plan %s does not exist: %w", o.PlanID, model.ErrNotValid)
		}

		query := `
			INSERT INTO scheduled_operations (` + operationColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = r.exec(ctx, tx, query,
			o.ID,
			o.PlanID,
			o.StepID,
			o.AnimalID,
			string(o.OperationType),
			o.ScheduledDate.String(),
			o.IsCompleted,
			nullDate(o.CompletedDate),
			string(o.Result),
		)
		if err != nil {
			if r.dialect.IsUniqueViolation(err) {
				return fmt.Errorf("operation with id %s: %w", o.ID, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert operation: %w", err)
		}

		r.logger.Debugf("Created operation in repository: %s", o.ID)
		return nil
	})
}

// GetOperation retrieves an operation by ID.
func (r *Repository) GetOperation(ctx context.Context, id string) (*model.ScheduledOperation, error) {
	if err := model.ValidateID("operation id", id); err != nil {
		return nil, err
	}

	query := `SELECT ` + operationColumns + ` FROM scheduled_operations WHERE id = ?`

	o, err := scanOperation(r.queryRow(ctx, r.db, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operation %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query operation: %w", err)
	}

	return &o, nil
}

// ListOperations returns the operations matching the filter.
func (r *Repository) ListOperations(ctx context.Context, filter model.OperationFilter) ([]model.ScheduledOperation, error) {
	var where []string
	var args []any
	if filter.PlanID != "" {
		where = append(where, "plan_id = ?")
		args = append(args, filter.PlanID)
	}
	if filter.AnimalID != "" {
		where = append(where, "animal_id = ?")
		args = append(args, filter.AnimalID)
	}
	if filter.Completed != nil {
		where = append(where, "is_completed = ?")
		args = append(args, *filter.Completed)
	}
	// Dates are stored as YYYY-MM-DD so text comparison is chronological.
	if filter.ScheduledBefore != nil {
		where = append(where, "scheduled_date < ?")
		args = append(args, filter.ScheduledBefore.String())
	}
	if filter.ScheduledOn != nil {
		where = append(where, "scheduled_date = ?")
		args = append(args, filter.ScheduledOn.String())
	}
	if filter.ScheduledAfter != nil {
		where = append(where, "scheduled_date > ?")
		args = append(args, filter.ScheduledAfter.String())
	}
	if filter.ScheduledUntil != nil {
		where = append(where, "scheduled_date <= ?")
		args = append(args, filter.ScheduledUntil.String())
	}

	query := `SELECT ` + operationColumns + ` FROM scheduled_operations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY scheduled_date ASC, seq ASC`

	rows, err := r.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query operations: %w", err)
	}
	defer rows.Close()

	ops := []model.ScheduledOperation{}
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ops = append(ops, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ops, nil
}

// UpdateOperation updates an existing operation.
func (r *Repository) UpdateOperation(ctx context.Context, o model.ScheduledOperation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}

	query := `
		UPDATE scheduled_operations
		SET
			plan_id = ?,
			step_id = ?,
			animal_id = ?,
			operation_type = ?,
			scheduled_date = ?,
			is_completed = ?,
			completed_date = ?,
			result = ?
		WHERE id = ?
	`
	res, err := r.exec(ctx, r.db, query,
		o.PlanID,
		o.StepID,
		o.AnimalID,
		string(o.OperationType),
		o.ScheduledDate.String(),
		o.IsCompleted,
		nullDate(o.CompletedDate),
		string(o.Result),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update operation: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("operation %s: %w", o.ID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated operation in repository: %s", o.ID)
	return nil
}

// CompleteOperation stores the completion of a pending operation.
func (r *Repository) CompleteOperation(ctx context.Context, o model.ScheduledOperation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}
	if !o.IsCompleted {
		return fmt.Errorf("operation %s is not completed: %w", o.ID, model.ErrNotValid)
	}

	query := `
		UPDATE scheduled_operations
		SET
			is_completed = ?,
			completed_date = ?,
			result = ?
		WHERE id = ? AND is_completed = ?
	`
	res, err := r.exec(ctx, r.db, query,
		true,
		nullDate(o.CompletedDate),
		string(o.Result),
		o.ID,
		false,
	)
	if err != nil {
		return fmt.Errorf("could not complete operation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		ok, err := r.exists(ctx, r.db, `SELECT 1 FROM scheduled_operations WHERE id = ?`, o.ID)
		if err != nil {
			return fmt.Errorf("could not check operation: %w", err)
		}
		if !ok {
			return fmt.Errorf("operation %s: %w", o.ID, model.ErrNotFound)
		}
		return fmt.Errorf("operation %s is already completed: %w", o.ID, model.ErrConflict)
	}

	r.logger.Debugf("Completed operation in repository: %s", o.ID)
	return nil
}

func scanOperation(s scanner) (model.ScheduledOperation, error) {
	var o model.ScheduledOperation
	var opType, scheduledDate, result string
	var completedDate sql.NullString

	err := s.Scan(
		&o.ID,
		&o.PlanID,
		&o.StepID,
		&o.AnimalID,
		&opType,
		&scheduledDate,
		&o.IsCompleted,
		&completedDate,
		&result,
	)
	if err != nil {
		return model.ScheduledOperation{}, err
	}

	o.OperationType = model.OperationType(opType)
	o.Result = model.Result(result)
	o.ScheduledDate, err = model.ParseDate(scheduledDate)
	if err != nil {
		return model.ScheduledOperation{}, fmt.Errorf("invalid scheduled date: %w", err)
	}
	o.CompletedDate, err = dateFromNull(completedDate)
	if err != nil {
		return model.ScheduledOperation{}, fmt.Errorf("invalid completed date: %w", err)
	}

	return o, nil
}
