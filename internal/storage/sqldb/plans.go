package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/herdops/internal/model"
)

const planColumns = `id, template_id, animal_id, start_date, current_step, is_completed, completed_date`

// CreatePlan creates a new plan.
func (r *Repository) CreatePlan(ctx context.Context, p model.AssignedPlan) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	query := `
		INSERT INTO assigned_plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, r.db, query,
		p.ID,
		p.TemplateID,
		p.AnimalID,
		p.StartDate.String(),
		p.CurrentStep,
		p.IsCompleted,
		nullDate(p.CompletedDate),
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("plan with id %s: %w", p.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert plan: %w", err)
	}

	r.logger.Debugf("Created plan in repository: %s", p.ID)
	return nil
}

// GetPlan retrieves a plan by ID.
func (r *Repository) GetPlan(ctx context.Context, id string) (*model.AssignedPlan, error) {
	if err := model.ValidateID("plan id", id); err != nil {
		return nil, err
	}

	query := `SELECT ` + planColumns + ` FROM assigned_plans WHERE id = ?`

	p, err := scanPlan(r.queryRow(ctx, r.db, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query plan: %w", err)
	}

	return &p, nil
}

// ListPlans returns the plans matching the filter.
func (r *Repository) ListPlans(ctx context.Context, filter model.PlanFilter) ([]model.AssignedPlan, error) {
	var where []string
	var args []any
	if filter.AnimalID != "" {
		where = append(where, "animal_id = ?")
		args = append(args, filter.AnimalID)
	}
	if filter.TemplateID != "" {
		where = append(where, "template_id = ?")
		args = append(args, filter.TemplateID)
	}
	if filter.ActiveOnly {
		where = append(where, "is_completed = ?")
		args = append(args, false)
	}

	query := `SELECT ` + planColumns + ` FROM assigned_plans`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_date ASC, seq ASC`

	rows, err := r.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query plans: %w", err)
	}
	defer rows.Close()

	plans := []model.AssignedPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return plans, nil
}

// UpdatePlan updates an existing plan.
func (r *Repository) UpdatePlan(ctx context.Context, p model.AssignedPlan) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	query := `
		UPDATE assigned_plans
		SET
			template_id = ?,
			animal_id = ?,
			start_date = ?,
			current_step = ?,
			is_completed = ?,
			completed_date = ?
		WHERE id = ?
	`
	res, err := r.exec(ctx, r.db, query,
		p.TemplateID,
		p.AnimalID,
		p.StartDate.String(),
		p.CurrentStep,
		p.IsCompleted,
		nullDate(p.CompletedDate),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update plan: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("plan %s: %w", p.ID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated plan in repository: %s", p.ID)
	return nil
}

// AdvancePlan updates a plan that is still active at fromStep.
func (r *Repository) AdvancePlan(ctx context.Context, p model.AssignedPlan, fromStep int) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	query := `
		UPDATE assigned_plans
		SET
			current_step = ?,
			is_completed = ?,
			completed_date = ?
		WHERE id = ? AND current_step = ? AND is_completed = ?
	`
	res, err := r.exec(ctx, r.db, query,
		p.CurrentStep,
		p.IsCompleted,
		nullDate(p.CompletedDate),
		p.ID,
		fromStep,
		false,
	)
	if err != nil {
		return fmt.Errorf("could not advance plan: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		ok, err := r.exists(ctx, r.db, `SELECT 1 FROM assigned_plans WHERE id = ?`, p.ID)
		if err != nil {
			return fmt.Errorf("could not check plan: %w", err)
		}
		if !ok {
			return fmt.Errorf("plan %s: %w", p.ID, model.ErrNotFound)
		}
		return fmt.Errorf("plan %s is not active at step %d: %w", p.ID, fromStep, model.ErrConflict)
	}

	r.logger.Debugf("Advanced plan in repository: %s (step %d -> %d)", p.ID, fromStep, p.CurrentStep)
	return nil
}

// DeletePlan deletes a plan and its scheduled operations.
func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	if err := model.ValidateID("plan id", id); err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.exec(ctx, tx, `DELETE FROM scheduled_operations WHERE plan_id = ?`, id); err != nil {
			return fmt.Errorf("could not delete plan operations: %w", err)
		}

		res, err := r.exec(ctx, tx, `DELETE FROM assigned_plans WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("could not delete plan: %w", err)
		}
		if err := checkAffected(res, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)); err != nil {
			return err
		}

		r.logger.Debugf("Deleted plan from repository: %s", id)
		return nil
	})
}

func scanPlan(s scanner) (model.AssignedPlan, error) {
	var p model.AssignedPlan
	var startDate string
	var completedDate sql.NullString

	err := s.Scan(
		&p.ID,
		&p.TemplateID,
		&p.AnimalID,
		&startDate,
		&p.CurrentStep,
		&p.IsCompleted,
		&completedDate,
	)
	if err != nil {
		return model.AssignedPlan{}, err
	}

	p.StartDate, err = model.ParseDate(startDate)
	if err != nil {
		return model.AssignedPlan{}, fmt.Errorf("invalid start date: %w", err)
	}
	p.CompletedDate, err = dateFromNull(completedDate)
	if err != nil {
		return model.AssignedPlan{}, fmt.Errorf("invalid completed date: %w", err)
	}

	return p, nil
}
