package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/herdops/internal/model"
)

const templateColumns = `id, name, description, is_active, created_by_id, created_at, updated_at`

const stepColumns = `
	id, template_id, operation_type, name,
	days_after_previous, step_condition,
	change_status, change_group_id, sort_order`

// CreateTemplate creates a new template.
func (r *Repository) CreateTemplate(ctx context.Context, t model.OperationTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	query := `
		INSERT INTO operation_templates (` + templateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, r.db, query,
		t.ID,
		t.Name,
		t.Description,
		t.IsActive,
		t.CreatedByID,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("template with id %s: %w", t.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert template: %w", err)
	}

	r.logger.Debugf("Created template in repository: %s", t.ID)
	return nil
}

// GetTemplate retrieves a template by ID.
func (r *Repository) GetTemplate(ctx context.Context, id string) (*model.OperationTemplate, error) {
	if err := model.ValidateID("template id", id); err != nil {
		return nil, err
	}

	query := `SELECT ` + templateColumns + ` FROM operation_templates WHERE id = ?`

	t, err := scanTemplate(r.queryRow(ctx, r.db, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query template: %w", err)
	}

	return &t, nil
}

// ListTemplates returns all templates ordered by name.
func (r *Repository) ListTemplates(ctx context.Context) ([]model.OperationTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM operation_templates ORDER BY name ASC, id ASC`

	rows, err := r.query(ctx, r.db, query)
	if err != nil {
		return nil, fmt.Errorf("could not query templates: %w", err)
	}
	defer rows.Close()

	templates := []model.OperationTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return templates, nil
}

// UpdateTemplate updates an existing template.
func (r *Repository) UpdateTemplate(ctx context.Context, t model.OperationTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	query := `
		UPDATE operation_templates
		SET
			name = ?,
			description = ?,
			is_active = ?,
			created_by_id = ?,
			created_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	res, err := r.exec(ctx, r.db, query,
		t.Name,
		t.Description,
		t.IsActive,
		t.CreatedByID,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update template: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("template %s: %w", t.ID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated template in repository: %s", t.ID)
	return nil
}

// DeleteTemplate deletes a template and its steps.
func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	if err := model.ValidateID("template id", id); err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.exec(ctx, tx, `DELETE FROM operation_steps WHERE template_id = ?`, id); err != nil {
			return fmt.Errorf("could not delete template steps: %w", err)
		}

		res, err := r.exec(ctx, tx, `DELETE FROM operation_templates WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("could not delete template: %w", err)
		}
		if err := checkAffected(res, fmt.Errorf("template %s: %w", id, model.ErrNotFound)); err != nil {
			return err
		}

		r.logger.Debugf("Deleted template from repository: %s", id)
		return nil
	})
}

// CreateStep creates a new step for an existing template.
func (r *Repository) CreateStep(ctx context.Context, s model.OperationStep) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := r.exists(ctx, tx, `SELECT 1 FROM operation_templates WHERE id = ?`, s.TemplateID)
		if err != nil {
			return fmt.Errorf("could not check step template: %w", err)
		}
		if !ok {
			return fmt.Errorf("step template %s does not exist: %w", s.TemplateID, model.ErrNotValid)
		}

		query := `
			INSERT INTO operation_steps (` + stepColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = r.exec(ctx, tx, query,
			s.ID,
			s.TemplateID,
			string(s.OperationType),
			s.Name,
			s.DaysAfterPrevious,
			string(s.Condition),
			s.ChangeStatus,
			s.ChangeGroupID,
			s.SortOrder,
		)
		if err != nil {
			if r.dialect.IsUniqueViolation(err) {
				return fmt.Errorf("step with id %s: %w", s.ID, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert step: %w", err)
		}

		r.logger.Debugf("Created step in repository: %s", s.ID)
		return nil
	})
}

// GetStep retrieves a step by ID.
func (r *Repository) GetStep(ctx context.Context, id string) (*model.OperationStep, error) {
	if err := model.ValidateID("step id", id); err != nil {
		return nil, err
	}

	query := `SELECT ` + stepColumns + ` FROM operation_steps WHERE id = ?`

	s, err := scanStep(r.queryRow(ctx, r.db, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("step %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query step: %w", err)
	}

	return &s, nil
}

// ListSteps returns the steps of a template ordered by sort order and insertion.
func (r *Repository) ListSteps(ctx context.Context, templateID string) ([]model.OperationStep, error) {
	if err := model.ValidateID("template id", templateID); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + stepColumns + `
		FROM operation_steps
		WHERE template_id = ?
		ORDER BY sort_order ASC, seq ASC
	`

	rows, err := r.query(ctx, r.db, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("could not query steps: %w", err)
	}
	defer rows.Close()

	steps := []model.OperationStep{}
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return steps, nil
}

// UpdateStep updates an existing step.
func (r *Repository) UpdateStep(ctx context.Context, s model.OperationStep) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := r.exists(ctx, tx, `SELECT 1 FROM operation_steps WHERE id = ?`, s.ID)
		if err != nil {
			return fmt.Errorf("could not check step: %w", err)
		}
		if !ok {
			return fmt.Errorf("step %s: %w", s.ID, model.ErrNotFound)
		}
		ok, err = r.exists(ctx, tx, `SELECT 1 FROM operation_templates WHERE id = ?`, s.TemplateID)
		if err != nil {
			return fmt.Errorf("could not check step template: %w", err)
		}
		if !ok {
			return fmt.Errorf("step template %s does not exist: %w", s.TemplateID, model.ErrNotValid)
		}

		query := `
			UPDATE operation_steps
			SET
				template_id = ?,
				operation_type = ?,
				name = ?,
				days_after_previous = ?,
				step_condition = ?,
				change_status = ?,
				change_group_id = ?,
				sort_order = ?
			WHERE id = ?
		`
		_, err = r.exec(ctx, tx, query,
			s.TemplateID,
			string(s.OperationType),
			s.Name,
			s.DaysAfterPrevious,
			string(s.Condition),
			s.ChangeStatus,
			s.ChangeGroupID,
			s.SortOrder,
			s.ID,
		)
		if err != nil {
			return fmt.Errorf("could not update step: %w", err)
		}

		r.logger.Debugf("Updated step in repository: %s", s.ID)
		return nil
	})
}

// DeleteStep deletes a step.
func (r *Repository) DeleteStep(ctx context.Context, id string) error {
	if err := model.ValidateID("step id", id); err != nil {
		return err
	}

	res, err := r.exec(ctx, r.db, `DELETE FROM operation_steps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete step: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("step %s: %w", id, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Deleted step from repository: %s", id)
	return nil
}

func scanTemplate(s scanner) (model.OperationTemplate, error) {
	var t model.OperationTemplate
	var createdAt, updatedAt int64

	err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.IsActive,
		&t.CreatedByID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.OperationTemplate{}, err
	}

	t.CreatedAt = timeFromUnix(createdAt)
	t.UpdatedAt = timeFromUnix(updatedAt)
	return t, nil
}

func scanStep(s scanner) (model.OperationStep, error) {
	var step model.OperationStep
	var opType, condition string

	err := s.Scan(
		&step.ID,
		&step.TemplateID,
		&opType,
		&step.Name,
		&step.DaysAfterPrevious,
		&condition,
		&step.ChangeStatus,
		&step.ChangeGroupID,
		&step.SortOrder,
	)
	if err != nil {
		return model.OperationStep{}, err
	}

	step.OperationType = model.OperationType(opType)
	step.Condition = model.StepCondition(condition)
	return step, nil
}
