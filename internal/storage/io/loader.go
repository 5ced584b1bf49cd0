package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/herdops/internal/model"
)

// TemplateYAMLRepository loads protocol definitions from YAML files.
type TemplateYAMLRepository struct {
	fs fs.FS
}

// NewTemplateYAMLRepository creates a new YAML template definition repository.
func NewTemplateYAMLRepository(filesystem fs.FS) *TemplateYAMLRepository {
	return &TemplateYAMLRepository{fs: filesystem}
}

// GetTemplateDefinition loads a protocol definition from a YAML file and returns a validated domain model.
func (r *TemplateYAMLRepository) GetTemplateDefinition(ctx context.Context, path string) (model.TemplateDefinition, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.TemplateDefinition{}, fmt.Errorf("reading template file: %w", err)
	}

	if ctx.Err() != nil {
		return model.TemplateDefinition{}, ctx.Err()
	}

	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return model.TemplateDefinition{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := tpl.validate(); err != nil {
		return model.TemplateDefinition{}, fmt.Errorf("invalid template: %w: %w", err, model.ErrNotValid)
	}

	return tpl.toModel(), nil
}

// Template represents the YAML structure of a protocol definition.
//
//	name: Ovsynch
//	description: Timed AI protocol
//	active: true
//	steps:
//	  - name: Insemination
//	    type: INSEMINATION
//	  - name: Pregnancy check
//	    type: PREGNANCY_TEST
//	    days_after_previous: 30
//	  - name: Dry off
//	    type: GROUP_CHANGE
//	    condition: POSITIVE
//	    change_group_id: dry
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Active defaults to true when omitted.
	Active      *bool  `yaml:"active,omitempty"`
	CreatedByID string `yaml:"created_by_id"`
	Steps       []Step `yaml:"steps"`
}

// Step represents the YAML structure of a template step.
type Step struct {
	Name              string `yaml:"name"`
	Type              string `yaml:"type"`
	DaysAfterPrevious int    `yaml:"days_after_previous"`
	Condition         string `yaml:"condition"`
	ChangeStatus      string `yaml:"change_status"`
	ChangeGroupID     string `yaml:"change_group_id"`
	// SortOrder defaults to the step position when omitted.
	SortOrder *int `yaml:"sort_order,omitempty"`
}

func (t Template) validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, s := range t.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !model.OperationType(s.Type).Valid() {
		return fmt.Errorf("unknown operation type %q", s.Type)
	}
	if s.Condition != "" && !model.StepCondition(s.Condition).Valid() {
		return fmt.Errorf("unknown condition %q", s.Condition)
	}
	if s.DaysAfterPrevious < 0 {
		return fmt.Errorf("days_after_previous must be zero or positive, got: %d", s.DaysAfterPrevious)
	}
	return nil
}

func (t Template) toModel() model.TemplateDefinition {
	active := true
	if t.Active != nil {
		active = *t.Active
	}

	def := model.TemplateDefinition{
		Template: model.OperationTemplate{
			Name:        t.Name,
			Description: t.Description,
			IsActive:    active,
			CreatedByID: t.CreatedByID,
		},
	}

	for i, s := range t.Steps {
		order := i
		if s.SortOrder != nil {
			order = *s.SortOrder
		}
		step := model.OperationStep{
			OperationType:     model.OperationType(s.Type),
			Name:              s.Name,
			DaysAfterPrevious: s.DaysAfterPrevious,
			Condition:         model.StepCondition(s.Condition),
			ChangeStatus:      s.ChangeStatus,
			ChangeGroupID:     s.ChangeGroupID,
			SortOrder:         order,
		}
		step.Defaults()
		def.Steps = append(def.Steps, step)
	}

	return def
}
