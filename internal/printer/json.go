package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/herdops/internal/model"
)

// JSONPrinter prints herdops information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type templateOutput struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedByID string       `json:"created_by_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Steps       []stepOutput `json:"steps,omitempty"`
}

type stepOutput struct {
	ID                string `json:"id"`
	TemplateID        string `json:"template_id"`
	Name              string `json:"name"`
	OperationType     string `json:"operation_type"`
	DaysAfterPrevious int    `json:"days_after_previous"`
	Condition         string `json:"condition"`
	ChangeStatus      string `json:"change_status,omitempty"`
	ChangeGroupID     string `json:"change_group_id,omitempty"`
	SortOrder         int    `json:"sort_order"`
}

type planOutput struct {
	ID            string            `json:"id"`
	TemplateID    string            `json:"template_id"`
	AnimalID      string            `json:"animal_id"`
	StartDate     model.Date        `json:"start_date"`
	CurrentStep   int               `json:"current_step"`
	IsCompleted   bool              `json:"is_completed"`
	CompletedDate *model.Date       `json:"completed_date"`
	Operations    []operationOutput `json:"operations,omitempty"`
}

type operationOutput struct {
	ID            string      `json:"id"`
	PlanID        string      `json:"plan_id"`
	StepID        string      `json:"step_id"`
	AnimalID      string      `json:"animal_id"`
	OperationType string      `json:"operation_type"`
	ScheduledDate model.Date  `json:"scheduled_date"`
	IsCompleted   bool        `json:"is_completed"`
	CompletedDate *model.Date `json:"completed_date"`
	Result        string      `json:"result,omitempty"`
}

type completionOutput struct {
	Operation operationOutput    `json:"operation"`
	Outcome   string             `json:"outcome"`
	Next      *operationOutput   `json:"next"`
	Warnings  []sideEffectOutput `json:"warnings"`
}

type bulkOutput struct {
	AnimalID    string `json:"animal_id"`
	PlanID      string `json:"plan_id,omitempty"`
	OperationID string `json:"operation_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

type sideEffectOutput struct {
	ID          string     `json:"id"`
	OperationID string     `json:"operation_id"`
	PlanID      string     `json:"plan_id"`
	AnimalID    string     `json:"animal_id"`
	Kind        string     `json:"kind"`
	Value       string     `json:"value"`
	Error       string     `json:"error"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

type animalOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	GroupID string `json:"group_id"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTemplates prints templates in JSON format.
func (j *JSONPrinter) PrintTemplates(templates []model.OperationTemplate) error {
	items := make([]templateOutput, len(templates))
	for i, t := range templates {
		items[i] = toTemplateOutput(t, nil)
	}
	return j.encode(items)
}

// PrintTemplate prints a template with its steps in JSON format.
func (j *JSONPrinter) PrintTemplate(tpl model.OperationTemplate, steps []model.OperationStep) error {
	return j.encode(toTemplateOutput(tpl, steps))
}

// PrintPlans prints plans in JSON format.
func (j *JSONPrinter) PrintPlans(plans []model.AssignedPlan) error {
	items := make([]planOutput, len(plans))
	for i, p := range plans {
		items[i] = toPlanOutput(p, nil)
	}
	return j.encode(items)
}

// PrintPlan prints a plan with its operations in JSON format.
func (j *JSONPrinter) PrintPlan(p model.AssignedPlan, ops []model.ScheduledOperation) error {
	return j.encode(toPlanOutput(p, ops))
}

// PrintOperations prints scheduled operations in JSON format.
func (j *JSONPrinter) PrintOperations(ops []model.ScheduledOperation) error {
	return j.encode(toOperationOutputs(ops))
}

// PrintCompletion prints the outcome of completing an operation in JSON format.
func (j *JSONPrinter) PrintCompletion(c Completion) error {
	output := completionOutput{
		Operation: toOperationOutput(c.Operation),
		Outcome:   c.Outcome,
		Warnings:  toSideEffectOutputs(c.Warnings),
	}
	if c.Next != nil {
		next := toOperationOutput(*c.Next)
		output.Next = &next
	}
	return j.encode(output)
}

// PrintBulk prints the per-animal result of a bulk assignment in JSON format.
func (j *JSONPrinter) PrintBulk(rows []BulkRow) error {
	items := make([]bulkOutput, len(rows))
	for i, r := range rows {
		items[i] = bulkOutput{AnimalID: r.AnimalID, PlanID: r.PlanID, OperationID: r.OperationID}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	return j.encode(items)
}

// PrintSideEffectFailures prints side effect failures in JSON format.
func (j *JSONPrinter) PrintSideEffectFailures(failures []model.SideEffectFailure) error {
	return j.encode(toSideEffectOutputs(failures))
}

// PrintAnimals prints animals in JSON format.
func (j *JSONPrinter) PrintAnimals(animals []model.Animal) error {
	items := make([]animalOutput, len(animals))
	for i, a := range animals {
		items[i] = animalOutput{ID: a.ID, Status: a.Status, GroupID: a.GroupID}
	}
	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toTemplateOutput(t model.OperationTemplate, steps []model.OperationStep) templateOutput {
	output := templateOutput{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedByID: t.CreatedByID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	for _, s := range steps {
		output.Steps = append(output.Steps, stepOutput{
			ID:                s.ID,
			TemplateID:        s.TemplateID,
			Name:              s.Name,
			OperationType:     string(s.OperationType),
			DaysAfterPrevious: s.DaysAfterPrevious,
			Condition:         string(s.Condition),
			ChangeStatus:      s.ChangeStatus,
			ChangeGroupID:     s.ChangeGroupID,
			SortOrder:         s.SortOrder,
		})
	}
	return output
}

func toPlanOutput(p model.AssignedPlan, ops []model.ScheduledOperation) planOutput {
	output := planOutput{
		ID:            p.ID,
		TemplateID:    p.TemplateID,
		AnimalID:      p.AnimalID,
		StartDate:     p.StartDate,
		CurrentStep:   p.CurrentStep,
		IsCompleted:   p.IsCompleted,
		CompletedDate: p.CompletedDate,
	}
	if len(ops) > 0 {
		output.Operations = toOperationOutputs(ops)
	}
	return output
}

func toOperationOutput(o model.ScheduledOperation) operationOutput {
	return operationOutput{
		ID:            o.ID,
		PlanID:        o.PlanID,
		StepID:        o.StepID,
		AnimalID:      o.AnimalID,
		OperationType: string(o.OperationType),
		ScheduledDate: o.ScheduledDate,
		IsCompleted:   o.IsCompleted,
		CompletedDate: o.CompletedDate,
		Result:        string(o.Result),
	}
}

func toOperationOutputs(ops []model.ScheduledOperation) []operationOutput {
	items := make([]operationOutput, len(ops))
	for i, o := range ops {
		items[i] = toOperationOutput(o)
	}
	return items
}

func toSideEffectOutputs(failures []model.SideEffectFailure) []sideEffectOutput {
	items := make([]sideEffectOutput, len(failures))
	for i, f := range failures {
		items[i] = sideEffectOutput{
			ID:          f.ID,
			OperationID: f.OperationID,
			PlanID:      f.PlanID,
			AnimalID:    f.AnimalID,
			Kind:        string(f.Kind),
			Value:       f.Value,
			Error:       f.Error,
			Attempts:    f.Attempts,
			CreatedAt:   f.CreatedAt.UTC(),
		}
		if f.ResolvedAt != nil {
			utcTime := f.ResolvedAt.UTC()
			items[i].ResolvedAt = &utcTime
		}
	}
	return items
}
