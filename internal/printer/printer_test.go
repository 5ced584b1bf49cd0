package printer_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/printer"
)

var today = model.MustParseDate("2024-06-10")

func templateFixture() (model.OperationTemplate, []model.OperationStep) {
	createdAt := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	tpl := model.OperationTemplate{
		ID:          "3c1e4b52-8a3f-4d0e-9f1a-6b7c8d9e0f12",
		Name:        "Ovsynch",
		Description: "Timed AI",
		IsActive:    true,
		CreatedByID: "vet-1",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	steps := []model.OperationStep{
		{ID: "s1", TemplateID: tpl.ID, Name: "Insemination", OperationType: model.OperationTypeInsemination, Condition: model.StepConditionAlways},
		{ID: "s2", TemplateID: tpl.ID, Name: "Dry off", OperationType: model.OperationTypeGroupChange, DaysAfterPrevious: 200, Condition: model.StepConditionPositive, ChangeGroupID: "dry", SortOrder: 1},
	}
	return tpl, steps
}

func operationsFixture() []model.ScheduledOperation {
	done := model.MustParseDate("2024-06-01")
	return []model.ScheduledOperation{
		{ID: "op-1", PlanID: "p1", StepID: "s1", AnimalID: "cow-1", OperationType: model.OperationTypeInsemination, ScheduledDate: done, IsCompleted: true, CompletedDate: &done, Result: model.ResultPositive},
		{ID: "op-2", PlanID: "p1", StepID: "s2", AnimalID: "cow-1", OperationType: model.OperationTypePregnancyTest, ScheduledDate: model.MustParseDate("2024-06-08")},
		{ID: "op-3", PlanID: "p2", StepID: "s1", AnimalID: "cow-2", OperationType: model.OperationTypeCalving, ScheduledDate: model.MustParseDate("2024-06-13")},
	}
}

func TestTablePrinterPrintTemplate(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf, today)

	err := p.PrintTemplate(templateFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Name:         Ovsynch")
	assert.Contains(t, out, "Created by:   vet-1")
	assert.Contains(t, out, "Created:      2024-01-30 10:00:00 UTC")
	assert.Regexp(t, `1\s+s2\s+Dry off\s+GROUP_CHANGE\s+200\s+POSITIVE\s+-\s+dry`, out)
}

func TestTablePrinterPrintOperations(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf, today)

	err := p.PrintOperations(operationsFixture())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Regexp(t, `^ID\s+ANIMAL\s+TYPE\s+SCHEDULED\s+DUE\s+COMPLETED\s+RESULT$`, lines[0])
	assert.Regexp(t, `op-1\s+cow-1\s+INSEMINATION\s+2024-06-01\s+-\s+2024-06-01\s+POSITIVE`, lines[1])
	assert.Regexp(t, `op-2\s+.*2 days overdue\s+-\s+-$`, lines[2])
	assert.Regexp(t, `op-3\s+.*in 3 days\s+-\s+-$`, lines[3])
}

func TestTablePrinterPrintCompletion(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf, today)
	ops := operationsFixture()

	err := p.PrintCompletion(printer.Completion{
		Operation: ops[0],
		Outcome:   "advanced",
		Next:      &ops[1],
		Warnings: []model.SideEffectFailure{
			{AnimalID: "cow-1", Kind: model.SideEffectKindGroup, Value: "dry", Error: "registry down"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Outcome:    advanced")
	assert.Contains(t, out, "Next:       op-2 (PREGNANCY_TEST) on 2024-06-08")
	assert.Contains(t, out, `Warning:    group change to "dry" for animal cow-1 failed: registry down`)
}

func TestTablePrinterEmptyLists(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf, today)

	require.NoError(t, p.PrintTemplates(nil))
	require.NoError(t, p.PrintPlans(nil))
	require.NoError(t, p.PrintOperations(nil))
	require.NoError(t, p.PrintBulk(nil))
	require.NoError(t, p.PrintSideEffectFailures(nil))
	require.NoError(t, p.PrintAnimals(nil))
	assert.Empty(t, buf.String())
}

func TestTablePrinterPrintBulk(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf, today)

	err := p.PrintBulk([]printer.BulkRow{
		{AnimalID: "cow-1", PlanID: "p1", OperationID: "op-1"},
		{AnimalID: "cow-2", Err: errors.New("template has no steps")},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Regexp(t, `cow-1\s+p1\s+op-1\s+-`, out)
	assert.Regexp(t, `cow-2\s+-\s+-\s+template has no steps`, out)
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf, today)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}

func TestJSONPrinterPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)
	completed := model.MustParseDate("2024-06-09")

	err := p.PrintPlan(model.AssignedPlan{
		ID:            "p1",
		TemplateID:    "t1",
		AnimalID:      "cow-1",
		StartDate:     model.MustParseDate("2024-06-01"),
		CurrentStep:   1,
		IsCompleted:   true,
		CompletedDate: &completed,
	}, operationsFixture()[:2])
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-06-01", got["start_date"])
	assert.Equal(t, "2024-06-09", got["completed_date"])
	ops := got["operations"].([]any)
	require.Len(t, ops, 2)
	assert.Equal(t, "POSITIVE", ops[0].(map[string]any)["result"])
	assert.Nil(t, ops[1].(map[string]any)["completed_date"])
}

func TestJSONPrinterPrintTemplate(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintTemplate(templateFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"name": "Ovsynch"`)
	assert.Contains(t, out, `"created_at": "2024-01-30T10:00:00Z"`)
	assert.Contains(t, out, `"days_after_previous": 200`)
	assert.Contains(t, out, `"change_group_id": "dry"`)
}

func TestJSONPrinterPrintCompletion(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintCompletion(printer.Completion{Operation: operationsFixture()[0], Outcome: "plan_completed"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"outcome": "plan_completed"`)
	assert.Contains(t, out, `"next": null`)
	assert.Contains(t, out, `"warnings": []`)
}
