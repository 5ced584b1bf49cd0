package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/herdops/internal/model"
)

// TablePrinter prints herdops information in a table format.
type TablePrinter struct {
	writer io.Writer
	today  model.Date
}

// NewTablePrinter creates a new table printer. Operation due times are relative to today.
func NewTablePrinter(w io.Writer, today model.Date) *TablePrinter {
	return &TablePrinter{writer: w, today: today}
}

func (t *TablePrinter) newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
}

// PrintTemplates prints templates in a table format.
func (t *TablePrinter) PrintTemplates(templates []model.OperationTemplate) error {
	if len(templates) == 0 {
		return nil
	}

	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tCREATED")
	for _, tpl := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tpl.ID, tpl.Name, yesNo(tpl.IsActive), TimeAgo(tpl.CreatedAt))
	}

	return nil
}

// PrintTemplate prints a template with its steps.
func (t *TablePrinter) PrintTemplate(tpl model.OperationTemplate, steps []model.OperationStep) error {
	fmt.Fprintf(t.writer, "Name:         %s\n", tpl.Name)
	fmt.Fprintf(t.writer, "ID:           %s\n", tpl.ID)
	if tpl.Description != "" {
		fmt.Fprintf(t.writer, "Description:  %s\n", tpl.Description)
	}
	fmt.Fprintf(t.writer, "Active:       %s\n", yesNo(tpl.IsActive))
	if tpl.CreatedByID != "" {
		fmt.Fprintf(t.writer, "Created by:   %s\n", tpl.CreatedByID)
	}
	fmt.Fprintf(t.writer, "Created:      %s\n", FormatTimestamp(tpl.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:      %s\n", FormatTimestamp(tpl.UpdatedAt))

	if len(steps) == 0 {
		fmt.Fprintln(t.writer, "Steps:        none")
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tID\tNAME\tTYPE\tDAYS\tCONDITION\tSTATUS\tGROUP")
	for i, s := range steps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i,
			s.ID,
			s.Name,
			s.OperationType,
			s.DaysAfterPrevious,
			s.Condition,
			dash(s.ChangeStatus),
			dash(s.ChangeGroupID),
		)
	}

	return nil
}

// PrintPlans prints plans in a table format.
func (t *TablePrinter) PrintPlans(plans []model.AssignedPlan) error {
	if len(plans) == 0 {
		return nil
	}

	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tANIMAL\tTEMPLATE\tSTART\tSTEP\tCOMPLETED")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.AnimalID, p.TemplateID, p.StartDate, p.CurrentStep, dateOrDash(p.CompletedDate))
	}

	return nil
}

// PrintPlan prints a plan with its operations.
func (t *TablePrinter) PrintPlan(p model.AssignedPlan, ops []model.ScheduledOperation) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", p.ID)
	fmt.Fprintf(t.writer, "Animal:     %s\n", p.AnimalID)
	fmt.Fprintf(t.writer, "Template:   %s\n", p.TemplateID)
	fmt.Fprintf(t.writer, "Start:      %s\n", p.StartDate)
	fmt.Fprintf(t.writer, "Step:       %d\n", p.CurrentStep)
	fmt.Fprintf(t.writer, "Completed:  %s\n", dateOrDash(p.CompletedDate))

	if len(ops) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	return t.PrintOperations(ops)
}

// PrintOperations prints scheduled operations in a table format.
func (t *TablePrinter) PrintOperations(ops []model.ScheduledOperation) error {
	if len(ops) == 0 {
		return nil
	}

	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tANIMAL\tTYPE\tSCHEDULED\tDUE\tCOMPLETED\tRESULT")
	for _, o := range ops {
		due := DueIn(o.ScheduledDate, t.today)
		if o.IsCompleted {
			due = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID,
			o.AnimalID,
			o.OperationType,
			o.ScheduledDate,
			due,
			dateOrDash(o.CompletedDate),
			dash(string(o.Result)),
		)
	}

	return nil
}

// PrintCompletion prints the outcome of completing an operation.
func (t *TablePrinter) PrintCompletion(c Completion) error {
	fmt.Fprintf(t.writer, "Completed:  %s (%s)\n", c.Operation.ID, c.Operation.OperationType)
	fmt.Fprintf(t.writer, "Outcome:    %s\n", c.Outcome)
	if c.Next != nil {
		fmt.Fprintf(t.writer, "Next:       %s (%s) on %s\n", c.Next.ID, c.Next.OperationType, c.Next.ScheduledDate)
	}
	for _, w := range c.Warnings {
		fmt.Fprintf(t.writer, "Warning:    %s\n", w)
	}

	return nil
}

// PrintBulk prints the per-animal result of a bulk assignment.
func (t *TablePrinter) PrintBulk(rows []BulkRow) error {
	if len(rows) == 0 {
		return nil
	}

	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ANIMAL\tPLAN\tOPERATION\tERROR")
	for _, r := range rows {
		errMsg := "-"
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.AnimalID, dash(r.PlanID), dash(r.OperationID), errMsg)
	}

	return nil
}

// PrintSideEffectFailures prints side effect failures in a table format.
func (t *TablePrinter) PrintSideEffectFailures(failures []model.SideEffectFailure) error {
	if len(failures) == 0 {
		return nil
	}

	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tANIMAL\tKIND\tVALUE\tATTEMPTS\tERROR\tCREATED")
	for _, f := range failures {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", f.ID, f.AnimalID, f.Kind, f.Value, f.Attempts, f.Error, TimeAgo(f.CreatedAt))
	}

	return nil
}

// PrintAnimals prints animals in a table format.
func (t *TablePrinter) PrintAnimals(animals []model.Animal) error {
	if len(animals) == 0 {
		return nil
	}

	tw := t.newTabWriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tGROUP")
	for _, a := range animals {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, dash(a.Status), dash(a.GroupID))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dateOrDash(d *model.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
