package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/herdops/pkg/lib"
)

// StepAddCommand adds a step to a template.
type StepAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	templateID        string
	name              string
	operationType     string
	daysAfterPrevious int
	condition         string
	changeStatus      string
	changeGroupID     string
	sortOrder         int
	format            string
}

// NewStepAddCommand returns the step add command.
func NewStepAddCommand(rootCmd *RootCommand, stepCmd *kingpin.CmdClause) *StepAddCommand {
	c := &StepAddCommand{rootCmd: rootCmd}

	c.Cmd = stepCmd.Command("add", "Add a step to a template.")
	c.Cmd.Flag("template", "Owning template ID.").Short('t').Required().StringVar(&c.templateID)
	c.Cmd.Flag("name", "Step name.").Short('n').Required().StringVar(&c.name)
	c.Cmd.Flag("type", "Operation type (insemination, pregnancy_test, group_change, status_change, calving).").Required().StringVar(&c.operationType)
	c.Cmd.Flag("days", "Days after the previous operation completion.").Default("0").IntVar(&c.daysAfterPrevious)
	c.Cmd.Flag("condition", "Previous result required (always, positive, negative).").Default("always").StringVar(&c.condition)
	c.Cmd.Flag("change-status", "Animal status set when the operation completes.").StringVar(&c.changeStatus)
	c.Cmd.Flag("change-group", "Group the animal is moved to when the operation completes.").StringVar(&c.changeGroupID)
	c.Cmd.Flag("sort-order", "Position of the step in the template.").Default("0").IntVar(&c.sortOrder)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StepAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c StepAddCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	step, err := client.CreateStep(ctx, lib.CreateStepRequest{
		TemplateID:        c.templateID,
		OperationType:     lib.OperationType(strings.ToUpper(c.operationType)),
		Name:              c.name,
		DaysAfterPrevious: c.daysAfterPrevious,
		Condition:         lib.StepCondition(strings.ToUpper(c.condition)),
		ChangeStatus:      c.changeStatus,
		ChangeGroupID:     c.changeGroupID,
		SortOrder:         c.sortOrder,
	})
	if err != nil {
		return fmt.Errorf("could not add step: %w", err)
	}

	return printTemplateOf(ctx, c.rootCmd, client, step.TemplateID, c.format)
}

// StepUpdateCommand partially updates a step.
type StepUpdateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id                   string
	name                 string
	nameSet              bool
	operationType        string
	operationTypeSet     bool
	daysAfterPrevious    int
	daysAfterPreviousSet bool
	condition            string
	conditionSet         bool
	changeStatus         string
	changeStatusSet      bool
	changeGroupID        string
	changeGroupIDSet     bool
	sortOrder            int
	sortOrderSet         bool
	format               string
}

// NewStepUpdateCommand returns the step update command.
func NewStepUpdateCommand(rootCmd *RootCommand, stepCmd *kingpin.CmdClause) *StepUpdateCommand {
	c := &StepUpdateCommand{rootCmd: rootCmd}

	c.Cmd = stepCmd.Command("update", "Update a step, only the given flags are changed. Scheduled operations are not touched.")
	c.Cmd.Arg("id", "Step ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("name", "Step name.").IsSetByUser(&c.nameSet).StringVar(&c.name)
	c.Cmd.Flag("type", "Operation type.").IsSetByUser(&c.operationTypeSet).StringVar(&c.operationType)
	c.Cmd.Flag("days", "Days after the previous operation completion.").IsSetByUser(&c.daysAfterPreviousSet).IntVar(&c.daysAfterPrevious)
	c.Cmd.Flag("condition", "Previous result required (always, positive, negative).").IsSetByUser(&c.conditionSet).StringVar(&c.condition)
	c.Cmd.Flag("change-status", "Animal status set on completion, empty to clear.").IsSetByUser(&c.changeStatusSet).StringVar(&c.changeStatus)
	c.Cmd.Flag("change-group", "Group set on completion, empty to clear.").IsSetByUser(&c.changeGroupIDSet).StringVar(&c.changeGroupID)
	c.Cmd.Flag("sort-order", "Position of the step in the template.").IsSetByUser(&c.sortOrderSet).IntVar(&c.sortOrder)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StepUpdateCommand) Name() string { return c.Cmd.FullCommand() }

func (c StepUpdateCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	req := lib.UpdateStepRequest{ID: c.id}
	if c.nameSet {
		req.Name = &c.name
	}
	if c.operationTypeSet {
		t := lib.OperationType(strings.ToUpper(c.operationType))
		req.OperationType = &t
	}
	if c.daysAfterPreviousSet {
		req.DaysAfterPrevious = &c.daysAfterPrevious
	}
	if c.conditionSet {
		cond := lib.StepCondition(strings.ToUpper(c.condition))
		req.Condition = &cond
	}
	if c.changeStatusSet {
		req.ChangeStatus = &c.changeStatus
	}
	if c.changeGroupIDSet {
		req.ChangeGroupID = &c.changeGroupID
	}
	if c.sortOrderSet {
		req.SortOrder = &c.sortOrder
	}

	step, err := client.UpdateStep(ctx, req)
	if err != nil {
		return fmt.Errorf("could not update step: %w", err)
	}

	return printTemplateOf(ctx, c.rootCmd, client, step.TemplateID, c.format)
}

// StepRmCommand deletes a step.
type StepRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id string
}

// NewStepRmCommand returns the step rm command.
func NewStepRmCommand(rootCmd *RootCommand, stepCmd *kingpin.CmdClause) *StepRmCommand {
	c := &StepRmCommand{rootCmd: rootCmd}

	c.Cmd = stepCmd.Command("rm", "Remove a step from its template.")
	c.Cmd.Arg("id", "Step ID.").Required().StringVar(&c.id)

	return c
}

func (c StepRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c StepRmCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteStep(ctx, c.id); err != nil {
		return fmt.Errorf("could not remove step: %w", err)
	}

	if err := newPrinter(c.rootCmd, formatTable, client.Today()).PrintMessage(fmt.Sprintf("Removed step: %s", c.id)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

func printTemplateOf(ctx context.Context, rootCmd *RootCommand, client *lib.Client, templateID, format string) error {
	tpl, err := client.GetTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("could not get template: %w", err)
	}

	steps, err := client.ListSteps(ctx, templateID)
	if err != nil {
		return fmt.Errorf("could not list steps: %w", err)
	}

	if err := newPrinter(rootCmd, format, client.Today()).PrintTemplate(*tpl, steps); err != nil {
		return fmt.Errorf("could not print template: %w", err)
	}

	return nil
}
