package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/herdops/internal/printer"
	"github.com/slok/herdops/pkg/lib"
)

// PlanAssignCommand assigns a template to an animal.
type PlanAssignCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	templateID string
	animalID   string
	startDate  string
	format     string
}

// NewPlanAssignCommand returns the plan assign command.
func NewPlanAssignCommand(rootCmd *RootCommand, planCmd *kingpin.CmdClause) *PlanAssignCommand {
	c := &PlanAssignCommand{rootCmd: rootCmd}

	c.Cmd = planCmd.Command("assign", "Assign a template to an animal, its first operation is scheduled on the start date.")
	c.Cmd.Flag("template", "Template ID.").Short('t').Required().StringVar(&c.templateID)
	c.Cmd.Flag("animal", "Animal ID.").Short('a').Required().StringVar(&c.animalID)
	c.Cmd.Flag("start", "Start date (YYYY-MM-DD), today by default.").StringVar(&c.startDate)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PlanAssignCommand) Name() string { return c.Cmd.FullCommand() }

func (c PlanAssignCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	start, err := parseDate(c.startDate, client.Today())
	if err != nil {
		return err
	}

	a, err := client.AssignPlan(ctx, lib.AssignRequest{
		TemplateID: c.templateID,
		AnimalID:   c.animalID,
		StartDate:  start,
	})
	if err != nil {
		return fmt.Errorf("could not assign plan: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintPlan(a.Plan, []lib.Operation{a.Operation}); err != nil {
		return fmt.Errorf("could not print plan: %w", err)
	}

	return nil
}

// PlanAssignBulkCommand assigns a template to many animals.
type PlanAssignBulkCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	templateID  string
	animalIDs   []string
	animalsFile string
	startDate   string
	format      string
}

// NewPlanAssignBulkCommand returns the plan assign-bulk command.
func NewPlanAssignBulkCommand(rootCmd *RootCommand, planCmd *kingpin.CmdClause) *PlanAssignBulkCommand {
	c := &PlanAssignBulkCommand{rootCmd: rootCmd}

	c.Cmd = planCmd.Command("assign-bulk", "Assign a template to many animals, each one independently.")
	c.Cmd.Flag("template", "Template ID.").Short('t').Required().StringVar(&c.templateID)
	c.Cmd.Flag("animal", "Animal ID, can be repeated.").Short('a').StringsVar(&c.animalIDs)
	c.Cmd.Flag("animals-file", "File with one animal ID per line, '-' reads from stdin.").StringVar(&c.animalsFile)
	c.Cmd.Flag("start", "Start date (YYYY-MM-DD), today by default.").StringVar(&c.startDate)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PlanAssignBulkCommand) Name() string { return c.Cmd.FullCommand() }

func (c PlanAssignBulkCommand) Run(ctx context.Context) error {
	animalIDs := append([]string{}, c.animalIDs...)
	if c.animalsFile != "" {
		ids, err := c.readAnimalsFile()
		if err != nil {
			return err
		}
		animalIDs = append(animalIDs, ids...)
	}
	if len(animalIDs) == 0 {
		return fmt.Errorf("at least one animal is required (--animal or --animals-file)")
	}

	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	start, err := parseDate(c.startDate, client.Today())
	if err != nil {
		return err
	}

	res, err := client.AssignPlanBulk(ctx, lib.AssignBulkRequest{
		TemplateID: c.templateID,
		AnimalIDs:  animalIDs,
		StartDate:  start,
	})
	if err != nil {
		return fmt.Errorf("could not assign plans: %w", err)
	}

	rows := make([]printer.BulkRow, 0, len(res.Items))
	for _, it := range res.Items {
		row := printer.BulkRow{AnimalID: it.AnimalID, Err: it.Err}
		if it.Assignment != nil {
			row.PlanID = it.Assignment.Plan.ID
			row.OperationID = it.Assignment.Operation.ID
		}
		rows = append(rows, row)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintBulk(rows); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	if failed := len(res.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d assignments failed", failed, len(res.Items))
	}

	return nil
}

func (c PlanAssignBulkCommand) readAnimalsFile() ([]string, error) {
	if c.animalsFile == "-" {
		return readAnimalIDs(c.rootCmd.Stdin)
	}

	f, err := os.Open(c.animalsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open animals file: %w", err)
	}
	defer f.Close()

	return readAnimalIDs(f)
}

// readAnimalIDs reads one animal ID per line. Blank lines and lines starting with # are ignored.
func readAnimalIDs(r io.Reader) ([]string, error) {
	ids := []string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read animal ids: %w", err)
	}
	return ids, nil
}

// PlanCompleteCommand manually completes a plan.
type PlanCompleteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewPlanCompleteCommand returns the plan complete command.
func NewPlanCompleteCommand(rootCmd *RootCommand, planCmd *kingpin.CmdClause) *PlanCompleteCommand {
	c := &PlanCompleteCommand{rootCmd: rootCmd}

	c.Cmd = planCmd.Command("complete", "Mark a plan as completed. Its pending operation is kept but won't advance.")
	c.Cmd.Arg("id", "Plan ID.").Required().StringVar(&c.id)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PlanCompleteCommand) Name() string { return c.Cmd.FullCommand() }

func (c PlanCompleteCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	p, err := client.CompletePlan(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not complete plan: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintPlan(*p, nil); err != nil {
		return fmt.Errorf("could not print plan: %w", err)
	}

	return nil
}

// PlanRmCommand deletes a plan and its operations.
type PlanRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id string
}

// NewPlanRmCommand returns the plan rm command.
func NewPlanRmCommand(rootCmd *RootCommand, planCmd *kingpin.CmdClause) *PlanRmCommand {
	c := &PlanRmCommand{rootCmd: rootCmd}

	c.Cmd = planCmd.Command("rm", "Remove a plan and all its scheduled operations.")
	c.Cmd.Arg("id", "Plan ID.").Required().StringVar(&c.id)

	return c
}

func (c PlanRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c PlanRmCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeletePlan(ctx, c.id); err != nil {
		return fmt.Errorf("could not remove plan: %w", err)
	}

	if err := newPrinter(c.rootCmd, formatTable, client.Today()).PrintMessage(fmt.Sprintf("Removed plan: %s", c.id)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

// PlanListCommand lists plans.
type PlanListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	animalID   string
	templateID string
	activeOnly bool
	format     string
}

// NewPlanListCommand returns the plan list command.
func NewPlanListCommand(rootCmd *RootCommand, planCmd *kingpin.CmdClause) *PlanListCommand {
	c := &PlanListCommand{rootCmd: rootCmd}

	c.Cmd = planCmd.Command("list", "List plans.")
	c.Cmd.Flag("animal", "Filter by animal ID.").Short('a').StringVar(&c.animalID)
	c.Cmd.Flag("template", "Filter by template ID.").Short('t').StringVar(&c.templateID)
	c.Cmd.Flag("active-only", "List only plans not completed.").BoolVar(&c.activeOnly)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PlanListCommand) Name() string { return c.Cmd.FullCommand() }

func (c PlanListCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	plans, err := client.ListPlans(ctx, lib.PlanFilter{
		AnimalID:   c.animalID,
		TemplateID: c.templateID,
		ActiveOnly: c.activeOnly,
	})
	if err != nil {
		return fmt.Errorf("could not list plans: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintPlans(plans); err != nil {
		return fmt.Errorf("could not print plans: %w", err)
	}

	return nil
}

// PlanShowCommand shows a plan with its operations.
type PlanShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewPlanShowCommand returns the plan show command.
func NewPlanShowCommand(rootCmd *RootCommand, planCmd *kingpin.CmdClause) *PlanShowCommand {
	c := &PlanShowCommand{rootCmd: rootCmd}

	c.Cmd = planCmd.Command("show", "Show a plan and its operations.")
	c.Cmd.Arg("id", "Plan ID.").Required().StringVar(&c.id)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PlanShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c PlanShowCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	p, err := client.GetPlan(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not get plan: %w", err)
	}

	ops, err := client.OperationsForPlan(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("could not list plan operations: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintPlan(*p, ops); err != nil {
		return fmt.Errorf("could not print plan: %w", err)
	}

	return nil
}
