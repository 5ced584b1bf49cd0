package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/herdops/internal/printer"
	"github.com/slok/herdops/pkg/lib"
)

// OpCompleteCommand completes a scheduled operation and advances its plan.
type OpCompleteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	result string
	format string
}

// NewOpCompleteCommand returns the op complete command.
func NewOpCompleteCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause) *OpCompleteCommand {
	c := &OpCompleteCommand{rootCmd: rootCmd}

	c.Cmd = opCmd.Command("complete", "Complete an operation, apply its side effects and schedule the next eligible step.")
	c.Cmd.Arg("id", "Operation ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("result", "Operation result (positive, negative), none by default.").Short('r').StringVar(&c.result)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c OpCompleteCommand) Name() string { return c.Cmd.FullCommand() }

func (c OpCompleteCommand) Run(ctx context.Context) error {
	result, err := parseResult(c.result)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: c.id, Result: result})
	if err != nil {
		return fmt.Errorf("could not complete operation: %w", err)
	}

	for _, w := range res.Warnings {
		c.rootCmd.Logger.Warningf("Side effect queued for reconciliation: %s", w)
	}

	err = newPrinter(c.rootCmd, c.format, client.Today()).PrintCompletion(printer.Completion{
		Operation: *res.Operation,
		Outcome:   string(res.Outcome),
		Next:      res.Next,
		Warnings:  res.Warnings,
	})
	if err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}

// OpAdvanceCommand advances a plan past an already completed operation.
type OpAdvanceCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	result string
	format string
}

// NewOpAdvanceCommand returns the op advance command.
func NewOpAdvanceCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause) *OpAdvanceCommand {
	c := &OpAdvanceCommand{rootCmd: rootCmd}

	c.Cmd = opCmd.Command("advance", "Schedule the step following a completed operation, only when the plan has nothing pending.")
	c.Cmd.Arg("id", "Completed operation ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("result", "Result used for the branching (positive, negative), none by default.").Short('r').StringVar(&c.result)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c OpAdvanceCommand) Name() string { return c.Cmd.FullCommand() }

func (c OpAdvanceCommand) Run(ctx context.Context) error {
	result, err := parseResult(c.result)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.AdvanceOperation(ctx, lib.AdvanceRequest{OperationID: c.id, Result: result})
	if err != nil {
		return fmt.Errorf("could not advance plan: %w", err)
	}

	for _, w := range res.Warnings {
		c.rootCmd.Logger.Warningf("Side effect queued for reconciliation: %s", w)
	}

	err = newPrinter(c.rootCmd, c.format, client.Today()).PrintCompletion(printer.Completion{
		Operation: *res.Operation,
		Outcome:   string(res.Outcome),
		Next:      res.Next,
		Warnings:  res.Warnings,
	})
	if err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}

// OpListCommand lists operations through one of the query views.
type OpListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	list   func(ctx context.Context, client *lib.Client) ([]lib.Operation, error)
	format string
}

func newOpListCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause, name, help string) *OpListCommand {
	c := &OpListCommand{rootCmd: rootCmd}
	c.Cmd = opCmd.Command(name, help)
	formatFlag(c.Cmd, &c.format)
	return c
}

// NewOpOverdueCommand returns the op overdue command.
func NewOpOverdueCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause) *OpListCommand {
	c := newOpListCommand(rootCmd, opCmd, "overdue", "List the pending operations scheduled before today.")
	c.list = func(ctx context.Context, client *lib.Client) ([]lib.Operation, error) {
		return client.OverdueOperations(ctx)
	}
	return c
}

// NewOpTodayCommand returns the op today command.
func NewOpTodayCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause) *OpListCommand {
	c := newOpListCommand(rootCmd, opCmd, "today", "List the pending operations scheduled for today.")
	c.list = func(ctx context.Context, client *lib.Client) ([]lib.Operation, error) {
		return client.TodayOperations(ctx)
	}
	return c
}

// NewOpUpcomingCommand returns the op upcoming command.
func NewOpUpcomingCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause) *OpListCommand {
	c := newOpListCommand(rootCmd, opCmd, "upcoming", "List the pending operations scheduled in the next days.")
	days := c.Cmd.Flag("days", "Number of days ahead, today excluded.").Short('d').Default("7").Int()
	c.list = func(ctx context.Context, client *lib.Client) ([]lib.Operation, error) {
		return client.UpcomingOperations(ctx, *days)
	}
	return c
}

// NewOpAnimalCommand returns the op animal command.
func NewOpAnimalCommand(rootCmd *RootCommand, opCmd *kingpin.CmdClause) *OpListCommand {
	c := newOpListCommand(rootCmd, opCmd, "animal", "List every operation of an animal, completed included.")
	animalID := c.Cmd.Arg("animal-id", "Animal ID.").Required().String()
	c.list = func(ctx context.Context, client *lib.Client) ([]lib.Operation, error) {
		return client.OperationsForAnimal(ctx, *animalID)
	}
	return c
}

func (c OpListCommand) Name() string { return c.Cmd.FullCommand() }

func (c OpListCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ops, err := c.list(ctx, client)
	if err != nil {
		return fmt.Errorf("could not list operations: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintOperations(ops); err != nil {
		return fmt.Errorf("could not print operations: %w", err)
	}

	return nil
}
