package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

// ReconcileCommand retries the side effects that failed while completing operations.
type ReconcileCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	dryRun bool
	format string
}

// NewReconcileCommand returns the reconcile command.
func NewReconcileCommand(rootCmd *RootCommand, app *kingpin.Application) *ReconcileCommand {
	c := &ReconcileCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("reconcile", "Retry the animal registry changes that failed, prints the ones still pending.")
	c.Cmd.Flag("dry-run", "Only list the pending side effects.").BoolVar(&c.dryRun)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ReconcileCommand) Name() string { return c.Cmd.FullCommand() }

func (c ReconcileCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	p := newPrinter(c.rootCmd, c.format, client.Today())

	if c.dryRun {
		pending, err := client.PendingSideEffects(ctx)
		if err != nil {
			return fmt.Errorf("could not list pending side effects: %w", err)
		}
		if err := p.PrintSideEffectFailures(pending); err != nil {
			return fmt.Errorf("could not print side effects: %w", err)
		}
		return nil
	}

	res, err := client.RetrySideEffects(ctx)
	if err != nil {
		return fmt.Errorf("could not reconcile side effects: %w", err)
	}
	c.rootCmd.Logger.Infof("Reconciled %d side effects, %d still pending", len(res.Resolved), len(res.Failed))

	if err := p.PrintSideEffectFailures(res.Failed); err != nil {
		return fmt.Errorf("could not print side effects: %w", err)
	}

	return nil
}
