package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/herdops/pkg/lib"
)

// AnimalAddCommand registers an animal in the built-in registry.
type AnimalAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id      string
	status  string
	groupID string
}

// NewAnimalAddCommand returns the animal add command.
func NewAnimalAddCommand(rootCmd *RootCommand, animalCmd *kingpin.CmdClause) *AnimalAddCommand {
	c := &AnimalAddCommand{rootCmd: rootCmd}

	c.Cmd = animalCmd.Command("add", "Register an animal so step side effects can be applied to it.")
	c.Cmd.Arg("id", "Animal ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("status", "Initial status.").StringVar(&c.status)
	c.Cmd.Flag("group", "Initial group ID.").StringVar(&c.groupID)

	return c
}

func (c AnimalAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c AnimalAddCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.CreateAnimal(ctx, lib.Animal{ID: c.id, Status: c.status, GroupID: c.groupID}); err != nil {
		return fmt.Errorf("could not add animal: %w", err)
	}

	if err := newPrinter(c.rootCmd, formatTable, client.Today()).PrintMessage(fmt.Sprintf("Added animal: %s", c.id)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

// AnimalListCommand lists the animals of the built-in registry.
type AnimalListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewAnimalListCommand returns the animal list command.
func NewAnimalListCommand(rootCmd *RootCommand, animalCmd *kingpin.CmdClause) *AnimalListCommand {
	c := &AnimalListCommand{rootCmd: rootCmd}

	c.Cmd = animalCmd.Command("list", "List the registered animals with their status and group.")
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c AnimalListCommand) Name() string { return c.Cmd.FullCommand() }

func (c AnimalListCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	animals, err := client.ListAnimals(ctx)
	if err != nil {
		return fmt.Errorf("could not list animals: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintAnimals(animals); err != nil {
		return fmt.Errorf("could not print animals: %w", err)
	}

	return nil
}
