package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/herdops/cmd/herdops/commands"
	"github.com/slok/herdops/internal/log"
	loglogrus "github.com/slok/herdops/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("herdops", "Farm reproductive operations workflow engine.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Template subcommands share a parent command.
	templateCmd := app.Command("template", "Manage operation templates.")
	templateCreateCmd := commands.NewTemplateCreateCommand(rootCmd, templateCmd)
	templateUpdateCmd := commands.NewTemplateUpdateCommand(rootCmd, templateCmd)
	templateRmCmd := commands.NewTemplateRmCommand(rootCmd, templateCmd)
	templateListCmd := commands.NewTemplateListCommand(rootCmd, templateCmd)
	templateShowCmd := commands.NewTemplateShowCommand(rootCmd, templateCmd)
	templateImportCmd := commands.NewTemplateImportCommand(rootCmd, templateCmd)

	stepCmd := app.Command("step", "Manage template steps.")
	stepAddCmd := commands.NewStepAddCommand(rootCmd, stepCmd)
	stepUpdateCmd := commands.NewStepUpdateCommand(rootCmd, stepCmd)
	stepRmCmd := commands.NewStepRmCommand(rootCmd, stepCmd)

	planCmd := app.Command("plan", "Manage plans assigned to animals.")
	planAssignCmd := commands.NewPlanAssignCommand(rootCmd, planCmd)
	planAssignBulkCmd := commands.NewPlanAssignBulkCommand(rootCmd, planCmd)
	planCompleteCmd := commands.NewPlanCompleteCommand(rootCmd, planCmd)
	planRmCmd := commands.NewPlanRmCommand(rootCmd, planCmd)
	planListCmd := commands.NewPlanListCommand(rootCmd, planCmd)
	planShowCmd := commands.NewPlanShowCommand(rootCmd, planCmd)

	opCmd := app.Command("op", "Manage scheduled operations.")
	opCompleteCmd := commands.NewOpCompleteCommand(rootCmd, opCmd)
	opAdvanceCmd := commands.NewOpAdvanceCommand(rootCmd, opCmd)
	opOverdueCmd := commands.NewOpOverdueCommand(rootCmd, opCmd)
	opTodayCmd := commands.NewOpTodayCommand(rootCmd, opCmd)
	opUpcomingCmd := commands.NewOpUpcomingCommand(rootCmd, opCmd)
	opAnimalCmd := commands.NewOpAnimalCommand(rootCmd, opCmd)

	animalCmd := app.Command("animal", "Manage the animal registry.")
	animalAddCmd := commands.NewAnimalAddCommand(rootCmd, animalCmd)
	animalListCmd := commands.NewAnimalListCommand(rootCmd, animalCmd)

	reconcileCmd := commands.NewReconcileCommand(rootCmd, app)
	watchCmd := commands.NewWatchCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		templateCreateCmd.Name(): templateCreateCmd,
		templateUpdateCmd.Name(): templateUpdateCmd,
		templateRmCmd.Name():     templateRmCmd,
		templateListCmd.Name():   templateListCmd,
		templateShowCmd.Name():   templateShowCmd,
		templateImportCmd.Name(): templateImportCmd,
		stepAddCmd.Name():        stepAddCmd,
		stepUpdateCmd.Name():     stepUpdateCmd,
		stepRmCmd.Name():         stepRmCmd,
		planAssignCmd.Name():     planAssignCmd,
		planAssignBulkCmd.Name(): planAssignBulkCmd,
		planCompleteCmd.Name():   planCompleteCmd,
		planRmCmd.Name():         planRmCmd,
		planListCmd.Name():       planListCmd,
		planShowCmd.Name():       planShowCmd,
		opCompleteCmd.Name():     opCompleteCmd,
		opAdvanceCmd.Name():      opAdvanceCmd,
		opOverdueCmd.Name():      opOverdueCmd,
		opTodayCmd.Name():        opTodayCmd,
		opUpcomingCmd.Name():     opUpcomingCmd,
		opAnimalCmd.Name():       opAnimalCmd,
		animalAddCmd.Name():      animalAddCmd,
		animalListCmd.Name():     animalListCmd,
		reconcileCmd.Name():      reconcileCmd,
		watchCmd.Name():          watchCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that only print listings (table/JSON).
	// Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"template list": true,
		"template show": true,
		"plan list":     true,
		"plan show":     true,
		"op overdue":    true,
		"op today":      true,
		"op upcoming":   true,
		"op animal":     true,
		"animal list":   true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(_ context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Stdout is kept for the printers.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
