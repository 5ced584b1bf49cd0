package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/printer"
	"github.com/slok/herdops/pkg/lib"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug             bool
	NoLog             bool
	NoColor           bool
	LoggerType        string
	Backend           string
	DBPath            string
	PostgresDSN       string
	Timezone          string
	SideEffectTimeout time.Duration

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("backend", "Storage backend.").Default(string(lib.BackendSQLite)).EnumVar(&c.Backend, string(lib.BackendSQLite), string(lib.BackendPostgres), string(lib.BackendMemory))

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".herdops", "herdops.db")
	app.Flag("db-path", "Path to the SQLite database file.").Envar("HERDOPS_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("postgres-dsn", "PostgreSQL connection string, used by the postgres backend.").Envar("HERDOPS_POSTGRES_DSN").StringVar(&c.PostgresDSN)
	app.Flag("timezone", "Farm time zone used to compute today (IANA name).").Default("UTC").StringVar(&c.Timezone)
	app.Flag("side-effect-timeout", "Timeout of every animal registry change.").Default("5s").DurationVar(&c.SideEffectTimeout)

	return c
}

// libConfig returns the SDK configuration from the global flags.
func (r RootCommand) libConfig() (lib.Config, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return lib.Config{}, fmt.Errorf("invalid timezone %q: %w", r.Timezone, err)
	}

	return lib.Config{
		Backend:           lib.Backend(r.Backend),
		DBPath:            r.DBPath,
		PostgresDSN:       r.PostgresDSN,
		Location:          loc,
		SideEffectTimeout: r.SideEffectTimeout,
		Logger:            r.Logger,
	}, nil
}

// newClient returns a SDK client configured with the global flags. The caller must close it.
func newClient(ctx context.Context, rootCmd *RootCommand) (*lib.Client, error) {
	cfg, err := rootCmd.libConfig()
	if err != nil {
		return nil, err
	}

	client, err := lib.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create client: %w", err)
	}

	return client, nil
}

func newPrinter(rootCmd *RootCommand, format string, today model.Date) printer.Printer {
	switch format {
	case formatJSON:
		return printer.NewJSONPrinter(rootCmd.Stdout)
	default: // table
		return printer.NewTablePrinter(rootCmd.Stdout, today)
	}
}

func formatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

// parseDate parses a YYYY-MM-DD date, empty means today.
func parseDate(s string, today model.Date) (model.Date, error) {
	if s == "" {
		return today, nil
	}
	return model.ParseDate(s)
}

// parseResult parses an operation result, case insensitive. Empty means no result.
func parseResult(s string) (model.Result, error) {
	r := model.Result(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid result %q (must be: positive, negative): %w", s, model.ErrNotValid)
	}
	return r, nil
}
