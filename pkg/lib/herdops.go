package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/herdops/internal/animal"
	"github.com/slok/herdops/internal/animal/fake"
	"github.com/slok/herdops/internal/app/advance"
	"github.com/slok/herdops/internal/app/catalog"
	"github.com/slok/herdops/internal/app/plan"
	"github.com/slok/herdops/internal/app/query"
	"github.com/slok/herdops/internal/app/reconcile"
	"github.com/slok/herdops/internal/clock"
	"github.com/slok/herdops/internal/metrics"
	metricsprometheus "github.com/slok/herdops/internal/metrics/prometheus"
	"github.com/slok/herdops/internal/storage"
	"github.com/slok/herdops/internal/storage/memory"
	"github.com/slok/herdops/internal/storage/postgres"
	"github.com/slok/herdops/internal/storage/sqlite"
	"github.com/slok/herdops/internal/utils/keymutex"
	"github.com/slok/herdops/pkg/lib/log"
)

const (
	defaultDataDir = ".herdops"
	defaultDBFile  = "herdops.db"
)

// Clock is the source of "today". Every date the engine computes uses it.
type Clock = clock.Clock

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.herdops/herdops.db for storage and UTC as time zone.
type Config struct {
	// Backend is the persistence backend.
	// Default: [BackendSQLite].
	Backend Backend

	// DBPath is the SQLite database path.
	// Default: ~/.herdops/herdops.db.
	DBPath string

	// DataDir is the base directory for herdops data.
	// Default: ~/.herdops.
	DataDir string

	// PostgresDSN is the connection string used by [BackendPostgres].
	PostgresDSN string

	// Registry receives the step side effects (status and group changes).
	// Default: the animals table of the SQL backends, or an in-memory registry
	// for [BackendMemory]. In both cases the client animal methods are available.
	// A custom registry disables the client animal methods.
	Registry AnimalRegistry

	// Location is the farm time zone "today" is computed in.
	// Default: UTC.
	Location *time.Location

	// Clock overrides the system clock. Location is ignored when set.
	Clock Clock

	// SideEffectTimeout bounds every animal registry call.
	// Default: 5s.
	SideEffectTimeout time.Duration

	// BulkConcurrency is the number of assignments run at the same time by [Client.AssignPlanBulk].
	// Default: 8.
	BulkConcurrency int

	// MetricsRegisterer registers the engine Prometheus metrics. Nil disables metrics.
	MetricsRegisterer prometheus.Registerer

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}

	switch c.Backend {
	case BackendSQLite:
		if c.DataDir == "" && c.DBPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("could not get user home dir: %w", err)
			}
			c.DataDir = filepath.Join(home, defaultDataDir)
		}
		if c.DBPath == "" {
			c.DBPath = filepath.Join(c.DataDir, defaultDBFile)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn is required: %w", ErrNotValid)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported backend %q: %w", c.Backend, ErrNotValid)
	}

	if c.Clock == nil {
		c.Clock = clock.NewSystem(c.Location)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point, the composition root wiring the backend,
// the animal registry, the clock and the engine services.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo      storage.Repository
	animals   animal.Store
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    log.Logger
	catalog   *catalog.Service
	plans     *plan.Service
	engine    *advance.Service
	query     *query.Service
	reconcile *reconcile.Service
	closeFn   func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		clock:   cfg.Clock,
		metrics: metrics.Noop,
		logger:  cfg.Logger,
		closeFn: func() error { return nil },
	}

	if cfg.MetricsRegisterer != nil {
		c.metrics = metricsprometheus.NewRecorder(cfg.MetricsRegisterer)
	}

	switch cfg.Backend {
	case BackendSQLite:
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo, c.animals, c.closeFn = repo, repo.Animals(), repo.Close
	case BackendPostgres:
		repo, err := postgres.NewRepository(ctx, postgres.RepositoryConfig{
			DSN:    cfg.PostgresDSN,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo, c.animals, c.closeFn = repo, repo.Animals(), repo.Close
	case BackendMemory:
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo, c.animals = repo, fake.NewRegistry()
	}

	var registry animal.Registry = c.animals
	if cfg.Registry != nil {
		registry = cfg.Registry
		c.animals = nil
	}

	if err := c.wire(cfg, registry); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Client) wire(cfg Config, registry animal.Registry) error {
	// Plans and the engine share the lock so a plan has a single writer.
	locker := keymutex.New()

	var err error
	c.catalog, err = catalog.NewService(catalog.ServiceConfig{
		Repository: c.repo,
		Clock:      c.clock,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create catalog service: %w", err)
	}

	c.engine, err = advance.NewService(advance.ServiceConfig{
		Repository:        c.repo,
		Registry:          registry,
		Clock:             c.clock,
		Locker:            locker,
		SideEffectTimeout: cfg.SideEffectTimeout,
		Metrics:           c.metrics,
		Logger:            c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create advance service: %w", err)
	}

	c.plans, err = plan.NewService(plan.ServiceConfig{
		Repository:      c.repo,
		Seeder:          c.engine,
		Clock:           c.clock,
		Locker:          locker,
		BulkConcurrency: cfg.BulkConcurrency,
		Metrics:         c.metrics,
		Logger:          c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create plan service: %w", err)
	}

	c.query, err = query.NewService(query.ServiceConfig{
		Repository: c.repo,
		Clock:      c.clock,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create query service: %w", err)
	}

	c.reconcile, err = reconcile.NewService(reconcile.ServiceConfig{
		Repository:        c.repo,
		Registry:          registry,
		Clock:             c.clock,
		SideEffectTimeout: cfg.SideEffectTimeout,
		Metrics:           c.metrics,
		Logger:            c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create reconcile service: %w", err)
	}

	return nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// Today returns the current date in the client time zone.
func (c *Client) Today() Date { return c.clock.Today() }
