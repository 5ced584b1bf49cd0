package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/storage/postgres/migrations"
	"github.com/slok/herdops/internal/storage/sqldb"
)

const uniqueViolationCode = "23505"

// Dialect is the PostgreSQL SQL dialect.
var Dialect = sqldb.Dialect{
	Name:   "postgres",
	Rebind: sqldb.DollarRebind,
	IsUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
	},
}

// RepositoryConfig is the configuration for the PostgreSQL repository.
type RepositoryConfig struct {
	DSN          string
	MaxOpenConns int
	Logger       log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Postgres"})
	return nil
}

// Repository is a PostgreSQL implementation of storage.Repository.
type Repository struct {
	*sqldb.Repository
	db     *sql.DB
	logger log.Logger
}

// NewRepository connects to PostgreSQL, applies the schema migrations and returns the repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	if err := migrations.Up(ctx, db, cfg.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	repo, err := sqldb.NewRepository(sqldb.RepositoryConfig{
		DB:      db,
		Dialect: Dialect,
		Logger:  cfg.Logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create sql repository: %w", err)
	}

	cfg.Logger.Debugf("Postgres repository initialized")

	return &Repository{Repository: repo, db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection pool.
func (r *Repository) Close() error { return r.db.Close() }
