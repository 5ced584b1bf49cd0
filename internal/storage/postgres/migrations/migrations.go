// Package migrations has the PostgreSQL schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/storage/sqldb"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// MigrationsTable is the table that tracks the applied schema version.
const MigrationsTable = "herdops_schema_migrations"

// Up applies the pending schema migrations to db.
func Up(ctx context.Context, db *sql.DB, logger log.Logger) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	return sqldb.Migrate(ctx, migrationFiles, "pgx5", driver, logger)
}
