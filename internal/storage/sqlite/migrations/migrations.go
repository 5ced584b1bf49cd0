// Package migrations has the SQLite schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/storage/sqldb"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Up applies the pending schema migrations to db.
func Up(ctx context.Context, db *sql.DB, logger log.Logger) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	return sqldb.Migrate(ctx, migrationFiles, "sqlite3", driver, logger)
}
