package sqldb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/herdops/internal/log"
)

// Migrate applies the pending up migrations in the sql directory of files using
// the backend migration driver. The schema is only ever moved forward.
func Migrate(ctx context.Context, files fs.FS, driverName string, driver database.Driver, logger log.Logger) error {
	if logger == nil {
		logger = log.Noop
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("could not create fs: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Errorf("could not close fs: %s", err)
		}
	}()

	inst, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := inst.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, dirty, err := inst.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("could not get schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", version)
	}

	logger.Debugf("Migrations applied successfully (version %d)", version)
	return nil
}
