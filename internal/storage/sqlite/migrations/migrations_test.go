package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/slok/herdops/internal/storage/sqlite/migrations"
)

func openDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "herdops.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUp(t *testing.T) {
	tests := map[string]struct {
		runs int
	}{
		"Migrating a new database should create the schema.": {
			runs: 1,
		},
		"Migrating an already migrated database should be a no-op.": {
			runs: 3,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := openDB(t)

			for i := 0; i < test.runs; i++ {
				require.NoError(t, migrations.Up(ctx, db, nil))
			}

			var version int
			var dirty bool
			require.NoError(t, db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &dirty))
			assert.Equal(t, 1, version)
			assert.False(t, dirty)

			var tables int
			require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'scheduled_operations'`).Scan(&tables))
			assert.Equal(t, 1, tables)
		})
	}
}

func TestUpMissingDB(t *testing.T) {
	err := migrations.Up(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestSchemaBoundsStepDelay(t *testing.T) {
	tests := map[string]struct {
		days   int
		expErr bool
	}{
		"Zero days should be stored.":        {days: 0},
		"Ten years should be stored.":        {days: 3650},
		"Negative days should be rejected.":  {days: -1, expErr: true},
		"Over ten years should be rejected.": {days: 3651, expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := openDB(t)
			require.NoError(t, migrations.Up(ctx, db, nil))

			_, err := db.ExecContext(ctx, `INSERT INTO operation_templates (id, name, created_at, updated_at) VALUES ('t1', 'Ovsynch', 0, 0)`)
			require.NoError(t, err)

			_, err = db.ExecContext(ctx, `
				INSERT INTO operation_steps (id, template_id, operation_type, name, days_after_previous)
				VALUES ('s1', 't1', 'INSEMINATION', 'Insemination', ?)`, test.days)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
