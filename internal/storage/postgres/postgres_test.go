package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/storage"
	"github.com/slok/herdops/internal/storage/postgres"
	"github.com/slok/herdops/internal/storage/storagetest"
)

const dsnEnv = "HERDOPS_TEST_POSTGRES_DSN"

func newRepo(t *testing.T) storage.Repository {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()
	repo, err := postgres.NewRepository(ctx, postgres.RepositoryConfig{DSN: dsn, Logger: log.Noop})
	require.NoError(t, err)

	// Each test starts on empty tables.
	_, err = repo.DB().ExecContext(ctx, `TRUNCATE operation_templates, operation_steps, assigned_plans, scheduled_operations, side_effect_failures, animals RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestRepository(t *testing.T) {
	storagetest.TestRepository(t, newRepo)
}

func TestNewRepositoryConfig(t *testing.T) {
	_, err := postgres.NewRepository(context.Background(), postgres.RepositoryConfig{})
	assert.Error(t, err)
}

func TestDialectUniqueViolation(t *testing.T) {
	assert.False(t, postgres.Dialect.IsUniqueViolation(assert.AnError))
	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1", postgres.Dialect.Rebind("SELECT 1 FROM t WHERE a = ?"))
}
