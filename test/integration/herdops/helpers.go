package herdops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/herdops/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary      string
	PostgresDSN string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "herdops"
	}

	// go test changes the CWD to the package directory, relative paths would break.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("HERDOPS_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("herdops binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation  = "HERDOPS_INTEGRATION"
		envBinary      = "HERDOPS_INTEGRATION_BINARY"
		envPostgresDSN = "HERDOPS_INTEGRATION_POSTGRES_DSN"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary:      os.Getenv(envBinary),
		PostgresDSN: os.Getenv(envPostgresDSN),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Backend selects the storage the commands run against.
type Backend struct {
	Name string
	Args string
}

// SQLiteBackend returns a backend on a fresh SQLite database.
func SQLiteBackend(t *testing.T) Backend {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test-herdops.db")
	return Backend{Name: "sqlite", Args: fmt.Sprintf("--backend sqlite --db-path %s", dbPath)}
}

// Backends returns the backends available for the config, postgres only when a DSN is set.
func Backends(t *testing.T, config Config) []Backend {
	t.Helper()
	backends := []Backend{SQLiteBackend(t)}
	if config.PostgresDSN != "" {
		backends = append(backends, Backend{Name: "postgres", Args: fmt.Sprintf("--backend postgres --postgres-dsn %s", config.PostgresDSN)})
	}
	return backends
}

// RunHerdopsCmd runs a herdops command on the backend. Logging is suppressed.
func RunHerdopsCmd(ctx context.Context, config Config, backend Backend, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("%s %s", backend.Args, cmdArgs)
	return testutils.RunHerdops(ctx, nil, config.Binary, args, true)
}

// RunImport imports a protocol file.
func RunImport(ctx context.Context, config Config, backend Backend, path string) (stdout, stderr []byte, err error) {
	return RunHerdopsCmd(ctx, config, backend, fmt.Sprintf("template import %s --format json", path))
}

// RunAnimalAdd registers an animal.
func RunAnimalAdd(ctx context.Context, config Config, backend Backend, id, status, group string) (stdout, stderr []byte, err error) {
	return RunHerdopsCmd(ctx, config, backend, fmt.Sprintf("animal add %s --status %s --group %s", id, status, group))
}

// RunAssign assigns a template to an animal starting today.
func RunAssign(ctx context.Context, config Config, backend Backend, templateID, animalID string) (stdout, stderr []byte, err error) {
	return RunHerdopsCmd(ctx, config, backend, fmt.Sprintf("plan assign -t %s -a %s --format json", templateID, animalID))
}

// RunAssignBulk assigns a template to the animals listed in a file.
func RunAssignBulk(ctx context.Context, config Config, backend Backend, templateID, animalsFile string) (stdout, stderr []byte, err error) {
	return RunHerdopsCmd(ctx, config, backend, fmt.Sprintf("plan assign-bulk -t %s --animals-file %s --format json", templateID, animalsFile))
}

// RunComplete completes an operation with an optional result.
func RunComplete(ctx context.Context, config Config, backend Backend, opID, result string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("op complete %s --format json", opID)
	if result != "" {
		args += " -r " + result
	}
	return RunHerdopsCmd(ctx, config, backend, args)
}

// RunOpAnimal lists every operation of an animal.
func RunOpAnimal(ctx context.Context, config Config, backend Backend, animalID string) (stdout, stderr []byte, err error) {
	return RunHerdopsCmd(ctx, config, backend, fmt.Sprintf("op animal %s --format json", animalID))
}
