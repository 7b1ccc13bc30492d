//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestTrendwatchWithMySQL tests the trendwatch CLI with a MySQL backend.
func TestTrendwatchWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "trendwatch",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/trendwatch?parseTime=true", host, port.Port())
	runEngineCycle(t, "mysql", connStr)
}

// TestTrendwatchWithPostgres tests the trendwatch CLI with a PostgreSQL backend.
func TestTrendwatchWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runEngineCycle(t, "postgresql", connStr)
}

// runEngineCycle drives one full batch cycle against a live database backend:
// migrate, ingest, rescore, then the read surfaces.
func runEngineCycle(t *testing.T, backend, connStr string) {
	_ = os.Setenv("TRENDWATCH_STORE_BACKEND", backend)
	_ = os.Setenv("TRENDWATCH_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("TRENDWATCH_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("TRENDWATCH_STORE_DB_CONNECT") }()

	asOf := time.Now().UTC().Truncate(time.Minute)
	mentionsPath := writeSampleMentions(t, asOf)

	// Apply schema migrations
	err := runTrendwatchCommand(t, "store", "migrate")
	require.NoError(t, err)

	// Ingest the sample batch, pinned to the batch clock
	err = runTrendwatchCommand(t, "ingest", mentionsPath, "--as-of", asOf.Format(time.RFC3339))
	require.NoError(t, err)

	// Ingesting the same batch again must be a no-op, not an error
	err = runTrendwatchCommand(t, "ingest", mentionsPath, "--as-of", asOf.Format(time.RFC3339))
	require.NoError(t, err)

	// Score the batch
	err = runTrendwatchCommand(t, "rescore", "--as-of", asOf.Format(time.RFC3339))
	require.NoError(t, err)

	// Read surfaces
	err = runTrendwatchCommand(t, "trends", "--limit", "5")
	require.NoError(t, err)

	err = runTrendwatchCommand(t, "alerts")
	require.NoError(t, err)

	err = runTrendwatchCommand(t, "metrics")
	require.NoError(t, err)

	err = runTrendwatchCommand(t, "store", "status")
	require.NoError(t, err)

	err = runTrendwatchCommand(t, "store", "clear")
	require.NoError(t, err)
}

func runTrendwatchCommand(t *testing.T, args ...string) error {
	binaryPath := getTrendwatchBinary()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
