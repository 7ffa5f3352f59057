// Package testhelper runs integration tests against a disposable PostgreSQL
// container with the streamlog schema applied.
package testhelper

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
)

const defaultImage = "postgres:17-alpine"

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// SetupTestDB returns a pool on the shared test database. The container is
// started and migrated on first use and lives until the process exits.
// STREAMLOG_TEST_DSN points the tests at an existing database instead.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	once.Do(func() {
		sharedDSN, initErr = prepare()
	})
	if initErr != nil {
		t.Fatalf("testhelper: setup test DB: %v", initErr)
	}

	cfg, err := pgxpool.ParseConfig(sharedDSN)
	if err != nil {
		t.Fatalf("testhelper: parse DSN: %v", err)
	}
	// The notify listener holds a connection of its own.
	cfg.MaxConns = 8
	cfg.ConnConfig.RuntimeParams["application_name"] = "streamlog-test"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("testhelper: create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// DSN returns the connection string of the shared test database. Call it
// after SetupTestDB.
func DSN() string {
	return sharedDSN
}

func prepare() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := os.Getenv("STREAMLOG_TEST_DSN")
	if dsn == "" {
		var err error
		if dsn, err = startContainer(ctx); err != nil {
			return "", err
		}
	}

	if _, err := postgres.MigrateUp(ctx, dsn); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return dsn, nil
}

func startContainer(ctx context.Context) (string, error) {
	image := os.Getenv("STREAMLOG_TEST_PG_IMAGE")
	if image == "" {
		image = defaultImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "streamlog",
				"POSTGRES_PASSWORD": "streamlog",
				"POSTGRES_DB":       "streamlog",
			},
			// Postgres restarts once after initdb; wait for the second ready line.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://streamlog:streamlog@%s:%s/streamlog?sslmode=disable", host, port.Port()), nil
}
