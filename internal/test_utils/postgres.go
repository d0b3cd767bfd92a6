package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/officehours/officehours/internal/config"
	"github.com/officehours/officehours/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	dbName     = "officehours"
	dbUser     = "test_officehours"
	dbPassword = "test_officehours"
	snapshot   = "postgres-test-snapshot"
)

// TestDB is a migrated Postgres container shared by the tests of one package.
type TestDB struct {
	Container *postgres.PostgresContainer
	Config    config.Database
}

func preparePostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %v", err)
	}

	pgContainer, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return nil, err
	}
	return pgContainer, nil
}

// StartDB sets up a Postgres instance, applies all migrations and snapshots the result
// so Reset can bring every test back to a clean schema.
func StartDB(ctx context.Context) (*TestDB, error) {
	container, err := preparePostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, err
	}
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   dbUser,
		Pass:   dbPassword,
		Name:   dbName,
		Schema: "officehours",
	}

	if err := database.Migrate(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	if err := container.Snapshot(ctx, postgres.WithSnapshotName(snapshot)); err != nil {
		return nil, fmt.Errorf("failed to snapshot postgres container: %w", err)
	}
	return &TestDB{Container: container, Config: cfg}, nil
}

// Open connects to the container. The caller closes the pool.
func (t *TestDB) Open(ctx context.Context) (*pgxpool.Pool, error) {
	return database.Open(ctx, t.Config)
}

// Reset restores the snapshot taken after migrations.
func (t *TestDB) Reset(ctx context.Context) error {
	return t.Container.Restore(ctx, postgres.WithSnapshotName(snapshot))
}

func (t *TestDB) Terminate(ctx context.Context) {
	if err := t.Container.Terminate(ctx); err != nil {
		log.Warnf("failed to terminate postgres container: %v", err)
	}
}

// findProjectRoot attempts to locate the project root directory
// It looks for .git directory or go.mod file
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if fileExists(filepath.Join(dir, ".git")) || fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
