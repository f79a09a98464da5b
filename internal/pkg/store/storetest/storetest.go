package storetest

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kateshostak/taskman/internal/pkg/store"
)

const postgresImage = "postgres:16-alpine"

// Open opens a migrated SQLite database in a temporary directory.
func Open(t testing.TB) *store.DB {
	t.Helper()

	return open(t, store.Config{
		Driver:  store.DriverSQLite,
		URL:     filepath.Join(t.TempDir(), "taskman.db"),
		Migrate: true,
	})
}

// OpenPostgres starts a disposable postgres container and opens a migrated
// database on it. The test is skipped in -short mode or without docker.
func OpenPostgres(t testing.TB) *store.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}

	ctx := context.Background()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	defer provider.Close()

	if err := provider.Health(ctx); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "taskman",
				"POSTGRES_PASSWORD": "taskman",
				"POSTGRES_DB":       "taskman",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}

	return open(t, store.Config{
		Driver:      store.DriverPostgres,
		URL:         fmt.Sprintf("postgres://taskman:taskman@%s/taskman?sslmode=disable", net.JoinHostPort(host, port.Port())),
		Migrate:     true,
		PingTimeout: 5 * time.Second,
	})
}

// ForEachDriver runs test once against SQLite and once against postgres.
func ForEachDriver(t *testing.T, test func(t *testing.T, db *store.DB)) {
	t.Run(store.DriverSQLite, func(t *testing.T) {
		test(t, Open(t))
	})

	t.Run(store.DriverPostgres, func(t *testing.T) {
		test(t, OpenPostgres(t))
	})
}

func open(t testing.TB, cfg store.Config) *store.DB {
	t.Helper()

	db, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
