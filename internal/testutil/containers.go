// Package testutil starts the throwaway Postgres and RustFS containers used
// by the integration and e2e suites, and seeds the CRM rows the assistant
// reads but never writes.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgImage    = "pgvector/pgvector:0.8.1-pg18"
	pgUser     = "leadbot"
	rustfsKey  = "rustfsadmin"
	rustfsPort = "9000/tcp"
	pgPort     = "5432/tcp"
)

// PostgresContainer is a disposable Postgres with the pgvector extension
// available.
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
	User      string
	Password  string
	Database  string
}

// NewPostgresContainer starts Postgres. The container is removed when the
// test ends.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	c, host, port := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        pgImage,
		ExposedPorts: []string{pgPort},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgUser,
			"POSTGRES_DB":       pgUser,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(pgPort),
		).WithStartupTimeout(60 * time.Second),
	}, pgPort)

	return &PostgresContainer{
		Container: c,
		Host:      host,
		Port:      port,
		User:      pgUser,
		Password:  pgUser,
		Database:  pgUser,
	}
}

// ConnectionString returns the PostgreSQL connection string
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pc.User, pc.Password, pc.Host, pc.Port, pc.Database)
}

// RustFSContainer is a disposable S3-compatible store for the document
// archive. Access and secret key are both "rustfsadmin".
type RustFSContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewRustFSContainer starts RustFS. The container is removed when the test
// ends.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	c, host, port := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "rustfs/rustfs:latest",
		ExposedPorts: []string{rustfsPort},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": rustfsKey,
			"RUSTFS_SECRET_KEY": rustfsKey,
		},
		WaitingFor: wait.ForListeningPort(rustfsPort).WithStartupTimeout(30 * time.Second),
	}, rustfsPort)

	return &RustFSContainer{Container: c, Host: host, Port: port}
}

// Endpoint returns the RustFS endpoint URL
func (rc *RustFSContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", rc.Host, rc.Port)
}

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) (testcontainers.Container, string, string) {
	t.Helper()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get %s host: %v", req.Image, err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get %s port: %v", req.Image, err)
	}
	return c, host, mapped.Port()
}

// NewTestPool connects to pc, retrying while Postgres finishes booting, and
// applies the up migrations of migrationsDir. The pool is closed when the
// test ends.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	var pool *pgxpool.Pool
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.New(ctx, pc.ConnectionString())
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := RunMigrations(ctx, pool, migrationsDir); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return pool
}

// RunMigrations applies every *.up.sql file of dir in name order inside one
// transaction.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, name := range files {
			content, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("failed to read migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to run migration %s: %w", name, err)
			}
		}
		return nil
	})
}

// SeedChannel inserts a channel with a fixed id.
func SeedChannel(ctx context.Context, t *testing.T, pool *pgxpool.Pool, id int64) {
	t.Helper()
	_, err := pool.Exec(ctx,
		`INSERT INTO channels (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		id, fmt.Sprintf("channel-%d", id),
	)
	if err != nil {
		t.Fatalf("failed to seed channel %d: %v", id, err)
	}
}

// SeedContact inserts a contact. An empty name is stored as NULL.
func SeedContact(ctx context.Context, t *testing.T, pool *pgxpool.Pool, waID, name string, channelID int64) {
	t.Helper()
	var n any
	if name != "" {
		n = name
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO contacts (wa_id, name, channel_id) VALUES ($1, $2, $3)`,
		waID, n, channelID,
	)
	if err != nil {
		t.Fatalf("failed to seed contact %s: %v", waID, err)
	}
}
