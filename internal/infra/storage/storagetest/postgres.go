//go:build integration

// Package storagetest поднимает PostgreSQL в контейнере для интеграционных тестов.
// Запуск: go test -tags integration ./...
package storagetest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
)

const (
	testUser     = "test"
	testPassword = "testpass"
	migration    = "migrations/001_init.up.sql"
)

var (
	containerOnce sync.Once
	containerAddr string
	containerErr  error
)

// NewDB создаёт чистую базу с применённой схемой. База удаляется после теста,
// контейнер общий на процесс и убирается ryuk
func NewDB(t *testing.T) *dbmetrics.DB {
	t.Helper()

	addr := startContainer(t)
	dbName := "carwash_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := sql.Open("postgres", dsn(addr, "postgres"))
	require.NoError(t, err)
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = admin.ExecContext(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err, "create test database")

	db, err := sql.Open("postgres", dsn(addr, dbName))
	require.NoError(t, err)
	db.SetMaxOpenConns(50)

	t.Cleanup(func() {
		_ = db.Close()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		cleanup, err := sql.Open("postgres", dsn(addr, "postgres"))
		if err != nil {
			t.Logf("drop %s: %v", dbName, err)
			return
		}
		defer cleanup.Close()
		if _, err := cleanup.ExecContext(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			t.Logf("drop %s: %v", dbName, err)
		}
	})

	schema, err := os.ReadFile(migrationPath(t))
	require.NoError(t, err, "read migration")
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err, "apply migration")

	return dbmetrics.Wrap(db)
}

func startContainer(t *testing.T) string {
	t.Helper()

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
				return dsn(host+":"+port.Port(), "postgres")
			}).WithStartupTimeout(90 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			containerErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			containerErr = fmt.Errorf("container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			containerErr = fmt.Errorf("container port: %w", err)
			return
		}
		containerAddr = host + ":" + port.Port()
	})

	require.NoError(t, containerErr)
	return containerAddr
}

func dsn(addr, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", testUser, testPassword, addr, dbName)
}

// migrationPath ищет схему вверх от пакета теста до корня модуля
func migrationPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, migration)
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above test package")
		dir = parent
	}
}
