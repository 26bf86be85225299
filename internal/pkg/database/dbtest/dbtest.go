// Package dbtest opens migrated databases for package tests: SQLite always,
// Postgres when ORDER_TEST_POSTGRES_DSN holds a key=value DSN.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Open returns a fresh migrated database that is closed when the test ends.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "pos.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Exec runs fixture statements written with ? placeholders.
func Exec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// PostgresDSNEnv names the variable holding a Postgres DSN for lock tests.
const PostgresDSNEnv = "ORDER_TEST_POSTGRES_DSN"

// OpenPostgres returns a migrated database in a throwaway schema of the server
// named by ORDER_TEST_POSTGRES_DSN, with a real connection pool. The test is
// skipped when the variable is unset.
func OpenPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	admin, err := sqlx.Connect(database.DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() { admin.Close() })

	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if _, err := admin.Exec("CREATE SCHEMA " + schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { _, _ = admin.Exec("DROP SCHEMA " + schema + " CASCADE") })

	db, err := sqlx.Connect(database.DriverPostgres, dsn+" search_path="+schema)
	if err != nil {
		t.Fatalf("connect postgres schema %s: %v", schema, err)
	}
	db.SetMaxOpenConns(10)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
