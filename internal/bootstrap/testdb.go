package bootstrap

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/arllen133/userdao"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// OpenTest returns a session on an empty users table. It uses an in-memory
// SQLite database unless TEST_DRIVER and TEST_DSN point at MySQL or
// PostgreSQL, in which case the table is created if needed and truncated.
// The pool is closed when the test ends.
func OpenTest(tb testing.TB, opts ...userdao.SessionOption) (*sql.DB, *userdao.Session) {
	tb.Helper()

	driver := os.Getenv("TEST_DRIVER")
	dsn := os.Getenv("TEST_DSN")
	if driver == "" {
		driver = "sqlite3"
		dsn = ":memory:"
	}

	dialect, err := userdao.DialectFor(driver)
	if err != nil {
		tb.Fatalf("unsupported TEST_DRIVER: %v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}
	if driver == "sqlite3" {
		// every pooled connection to :memory: would be a separate database
		db.SetMaxOpenConns(1)
	}
	tb.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := Apply(ctx, db, dialect.Name()); err != nil {
		tb.Fatalf("failed to create users table: %v", err)
	}
	if err := Reset(ctx, db, dialect.Name()); err != nil {
		tb.Fatalf("failed to reset users table: %v", err)
	}

	return db, userdao.NewSession(db, dialect, opts...)
}
