// Package bootstrap creates the users table for local runs and tests.
// The record access layer never calls it; it assumes the table exists.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
)

var usersDDL = map[string]string{
	"sqlite3": `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0
	)`,
	"mysql": `CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		age INT NOT NULL DEFAULT 0
	)`,
	"postgres": `CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0
	)`,
}

var truncate = map[string]string{
	"sqlite3":  "DELETE FROM users",
	"mysql":    "TRUNCATE TABLE users",
	"postgres": "TRUNCATE TABLE users RESTART IDENTITY",
}

// UsersDDL returns the CREATE TABLE statement for a dialect name.
func UsersDDL(dialect string) (string, error) {
	ddl, ok := usersDDL[dialect]
	if !ok {
		return "", fmt.Errorf("bootstrap: no users DDL for dialect %q", dialect)
	}
	return ddl, nil
}

// Apply creates the users table if it does not exist.
func Apply(ctx context.Context, db *sql.DB, dialect string) error {
	ddl, err := UsersDDL(dialect)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("bootstrap: create users table: %w", err)
	}
	return nil
}

// Reset removes every row from the users table.
func Reset(ctx context.Context, db *sql.DB, dialect string) error {
	stmt, ok := truncate[dialect]
	if !ok {
		return fmt.Errorf("bootstrap: no reset statement for dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("bootstrap: reset users table: %w", err)
	}
	return nil
}
