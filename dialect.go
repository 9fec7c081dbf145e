// Package userdao is a data-access layer for the users table.
// This file implements database dialect abstraction to handle SQL differences between databases.
//
// Dialect is responsible for:
//   - Database identification (MySQL, PostgreSQL, SQLite)
//   - Placeholder format (? vs $1, $2)
//   - How the store-assigned id is read back after INSERT
//
// Usage example:
//
//	// SQLite
//	session := userdao.NewSession(db, userdao.SQLite)
//
//	// PostgreSQL
//	session := userdao.NewSession(db, userdao.PostgreSQL)
//
//	// From a driver name
//	dialect, err := userdao.DialectFor("mysql")
package userdao

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var (
	SQLite     Dialect = &SQLiteDialect{}
	MySQL      Dialect = &MySQLDialect{}
	PostgreSQL Dialect = &PostgreSQLDialect{}
)

// Dialect abstracts database-specific SQL features.
//
// Implementations:
//   - MySQLDialect: MySQL dialect
//   - PostgreSQLDialect: PostgreSQL dialect
//   - SQLiteDialect: SQLite dialect
type Dialect interface {
	// Name returns the database type name.
	// Used for logging, metrics collection, and driver selection.
	//
	// Returns:
	//   - "mysql" for MySQL
	//   - "postgres" for PostgreSQL
	//   - "sqlite3" for SQLite
	Name() string

	// PlaceholderFormat returns the placeholder format used by the database.
	// Squirrel uses this format to generate parameterized queries.
	PlaceholderFormat() sq.PlaceholderFormat

	// ReturningID reports whether INSERT must carry "RETURNING <pk>" to learn
	// the generated key. When false, sql.Result.LastInsertId is used.
	ReturningID() bool
}

// DialectFor returns the dialect matching a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	case "postgres", "pgx":
		return PostgreSQL, nil
	default:
		return nil, fmt.Errorf("userdao: unsupported driver %q", driver)
	}
}

// MySQLDialect implements MySQL database dialect.
//
// MySQL features:
//   - Uses ? as placeholder
//   - AUTO_INCREMENT keys are reported through LastInsertId
type MySQLDialect struct{}

// Name returns the MySQL dialect name.
func (d *MySQLDialect) Name() string { return "mysql" }

// PlaceholderFormat returns MySQL's placeholder format (?).
func (d *MySQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (d *MySQLDialect) ReturningID() bool { return false }

// PostgreSQLDialect implements PostgreSQL database dialect.
//
// PostgreSQL features:
//   - Uses $1, $2, $3 as placeholders
//   - lib/pq does not implement LastInsertId, so INSERT uses RETURNING
type PostgreSQLDialect struct{}

// Name returns the PostgreSQL dialect name.
func (d *PostgreSQLDialect) Name() string { return "postgres" }

// PlaceholderFormat returns PostgreSQL's placeholder format ($1, $2, ...).
func (d *PostgreSQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

func (d *PostgreSQLDialect) ReturningID() bool { return true }

// SQLiteDialect implements SQLite database dialect.
//
// SQLite features:
//   - Uses ? as placeholder
//   - INTEGER PRIMARY KEY rowid is reported through LastInsertId
//   - Commonly used in testing and development environments
type SQLiteDialect struct{}

// Name returns the SQLite dialect name.
func (d *SQLiteDialect) Name() string { return "sqlite3" }

// PlaceholderFormat returns SQLite's placeholder format (?).
func (d *SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (d *SQLiteDialect) ReturningID() bool { return false }
