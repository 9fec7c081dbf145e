package userdao

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors for the three error kinds. Every typed error below reports
// its kind through errors.Is, so callers can branch without errors.As:
//
//	if errors.Is(err, userdao.ErrValidation) {
//	    // render field message
//	}
var (
	ErrValidation = errors.New("userdao: validation failed")
	ErrConnection = errors.New("userdao: connection failed")
	ErrStore      = errors.New("userdao: store operation failed")
)

// ValidationError reports a required field missing on create.
type ValidationError struct {
	Field string // Go field name, e.g. "Name"
	Rule  string // validator tag that failed, e.g. "required"
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("userdao: validation failed: field %s violates %q", e.Field, e.Rule)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConnectionError reports that the store is unreachable or the connection
// handle is no longer valid.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("userdao: %s: connection failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// StoreError wraps any other store-level failure: constraint violations,
// malformed statements, scan failures.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("userdao: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// classify maps a driver error returned by a statement onto the error
// taxonomy. Already-typed errors pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		vErr *ValidationError
		cErr *ConnectionError
		sErr *StoreError
	)
	if errors.As(err, &vErr) || errors.As(err, &cErr) || errors.As(err, &sErr) {
		return err
	}

	if isConnectionFailure(err) {
		return &ConnectionError{Op: op, Err: err}
	}
	return &StoreError{Op: op, Err: err}
}

const errDBClosedText = "sql: database is closed"

func isConnectionFailure(err error) bool {
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return true
	}

	// database/sql keeps this error unexported (errDBClosed, unchanged since
	// Go 1.0); TestClassifyClosedDatabase pins the text against the toolchain.
	if err.Error() == errDBClosedText {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
