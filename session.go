package userdao

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Executor defines the statement operations a borrowed connection offers.
// *sqlx.Conn, *sqlx.DB and *sqlx.Tx all satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Provider hands out store connections. Every successful Acquire must be
// paired with exactly one Release, normally deferred right after Acquire.
type Provider interface {
	Acquire(ctx context.Context) (*Conn, error)
	Release(conn *Conn)
	Dialect() Dialect
}

// Session owns the connection pool and the observability settings shared by
// every connection borrowed from it. It is safe for concurrent use.
type Session struct {
	db      *sqlx.DB
	dialect Dialect
	obs     *ObservabilityConfig
}

var _ Provider = (*Session)(nil)

// NewSession wraps an already opened pool.
//
// Example:
//
//	db, _ := sql.Open("sqlite3", "file:users.db")
//	session := userdao.NewSession(db, userdao.SQLite,
//	    userdao.WithLogger(slog.Default()),
//	)
func NewSession(db *sql.DB, dialect Dialect, opts ...SessionOption) *Session {
	s := &Session{
		dialect: dialect,
		obs:     defaultObservabilityConfig(),
	}
	if db != nil {
		s.db = sqlx.NewDb(db, dialect.Name())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a pool for driver/dsn and verifies the store answers a ping
// before ctx expires. The driver must be registered by the caller (blank
// import). Any failure to reach the store is a *ConnectionError.
func Open(ctx context.Context, driver, dsn string, opts ...SessionOption) (*Session, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Op: "ping", Err: err}
	}

	return NewSession(db, dialect, opts...), nil
}

// Dialect returns the session's SQL dialect.
func (s *Session) Dialect() Dialect { return s.dialect }

// DB exposes the underlying pool, e.g. for schema bootstrap.
func (s *Session) DB() *sqlx.DB { return s.db }

// Ping checks that the store is reachable.
func (s *Session) Ping(ctx context.Context) error {
	if s.db == nil {
		return &ConnectionError{Op: "ping", Err: errNoPool}
	}
	if err := s.db.PingContext(ctx); err != nil {
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the pool. Connections still borrowed are closed when released.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var errNoPool = errors.New("session has no database")

// Acquire borrows one connection from the pool.
func (s *Session) Acquire(ctx context.Context) (*Conn, error) {
	if s.db == nil {
		return nil, &ConnectionError{Op: "acquire", Err: errNoPool}
	}

	raw, err := s.db.Connx(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "acquire", Err: err}
	}
	return &Conn{session: s, raw: raw, executor: raw}, nil
}

// Release returns conn to the pool. Releasing nil or an already released
// connection is a no-op.
func (s *Session) Release(conn *Conn) {
	if conn == nil || conn.raw == nil {
		return
	}

	err := conn.raw.Close()
	conn.raw = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) && s.obs.Logger != nil {
		s.obs.Logger.LogAttrs(context.Background(), slog.LevelWarn, "release connection",
			slog.String("db.system", s.dialect.Name()),
			slog.String("error", err.Error()),
		)
	}
}

// Conn is a single borrowed store connection. Every statement run through it
// is traced, measured and logged according to the owning session's options.
type Conn struct {
	session  *Session
	raw      *sqlx.Conn
	executor Executor
}

// Ping verifies the connection is still usable.
func (c *Conn) Ping(ctx context.Context) error {
	if c.raw == nil {
		return &ConnectionError{Op: "ping", Err: sql.ErrConnDone}
	}
	if err := c.raw.PingContext(ctx); err != nil {
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

// Exec runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := c.session.observe(ctx, op, query, func(ctx context.Context) error {
		var err error
		result, err = c.executor.ExecContext(ctx, query, args...)
		return err
	})
	return result, err
}

// Get scans exactly one row into dest. sql.ErrNoRows is returned unchanged.
func (c *Conn) Get(ctx context.Context, op string, dest any, query string, args ...any) error {
	return c.session.observe(ctx, op, query, func(ctx context.Context) error {
		return c.executor.GetContext(ctx, dest, query, args...)
	})
}

// Select scans all rows into dest, which must be a pointer to a slice.
func (c *Conn) Select(ctx context.Context, op string, dest any, query string, args ...any) error {
	return c.session.observe(ctx, op, query, func(ctx context.Context) error {
		return c.executor.SelectContext(ctx, dest, query, args...)
	})
}
