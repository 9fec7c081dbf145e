package userdao

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
	}{
		{name: "bad conn", err: driver.ErrBadConn, wantKind: ErrConnection},
		{name: "conn done", err: sql.ErrConnDone, wantKind: ErrConnection},
		{name: "wrapped conn done", err: fmt.Errorf("exec: %w", sql.ErrConnDone), wantKind: ErrConnection},
		{name: "mysql invalid conn", err: mysql.ErrInvalidConn, wantKind: ErrConnection},
		{name: "deadline", err: context.DeadlineExceeded, wantKind: ErrConnection},
		{name: "canceled", err: context.Canceled, wantKind: ErrConnection},
		{name: "wrapped canceled", err: fmt.Errorf("query: %w", context.Canceled), wantKind: ErrConnection},
		{name: "closed database", err: errors.New("sql: database is closed"), wantKind: ErrConnection},
		{name: "dial failure", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, wantKind: ErrConnection},
		{name: "constraint", err: errors.New("UNIQUE constraint failed: users.email"), wantKind: ErrStore},
		{name: "syntax", err: errors.New("near \"SELEC\": syntax error"), wantKind: ErrStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			assert.True(t, errors.Is(got, tt.wantKind), "classify(%v) = %v", tt.err, got)
			assert.True(t, errors.Is(got, tt.err), "original error must stay reachable")
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.Nil(t, classify("op", nil))

	vErr := &ValidationError{Field: "Name", Rule: "required"}
	assert.Same(t, vErr, classify("op", vErr))

	cErr := &ConnectionError{Op: "acquire", Err: sql.ErrConnDone}
	assert.Same(t, cErr, classify("create", cErr))

	sErr := &StoreError{Op: "update", Err: errors.New("boom")}
	assert.Same(t, sErr, classify("update", sErr))
}

func TestErrorKindsAreDistinct(t *testing.T) {
	v := &ValidationError{Field: "Email", Rule: "required"}
	c := &ConnectionError{Op: "ping", Err: errors.New("refused")}
	s := &StoreError{Op: "create", Err: errors.New("constraint")}

	assert.True(t, errors.Is(v, ErrValidation))
	assert.False(t, errors.Is(v, ErrStore))
	assert.True(t, errors.Is(c, ErrConnection))
	assert.False(t, errors.Is(c, ErrStore))
	assert.True(t, errors.Is(s, ErrStore))
	assert.False(t, errors.Is(s, ErrConnection))

	assert.Contains(t, v.Error(), "Email")
	assert.Contains(t, c.Error(), "ping")
	assert.Contains(t, s.Error(), "constraint")
}

func TestClassifyClosedDatabase(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.ExecContext(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Equal(t, errDBClosedText, err.Error(), "database/sql changed its closed-pool message")
	assert.True(t, errors.Is(classify("find_all", err), ErrConnection))
}

func TestClassifyCanceledStatement(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = db.ExecContext(ctx, "SELECT 1")
	require.Error(t, err)

	got := classify("update", err)
	var cErr *ConnectionError
	require.True(t, errors.As(got, &cErr), "got %v", got)
	assert.Equal(t, "update", cErr.Op)
}
