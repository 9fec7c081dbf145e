package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arllen133/userdao"
	"github.com/arllen133/userdao/internal/bootstrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	_, session := bootstrap.OpenTest(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(userdao.NewUserRepository(session), session, logger)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestFormLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/users", `{"name":"Alice","email":"alice@example.com","age":28}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[userdao.User](t, rec)
	require.NotZero(t, created.ID)

	path := "/users/" + jsonID(created.ID)

	rec = do(t, s, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[userdao.User](t, rec))

	rec = do(t, s, http.MethodPut, path, `{"name":"Alice B","email":"alice@example.com","age":29}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 29, decode[userdao.User](t, rec).Age)

	rec = do(t, s, http.MethodGet, "/users?name=Ali", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]userdao.User](t, rec), 1)

	rec = do(t, s, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestFormErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "missing name", method: http.MethodPost, path: "/users", body: `{"email":"a@b.c"}`, wantStatus: http.StatusBadRequest, wantField: "Name"},
		{name: "missing email", method: http.MethodPost, path: "/users", body: `{"name":"A"}`, wantStatus: http.StatusBadRequest, wantField: "Email"},
		{name: "malformed body", method: http.MethodPost, path: "/users", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/users/abc", wantStatus: http.StatusBadRequest},
		{name: "blank name", method: http.MethodPost, path: "/users", body: `{"name":"   ","email":"  ","age":1}`, wantStatus: http.StatusBadRequest, wantField: "Name"},
		{name: "blank email", method: http.MethodPost, path: "/users", body: `{"name":"A","email":" \t ","age":1}`, wantStatus: http.StatusBadRequest, wantField: "Email"},
		{name: "missing age", method: http.MethodPost, path: "/users", body: `{"name":"A","email":"a@b.c"}`, wantStatus: http.StatusBadRequest, wantField: "Age"},
		{name: "empty update", method: http.MethodPut, path: "/users/1", body: `{}`, wantStatus: http.StatusBadRequest, wantField: "Name"},
		{name: "empty search", method: http.MethodGet, path: "/users?name=", wantStatus: http.StatusBadRequest, wantField: "Search"},
		{name: "blank search", method: http.MethodGet, path: "/users?name=%20%20", wantStatus: http.StatusBadRequest, wantField: "Search"},
		{name: "update missing", method: http.MethodPut, path: "/users/999", body: `{"name":"A","email":"a@b.c","age":1}`, wantStatus: http.StatusNotFound},
		{name: "delete missing", method: http.MethodDelete, path: "/users/999", wantStatus: http.StatusNotFound},
		{name: "method not allowed", method: http.MethodPatch, path: "/users/1", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode[errorResponse](t, rec).Field)
			}
		})
	}
}

func TestBlankUpdateKeepsRow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/users", `{"name":"  Bob  ","email":" bob@example.com ","age":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[userdao.User](t, rec)
	assert.Equal(t, "Bob", created.Name)
	assert.Equal(t, "bob@example.com", created.Email)

	path := "/users/" + jsonID(created.ID)
	for _, body := range []string{`{}`, `{"name":" ","email":"x","age":1}`, `{"name":"B","email":"x"}`} {
		rec = do(t, s, http.MethodPut, path, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = do(t, s, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[userdao.User](t, rec))
}

func TestNegativeAgeAccepted(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/users", `{"name":"Neg","email":"neg","age":-5}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, -5, decode[userdao.User](t, rec).Age)
}

// failingStore returns the same error from every call.
type failingStore struct{ err error }

func (f failingStore) Create(context.Context, *userdao.User) error { return f.err }
func (f failingStore) FindByID(context.Context, int64) (userdao.Optional[userdao.User], error) {
	return userdao.None[userdao.User](), f.err
}
func (f failingStore) FindAll(context.Context) ([]userdao.User, error)            { return nil, f.err }
func (f failingStore) Update(context.Context, *userdao.User) (bool, error)        { return false, f.err }
func (f failingStore) Delete(context.Context, int64) (bool, error)                { return false, f.err }
func (f failingStore) FindByName(context.Context, string) ([]userdao.User, error) { return nil, f.err }
func (f failingStore) Ping(context.Context) error                                 { return f.err }

func TestStoreFailures(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("connection", func(t *testing.T) {
		fs := failingStore{err: &userdao.ConnectionError{Op: "acquire", Err: sql.ErrConnDone}}
		s := NewServer(fs, fs, logger)

		assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/users", "").Code)
		assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/healthz", "").Code)
	})

	t.Run("store", func(t *testing.T) {
		fs := failingStore{err: &userdao.StoreError{Op: "find_by_id", Err: errors.New("no such table: users")}}
		s := NewServer(fs, nil, logger)

		rec := do(t, s, http.MethodGet, "/users/1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "no such table", "driver detail must not leak")

		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)
	})
}
