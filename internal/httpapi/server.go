// Package httpapi exposes the user form actions over JSON. Each route maps
// one form action onto one repository call; the handlers check the form,
// translate fields and render typed errors.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arllen133/userdao"
	"github.com/arllen133/userdao/internal/form"
	"github.com/gorilla/mux"
)

// Store is the record access surface the adapter drives.
type Store interface {
	Create(ctx context.Context, user *userdao.User) error
	FindByID(ctx context.Context, id int64) (userdao.Optional[userdao.User], error)
	FindAll(ctx context.Context) ([]userdao.User, error)
	Update(ctx context.Context, user *userdao.User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	FindByName(ctx context.Context, fragment string) ([]userdao.User, error)
}

// Pinger reports store reachability for the health route.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	store  Store
	pinger Pinger
	logger *slog.Logger
	router *mux.Router
}

// NewServer wires the routes. pinger may be nil, in which case /healthz
// always answers ok.
func NewServer(store Store, pinger Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, pinger: pinger, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/users", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/users", s.handleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{id}", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/users/{id}", s.handleUpdate).Methods(http.MethodPut)
	s.router.HandleFunc("/users/{id}", s.handleDelete).Methods(http.MethodDelete)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rec, r)
	s.logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", rec.status),
		slog.Duration("duration", time.Since(start)),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /users, GET /users?name=fragment
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		users []userdao.User
		err   error
	)
	if values, ok := r.URL.Query()["name"]; ok {
		fragment, termErr := form.SearchTerm(values[0])
		if termErr != nil {
			s.writeError(w, r, termErr)
			return
		}
		users, err = s.store.FindByName(r.Context(), fragment)
	} else {
		users, err = s.store.FindAll(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// POST /users
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := s.decodeUser(w, r, 0)
	if !ok {
		return
	}

	if err := s.store.Create(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GET /users/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := s.store.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, present := found.Get()
	if !present {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PUT /users/{id}
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, ok := s.decodeUser(w, r, id)
	if !ok {
		return
	}

	updated, err := s.store.Update(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !updated {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DELETE /users/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "user not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "id must be an integer"})
		return 0, false
	}
	return id, true
}

// decodeUser reads and checks the user form in the request body. Blank
// fields are rejected here so an update never overwrites a row with them.
func (s *Server) decodeUser(w http.ResponseWriter, r *http.Request, id int64) (*userdao.User, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var f form.User
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed user form: " + err.Error()})
		return nil, false
	}

	user, err := f.Record(id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return user, true
}

// writeError renders a typed repository error as a user-facing message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *userdao.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: vErr.Field + " is " + vErr.Rule,
			Field:   vErr.Field,
		})
	case errors.Is(err, userdao.ErrConnection):
		s.logger.LogAttrs(r.Context(), slog.LevelError, "store unavailable", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "database unavailable"})
	default:
		s.logger.LogAttrs(r.Context(), slog.LevelError, "store failure", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "database error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
