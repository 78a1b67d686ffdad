package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"treetodo/pkg/envelope"
	"treetodo/pkg/task"
)

// Server is the HTTP API server.
type Server struct {
	tasks   *task.Service
	bus     *task.Bus
	logger  *slog.Logger
	origins []string
	webDir  string
	mux     *http.ServeMux
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCORSOrigins allows browser requests from the given origins in addition
// to localhost.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithWebDir serves static files (the Gio WASM build) from dir at /.
func WithWebDir(dir string) Option {
	return func(s *Server) { s.webDir = dir }
}

// New creates a new Server. bus may be nil, in which case the change stream
// is unavailable.
func New(tasks *task.Service, bus *task.Bus, opts ...Option) *Server {
	s := &Server{
		tasks:  tasks,
		bus:    bus,
		logger: slog.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	s.handler = s.withRequestID(s.withLogging(s.withRecover(s.withCORS(s.mux))))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Tasks
	s.mux.HandleFunc("GET /api/tasks", s.handleTaskList)
	s.mux.HandleFunc("POST /api/tasks", s.handleTaskCreate)
	s.mux.HandleFunc("GET /api/tasks/stream", s.handleTaskStream)
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleTaskGet)
	s.mux.HandleFunc("PUT /api/tasks/{id}", s.handleTaskUpdate)
	s.mux.HandleFunc("PATCH /api/tasks/{id}/toggle", s.handleTaskToggle)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleTaskDelete)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	// Static files (Gio WASM UI)
	webDir := s.webDir
	if webDir == "" {
		webDir = os.Getenv("WASM_DIR")
	}
	if webDir == "" {
		webDir = filepath.Join(".", "web")
	}
	s.mux.Handle("GET /", http.FileServer(http.Dir(webDir)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.tasks.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", "error", err)
	}
}

func writeOK[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, envelope.OK(data))
}

func writeError(w http.ResponseWriter, status int, msgs ...string) {
	writeJSON(w, status, envelope.Fail(msgs...))
}

// writeServiceError maps task errors onto status codes and envelope messages.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *task.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Problems...)
	case errors.Is(err, task.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, task.ErrParentNotFound):
		writeError(w, http.StatusBadRequest, "Parent task not found")
	case errors.Is(err, task.ErrCycle):
		writeError(w, http.StatusBadRequest, "Parent chain contains a cycle")
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
