// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/todos/internal/domain/model"
	"github.com/okian/todos/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	List(ctx context.Context) ([]model.Todo, error)
	Get(ctx context.Context, id int64) (model.Todo, error)
	Create(ctx context.Context, in model.Input) (model.Todo, error)
	Update(ctx context.Context, id int64, in model.Input) (model.Todo, error)
	Delete(ctx context.Context, id int64) error

	// Ping reports whether storage is reachable.
	Ping(ctx context.Context) error
}

const defaultMaxBodyBytes int64 = 1 << 20

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	todosHandler  *TodosHandler

	maxBodyBytes int64
	logger       logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.todosHandler = NewTodosHandler(deps, s.maxBodyBytes, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /todos", MetricsMiddleware(s.todosHandler.HandleList, "todos"))
	mux.HandleFunc("POST /todos", MetricsMiddleware(s.todosHandler.HandleCreate, "todos"))
	mux.HandleFunc("GET /todos/{id}", MetricsMiddleware(s.todosHandler.HandleGet, "todo"))
	mux.HandleFunc("PUT /todos/{id}", MetricsMiddleware(s.todosHandler.HandleUpdate, "todo"))
	mux.HandleFunc("DELETE /todos/{id}", MetricsMiddleware(s.todosHandler.HandleDelete, "todo"))

	s.logger.Debug(ctx, "api routes registered")
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Detail: detail, Code: code})
}
