// package api provides the HTTP API for the application
package api

import (
	"context"
	_ "embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cirocosta/todo-api/internal/model"
)

//go:embed static/index.html
var indexHTML []byte

// TodoService defines the minimal interface needed by the API
type TodoService interface {
	// ListTodos returns all todos ordered by creation date
	ListTodos(ctx context.Context) ([]model.Todo, error)

	// GetTodo returns a todo by ID
	GetTodo(ctx context.Context, id int64) (model.Todo, error)

	// CreateTodo creates a new todo
	CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error)

	// UpdateTodo updates an existing todo
	UpdateTodo(ctx context.Context, id int64, req model.UpdateTodoRequest) (model.Todo, error)

	// DeleteTodo deletes a todo and returns its last state
	DeleteTodo(ctx context.Context, id int64) (model.Todo, error)
}

// Pinger reports whether the store is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router
type Options struct {
	// AllowedOrigins lists CORS origins; empty allows any origin
	AllowedOrigins []string

	// RequestTimeout bounds each request, store round-trip included.
	// Zero disables the deadline.
	RequestTimeout time.Duration

	// Store is pinged by /health; nil reports healthy
	Store Pinger
}

// NewRouter creates a new router with all routes configured
func NewRouter(todoService TodoService, opts Options) http.Handler {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggerMiddleware)
	r.Use(recovererMiddleware)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/", homeHandler)
	r.Get("/health", healthHandler(opts.Store))

	todoHandler := NewTodoHandler(todoService)
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", todoHandler.ListTodos)
		r.Post("/", todoHandler.CreateTodo)
		r.Get("/{id}", todoHandler.GetTodo)
		r.Patch("/{id}", todoHandler.UpdateTodo)
		r.Delete("/{id}", todoHandler.DeleteTodo)
	})

	return r
}

// homeHandler serves the API landing page
func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

// healthHandler reports whether the store answers a ping
func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				logger(r).Error("store ping failed", "error", err)
				writeError(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		writeJSON(w, model.StatusResponse{Status: model.StatusSuccess}, http.StatusOK)
	}
}
