// package api provides the HTTP API for the application
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cirocosta/todo-api/internal/model"
	"github.com/cirocosta/todo-api/internal/repository"
	"github.com/cirocosta/todo-api/internal/service"
)

// maxBodyBytes bounds the size of a JSON request body
const maxBodyBytes = 1 << 20

// Not-found messages, one per operation addressing an id
const (
	msgGetNotFound    = "Could not find a to-do for this id"
	msgUpdateNotFound = "Could not find that to-do to update"
	msgDeleteNotFound = "Could not find this to-do to delete"
)

// TodoHandler handles HTTP requests for todo operations
type TodoHandler struct {
	todoService TodoService
}

// NewTodoHandler creates a new todo handler with the given service
func NewTodoHandler(todoService TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos handles GET /todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.ListTodos(r.Context())
	if err != nil {
		storeFailure(w, r, err, "error listing todos")
		return
	}

	if todos == nil {
		todos = []model.Todo{}
	}

	writeJSON(w, model.TodoListResponse{
		Status: model.StatusSuccess,
		Todos:  todos,
	}, http.StatusOK)
}

// GetTodo handles GET /todos/{id}
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, msgGetNotFound, "error getting todo")
		return
	}

	writeJSON(w, model.MatchedTodoResponse{
		Status:      model.StatusSuccess,
		MatchedTodo: todo,
	}, http.StatusOK)
}

// CreateTodo handles POST /todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTodoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	todo, err := h.todoService.CreateTodo(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err, "", "error creating todo")
		return
	}

	writeJSON(w, model.NewTodoResponse{
		Status:  model.StatusSuccess,
		NewTodo: todo,
	}, http.StatusCreated)
}

// UpdateTodo handles PATCH /todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req model.UpdateTodoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	todo, err := h.todoService.UpdateTodo(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err, msgUpdateNotFound, "error updating todo")
		return
	}

	writeJSON(w, model.NewTodoResponse{
		Status:  model.StatusSuccess,
		NewTodo: todo,
	}, http.StatusOK)
}

// DeleteTodo handles DELETE /todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	todo, err := h.todoService.DeleteTodo(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, msgDeleteNotFound, "error deleting todo")
		return
	}

	writeJSON(w, model.DeletedTodoResponse{
		Status:  model.StatusSuccess,
		Deleted: todo,
	}, http.StatusOK)
}

// handleError maps service errors onto status codes
func (h *TodoHandler) handleError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, storeMsg string) {
	var validationErr service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, validationErr.Message, http.StatusBadRequest)
		return
	}

	var notFoundErr repository.ErrTodoNotFound
	if errors.As(err, &notFoundErr) {
		writeError(w, notFoundMsg, http.StatusNotFound)
		return
	}

	storeFailure(w, r, err, storeMsg)
}

// storeFailure logs an unexpected error and answers 500
func storeFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, context.Canceled) {
		logger(r).Warn("request cancelled", "error", err)
	} else {
		logger(r).Error(msg, "error", err)
	}

	writeError(w, msg, http.StatusInternalServerError)
}

// parseID reads the {id} path parameter, answering 400 unless it is a
// base-10 integer in canonical form (no sign prefix or leading zeros)
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strconv.FormatInt(id, 10) != raw {
		writeError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

// decodeBody decodes a single JSON value from the request body into dst.
// An empty body decodes as an empty object; type mismatches name the
// offending field. Anything after the first value is rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return errors.New("invalid request body")
		}
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errors.New("request body too large")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("%s must be %s", typeErr.Field, describeKind(typeErr.Type))
	}

	return errors.New("invalid request body")
}

func describeKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return "a non-empty string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "of type " + t.String()
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "error encoding response", http.StatusInternalServerError)
	}
}

// writeError writes a failure envelope with the given status code
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Status:  model.StatusFailure,
		Message: message,
	})
}
