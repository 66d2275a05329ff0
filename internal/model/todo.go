// package model contains the data models for the todo API
package model

import (
	"time"
)

// Status values carried by every response envelope
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Todo represents a row of the todo table
type Todo struct {
	ID           int64     `json:"id"`
	Description  string    `json:"description"`
	Completed    bool      `json:"completed"`
	CreationDate time.Time `json:"creation_date"`
}

// CreateTodoRequest is the body accepted when creating a todo
type CreateTodoRequest struct {
	Description *string `json:"description" validate:"required,min=1"`
}

// UpdateTodoRequest is the body accepted when patching a todo. Absent
// fields are left untouched.
type UpdateTodoRequest struct {
	Description *string `json:"description" validate:"omitnil,min=1"`
	Completed   *bool   `json:"completed"`
}

// Empty reports whether the request carries no field to change
func (r UpdateTodoRequest) Empty() bool {
	return r.Description == nil && r.Completed == nil
}

// TodoPatch is the set of column changes applied by a single update
type TodoPatch struct {
	Description *string
	Completed   *bool
}

// TodoListResponse is returned by GET /todos
type TodoListResponse struct {
	Status string `json:"status"`
	Todos  []Todo `json:"todos"`
}

// NewTodoResponse is returned by POST /todos and PATCH /todos/{id}
type NewTodoResponse struct {
	Status  string `json:"status"`
	NewTodo Todo   `json:"newTodo"`
}

// MatchedTodoResponse is returned by GET /todos/{id}
type MatchedTodoResponse struct {
	Status      string `json:"status"`
	MatchedTodo Todo   `json:"matchedTodo"`
}

// DeletedTodoResponse is returned by DELETE /todos/{id}
type DeletedTodoResponse struct {
	Status  string `json:"status"`
	Deleted Todo   `json:"deleted"`
}

// StatusResponse is a bare envelope without payload
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the failure envelope used by every non-2xx response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
