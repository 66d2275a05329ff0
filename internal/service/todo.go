// package service implements business logic for the application
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cirocosta/todo-api/internal/model"
	"github.com/cirocosta/todo-api/internal/repository"
)

// ValidationError is returned when a request is rejected before reaching
// the store
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return e.Message
}

// ErrEmptyUpdate is returned for a patch that names no field
var ErrEmptyUpdate = ValidationError{Message: "at least one of description or completed must be provided"}

// TodoService handles business logic for todo operations
type TodoService struct {
	repo     repository.TodoRepository
	validate *validator.Validate
}

// NewTodoService creates a new todo service with the given repository
func NewTodoService(repo repository.TodoRepository) *TodoService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &TodoService{
		repo:     repo,
		validate: validate,
	}
}

// ListTodos returns all todos ordered by creation date
func (s *TodoService) ListTodos(ctx context.Context) ([]model.Todo, error) {
	return s.repo.FindAll(ctx)
}

// GetTodo returns a todo by ID
func (s *TodoService) GetTodo(ctx context.Context, id int64) (model.Todo, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateTodo validates the request and inserts a new todo
func (s *TodoService) CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error) {
	if err := s.check(req); err != nil {
		return model.Todo{}, err
	}

	return s.repo.Create(ctx, *req.Description)
}

// UpdateTodo applies the fields present in req to the todo with the given
// ID in a single store update
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, req model.UpdateTodoRequest) (model.Todo, error) {
	if req.Empty() {
		return model.Todo{}, ErrEmptyUpdate
	}
	if err := s.check(req); err != nil {
		return model.Todo{}, err
	}

	return s.repo.Update(ctx, id, model.TodoPatch{
		Description: req.Description,
		Completed:   req.Completed,
	})
}

// DeleteTodo deletes a todo and returns its last state
func (s *TodoService) DeleteTodo(ctx context.Context, id int64) (model.Todo, error) {
	return s.repo.Delete(ctx, id)
}

// check runs struct validation and turns the first failure into a
// ValidationError
func (s *TodoService) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}

	return ValidationError{Message: fieldMessage(fieldErrs[0])}
}

func fieldMessage(fe validator.FieldError) string {
	typ := fe.Type()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ.Kind() {
	case reflect.String:
		return fe.Field() + " must be a non-empty string"
	case reflect.Bool:
		return fe.Field() + " must be a boolean"
	default:
		return fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag())
	}
}

// jsonFieldName reports fields by their JSON name
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
