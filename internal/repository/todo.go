// package repository provides data access interfaces and implementations
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cirocosta/todo-api/internal/model"
)

// TodoRepository defines the interface for todo data access. Every method
// is a single round-trip to the store.
type TodoRepository interface {
	// FindAll returns all todos ordered by creation date
	FindAll(ctx context.Context) ([]model.Todo, error)

	// FindByID returns a specific todo by ID
	FindByID(ctx context.Context, id int64) (model.Todo, error)

	// Create inserts a new, not yet completed todo
	Create(ctx context.Context, description string) (model.Todo, error)

	// Update applies every non-nil field of the patch to one row
	Update(ctx context.Context, id int64, patch model.TodoPatch) (model.Todo, error)

	// Delete removes a todo and returns its last state
	Delete(ctx context.Context, id int64) (model.Todo, error)
}

// InMemoryTodoRepository implements TodoRepository with an in-memory map.
// IDs and creation dates are assigned the way the table does it.
type InMemoryTodoRepository struct {
	todos  map[int64]model.Todo
	nextID int64
	now    func() time.Time
	mutex  sync.RWMutex
}

// NewInMemoryTodoRepository creates an empty in-memory todo repository
func NewInMemoryTodoRepository() *InMemoryTodoRepository {
	return NewInMemoryTodoRepositoryWithClock(time.Now)
}

// NewInMemoryTodoRepositoryWithClock creates an empty repository whose
// creation dates come from now
func NewInMemoryTodoRepositoryWithClock(now func() time.Time) *InMemoryTodoRepository {
	return &InMemoryTodoRepository{
		todos: make(map[int64]model.Todo),
		now:   now,
	}
}

// FindAll returns all todos ordered by creation date, then ID
func (r *InMemoryTodoRepository) FindAll(ctx context.Context) ([]model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	todos := make([]model.Todo, 0, len(r.todos))
	for _, todo := range r.todos {
		todos = append(todos, todo)
	}

	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreationDate.Equal(todos[j].CreationDate) {
			return todos[i].CreationDate.Before(todos[j].CreationDate)
		}
		return todos[i].ID < todos[j].ID
	})

	return todos, nil
}

// FindByID returns a specific todo by ID
func (r *InMemoryTodoRepository) FindByID(ctx context.Context, id int64) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	todo, exists := r.todos[id]
	if !exists {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}

	return todo, nil
}

// Create adds a new todo
func (r *InMemoryTodoRepository) Create(ctx context.Context, description string) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.nextID++
	todo := model.Todo{
		ID:           r.nextID,
		Description:  description,
		Completed:    false,
		CreationDate: r.now().UTC(),
	}
	r.todos[todo.ID] = todo

	return todo, nil
}

// Update modifies an existing todo under a single lock
func (r *InMemoryTodoRepository) Update(ctx context.Context, id int64, patch model.TodoPatch) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	todo, exists := r.todos[id]
	if !exists {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}

	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	r.todos[id] = todo

	return todo, nil
}

// Delete removes a todo
func (r *InMemoryTodoRepository) Delete(ctx context.Context, id int64) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	todo, exists := r.todos[id]
	if !exists {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}

	delete(r.todos, id)
	return todo, nil
}
