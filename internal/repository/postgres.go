package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cirocosta/todo-api/internal/model"
)

const (
	todoColumns = "id, description, completed, creation_date"

	listTodosQuery  = "SELECT " + todoColumns + " FROM todo ORDER BY creation_date ASC, id ASC"
	getTodoQuery    = "SELECT " + todoColumns + " FROM todo WHERE id = $1"
	createTodoQuery = "INSERT INTO todo (description, completed) VALUES ($1, false) RETURNING " + todoColumns
	updateTodoQuery = "UPDATE todo SET description = COALESCE($2, description), completed = COALESCE($3, completed) WHERE id = $1 RETURNING " + todoColumns
	deleteTodoQuery = "DELETE FROM todo WHERE id = $1 RETURNING " + todoColumns
)

// Querier is the subset of *pgxpool.Pool used by PostgresTodoRepository
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresTodoRepository implements TodoRepository on the todo table
type PostgresTodoRepository struct {
	db Querier
}

// NewPostgresTodoRepository creates a repository issuing queries through db
func NewPostgresTodoRepository(db Querier) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

// FindAll returns all todos ordered by creation date
func (r *PostgresTodoRepository) FindAll(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.db.Query(ctx, listTodosQuery)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}

// FindByID returns a specific todo by ID
func (r *PostgresTodoRepository) FindByID(ctx context.Context, id int64) (model.Todo, error) {
	return r.queryOne(ctx, id, "get todo", getTodoQuery, id)
}

// Create inserts a row; the table assigns id and creation_date
func (r *PostgresTodoRepository) Create(ctx context.Context, description string) (model.Todo, error) {
	todo, err := scanTodo(r.db.QueryRow(ctx, createTodoQuery, description))
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	return todo, nil
}

// Update changes description and completed in one statement. A nil field
// binds NULL and COALESCE keeps the stored value.
func (r *PostgresTodoRepository) Update(ctx context.Context, id int64, patch model.TodoPatch) (model.Todo, error) {
	return r.queryOne(ctx, id, "update todo", updateTodoQuery, id, patch.Description, patch.Completed)
}

// Delete removes a row and returns what it held
func (r *PostgresTodoRepository) Delete(ctx context.Context, id int64) (model.Todo, error) {
	return r.queryOne(ctx, id, "delete todo", deleteTodoQuery, id)
}

// queryOne runs a statement addressing a single id and maps "no row" to
// ErrTodoNotFound
func (r *PostgresTodoRepository) queryOne(ctx context.Context, id int64, op, query string, args ...any) (model.Todo, error) {
	todo, err := scanTodo(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Todo{}, ErrTodoNotFound{ID: id}
		}
		return model.Todo{}, fmt.Errorf("%s %d: %w", op, id, err)
	}

	return todo, nil
}

func scanTodo(row pgx.Row) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(&t.ID, &t.Description, &t.Completed, &t.CreationDate)
	return t, err
}
