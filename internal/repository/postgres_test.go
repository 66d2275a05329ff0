package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirocosta/todo-api/internal/model"
)

var todoRowColumns = []string{"id", "description", "completed", "creation_date"}

func newMockRepository(t *testing.T) (*PostgresTodoRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgresTodoRepository(pool), pool
}

func TestPostgresFindAll(t *testing.T) {
	t.Parallel()

	t.Run("rows in query order", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(listTodosQuery)).
			WillReturnRows(pgxmock.NewRows(todoRowColumns).
				AddRow(int64(1), "buy milk", false, epoch).
				AddRow(int64(2), "walk dog", true, epoch))

		todos, err := repo.FindAll(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []model.Todo{
			{ID: 1, Description: "buy milk", Completed: false, CreationDate: epoch},
			{ID: 2, Description: "walk dog", Completed: true, CreationDate: epoch},
		}, todos)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(listTodosQuery)).
			WillReturnRows(pgxmock.NewRows(todoRowColumns))

		todos, err := repo.FindAll(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(listTodosQuery)).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindAll(context.Background())

		assert.EqualError(t, err, "query todos: connection refused")
	})
}

func TestPostgresFindByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(getTodoQuery)).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows(todoRowColumns).AddRow(int64(5), "read", false, epoch))

		todo, err := repo.FindByID(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, model.Todo{ID: 5, Description: "read", CreationDate: epoch}, todo)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("no row", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(getTodoQuery)).
			WithArgs(int64(999999)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(context.Background(), 999999)

		assert.ErrorIs(t, err, ErrTodoNotFound{ID: 999999})
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(getTodoQuery)).
			WithArgs(int64(5)).
			WillReturnError(errors.New("timeout"))

		_, err := repo.FindByID(context.Background(), 5)

		assert.EqualError(t, err, "get todo 5: timeout")
		var notFound ErrTodoNotFound
		assert.False(t, errors.As(err, &notFound))
	})
}

func TestPostgresCreate(t *testing.T) {
	t.Parallel()

	repo, pool := newMockRepository(t)
	pool.ExpectQuery(regexp.QuoteMeta(createTodoQuery)).
		WithArgs("buy milk").
		WillReturnRows(pgxmock.NewRows(todoRowColumns).AddRow(int64(9), "buy milk", false, epoch))

	todo, err := repo.Create(context.Background(), "buy milk")

	require.NoError(t, err)
	assert.Equal(t, model.Todo{ID: 9, Description: "buy milk", CreationDate: epoch}, todo)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresUpdate(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		patch model.TodoPatch
		row   []any
	}{
		"completed only": {
			patch: model.TodoPatch{Completed: ptr(true)},
			row:   []any{int64(3), "keep", true, epoch},
		},
		"description only": {
			patch: model.TodoPatch{Description: ptr("new")},
			row:   []any{int64(3), "new", false, epoch},
		},
		"both in one statement": {
			patch: model.TodoPatch{Description: ptr("new"), Completed: ptr(true)},
			row:   []any{int64(3), "new", true, epoch},
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			repo, pool := newMockRepository(t)
			pool.ExpectQuery(regexp.QuoteMeta(updateTodoQuery)).
				WithArgs(int64(3), tc.patch.Description, tc.patch.Completed).
				WillReturnRows(pgxmock.NewRows(todoRowColumns).AddRow(tc.row...))

			todo, err := repo.Update(context.Background(), 3, tc.patch)

			require.NoError(t, err)
			assert.Equal(t, model.Todo{
				ID:           tc.row[0].(int64),
				Description:  tc.row[1].(string),
				Completed:    tc.row[2].(bool),
				CreationDate: epoch,
			}, todo)
			assert.NoError(t, pool.ExpectationsWereMet())
		})
	}

	t.Run("no row", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		patch := model.TodoPatch{Completed: ptr(false)}
		pool.ExpectQuery(regexp.QuoteMeta(updateTodoQuery)).
			WithArgs(int64(404), patch.Description, patch.Completed).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Update(context.Background(), 404, patch)

		assert.ErrorIs(t, err, ErrTodoNotFound{ID: 404})
	})
}

func TestPostgresDelete(t *testing.T) {
	t.Parallel()

	t.Run("returns the removed row", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(deleteTodoQuery)).
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows(todoRowColumns).AddRow(int64(2), "drop", true, epoch))

		todo, err := repo.Delete(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, model.Todo{ID: 2, Description: "drop", Completed: true, CreationDate: epoch}, todo)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("no row", func(t *testing.T) {
		t.Parallel()

		repo, pool := newMockRepository(t)
		pool.ExpectQuery(regexp.QuoteMeta(deleteTodoQuery)).
			WithArgs(int64(2)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Delete(context.Background(), 2)

		assert.ErrorIs(t, err, ErrTodoNotFound{ID: 2})
	})
}
