// package repository provides data access and error types
package repository

import (
	"fmt"
)

// ErrTodoNotFound is returned when no todo row has the requested ID
type ErrTodoNotFound struct {
	ID int64
}

// Error implements the error interface
func (e ErrTodoNotFound) Error() string {
	return fmt.Sprintf("todo with id %d not found", e.ID)
}
