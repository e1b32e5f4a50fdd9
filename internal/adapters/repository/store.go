// Package repository defines the todo store interface and its implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/todos/internal/domain/model"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Store provides read/write access to the todos table.
//
// Absent rows are reported with ErrNotFound. Every other failure matches
// ErrStorage; mutating calls roll back before returning it.
type Store interface {
	// List returns every todo ordered by id.
	List(ctx context.Context) ([]model.Todo, error)

	// Get returns the todo with id.
	Get(ctx context.Context, id int64) (model.Todo, error)

	// Create inserts a todo and returns it with its assigned id.
	Create(ctx context.Context, in model.Input) (model.Todo, error)

	// Update overwrites title and completed of an existing todo.
	Update(ctx context.Context, id int64, in model.Input) (model.Todo, error)

	// Delete removes the todo with id.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored todos.
	Count(ctx context.Context) (int, error)

	// Ping checks that storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying handle.
	Close() error
}

// Open returns the Store for driver. dsn is ignored by the memory driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, driver, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
