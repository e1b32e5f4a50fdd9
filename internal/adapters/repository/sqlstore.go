package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/todos/internal/domain/model"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// SQLStore implements Store on database/sql. One *sql.DB is shared by all
// requests; each call holds a connection or transaction only for its own
// duration.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	q       queries

	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	autoMigrate     bool
}

// OpenSQL opens and pings a pool for driver ("sqlite" or "postgres") and,
// unless disabled, creates the todos table.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	s := &SQLStore{
		dialect:         d,
		q:               buildQueries(d),
		maxOpenConns:    10,
		maxIdleConns:    5,
		connMaxLifetime: 30 * time.Minute,
		autoMigrate:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if privateMemoryDSN(driver, dsn) {
		// Every pooled connection would see its own empty database.
		s.maxOpenConns = 1
		s.maxIdleConns = 1
		s.connMaxLifetime = 0
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, storageError("open", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxIdleConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, storageError("ping", err)
	}
	s.db = db

	if s.autoMigrate {
		if err := s.ensureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// ensureSchema runs the idempotent DDL for the dialect in one transaction.
func (s *SQLStore) ensureSchema(ctx context.Context) error {
	return s.withTx(ctx, "ensure_schema", func(tx *sql.Tx) error {
		for _, stmt := range s.dialect.schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Driver returns the dialect name.
func (s *SQLStore) Driver() string { return s.dialect.name }

// Stats returns connection pool statistics.
func (s *SQLStore) Stats() sql.DBStats { return s.db.Stats() }

// Close closes the pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// Ping checks the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return storageError("ping", s.db.PingContext(ctx))
}

// List returns all todos ordered by id.
func (s *SQLStore) List(ctx context.Context) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, s.q.list)
	if err != nil {
		return nil, storageError("list", err)
	}
	defer rows.Close()

	todos, err := scanTodos(rows)
	if err != nil {
		return nil, storageError("list", err)
	}
	return todos, nil
}

// Get returns one todo or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id int64) (model.Todo, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx, s.q.get, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, storageError("get", err)
	}
	return t, nil
}

// Create inserts a todo and returns it with the id assigned by the database.
func (s *SQLStore) Create(ctx context.Context, in model.Input) (model.Todo, error) {
	var out model.Todo
	err := s.withTx(ctx, "create", func(tx *sql.Tx) error {
		t, err := scanTodo(tx.QueryRowContext(ctx, s.q.insert, in.Title, in.Completed))
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Update overwrites title and completed; ErrNotFound when no row matches.
func (s *SQLStore) Update(ctx context.Context, id int64, in model.Input) (model.Todo, error) {
	var out model.Todo
	err := s.withTx(ctx, "update", func(tx *sql.Tx) error {
		t, err := scanTodo(tx.QueryRowContext(ctx, s.q.update, in.Title, in.Completed, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Delete removes a todo; ErrNotFound when no row matches.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	return s.withTx(ctx, "delete", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q.delete, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Count returns the number of rows in todos.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.q.count).Scan(&n); err != nil {
		return 0, storageError("count", err)
	}
	return n, nil
}

// withTx runs fn inside a transaction. The transaction is rolled back on
// every path except a successful commit. ErrNotFound from fn is returned
// as is; any other failure is wrapped as a StorageError for op.
func (s *SQLStore) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError(op, err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	if err := fn(tx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return storageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageError(op, err)
	}
	return nil
}
