// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	repository "github.com/okian/todos/internal/adapters/repository"
	"github.com/okian/todos/internal/domain/model"
	"github.com/okian/todos/pkg/logger"
	"github.com/okian/todos/pkg/metrics"
)

// Sentinel errors for the service lifecycle.
var (
	ErrNotStarted = errors.New("service not started")
)

// Service owns the storage handle and exposes the todo operations.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	driver      string
	dsn         string
	storeOpts   []repository.Option
	injected    bool
	ownsStore   bool
	autoMigrate bool

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorage selects the storage driver and DSN opened on Start.
func WithStorage(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
		s.dsn = dsn
	}
}

// WithPool sizes the SQL connection pool.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(s *Service) {
		s.storeOpts = append(s.storeOpts,
			repository.WithMaxOpenConns(maxOpen),
			repository.WithMaxIdleConns(maxIdle),
			repository.WithConnMaxLifetime(maxLifetime),
		)
	}
}

// WithAutoMigrate toggles table creation when the store opens.
func WithAutoMigrate(enabled bool) Option {
	return func(s *Service) {
		s.autoMigrate = enabled
	}
}

// WithStore injects an already opened store. Stop does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.injected = true
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:      repository.DriverMemory,
		autoMigrate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the storage handle. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if !s.injected {
		s.logger.Info(ctx, "opening todo store", logger.String("driver", s.driver))
		opts := append([]repository.Option{repository.WithAutoMigrate(s.autoMigrate)}, s.storeOpts...)
		store, err := repository.Open(ctx, s.driver, s.dsn, opts...)
		if err != nil {
			s.logger.Error(ctx, "failed to open todo store", logger.String("driver", s.driver), logger.Error(err))
			return err
		}
		s.store = store
		s.ownsStore = true
	}

	s.started = true
	s.logger.Info(ctx, "todo service started", logger.String("driver", s.driverName()))
	return nil
}

// Stop closes the storage handle if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "failed to close todo store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(ctx, "todo service stopped")
}

// Driver names the storage backend in use.
func (s *Service) Driver() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.driverName()
}

// driverName must be called with s.mu held.
func (s *Service) driverName() string {
	if d, ok := s.store.(interface{ Driver() string }); ok {
		return d.Driver()
	}
	return s.driver
}

// storeFor returns the active store or ErrNotStarted.
func (s *Service) storeFor() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// observe records the outcome of a storage call.
func (s *Service) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		result = "not_found"
		metrics.RecordTodoNotFound(op)
	case err != nil:
		result = "error"
	}
	metrics.RecordStorageOperation(op, result, float64(time.Since(start).Microseconds())/1000)
}

// List returns every todo.
func (s *Service) List(ctx context.Context) ([]model.Todo, error) {
	store, err := s.storeFor()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	todos, err := store.List(ctx)
	s.observe("list", start, err)
	if err != nil {
		s.logger.Error(ctx, "error fetching todos", logger.Error(err))
		return nil, err
	}
	s.logger.Info(ctx, "fetched todos", logger.Int("count", len(todos)))
	return todos, nil
}

// Get returns the todo with id or repository.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (model.Todo, error) {
	store, err := s.storeFor()
	if err != nil {
		return model.Todo{}, err
	}
	start := time.Now()
	todo, err := store.Get(ctx, id)
	s.observe("get", start, err)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn(ctx, "todo not found", logger.Int64("id", id))
		return model.Todo{}, err
	case err != nil:
		s.logger.Error(ctx, "error fetching todo", logger.Int64("id", id), logger.Error(err))
		return model.Todo{}, err
	}
	s.logger.Info(ctx, "fetched todo", logger.Int64("id", id))
	return todo, nil
}

// Create validates in and stores a new todo.
func (s *Service) Create(ctx context.Context, in model.Input) (model.Todo, error) {
	if err := in.Validate(); err != nil {
		return model.Todo{}, err
	}
	store, err := s.storeFor()
	if err != nil {
		return model.Todo{}, err
	}
	s.logger.Info(ctx, "creating todo", logger.String("title", in.Title), logger.Bool("completed", in.Completed))

	start := time.Now()
	todo, err := store.Create(ctx, in)
	s.observe("create", start, err)
	if err != nil {
		s.logger.Error(ctx, "error creating todo", logger.Error(err))
		return model.Todo{}, err
	}
	metrics.RecordTodoCreated()
	s.logger.Info(ctx, "created todo", logger.Int64("id", todo.ID))
	return todo, nil
}

// Update validates in and overwrites the todo with id.
func (s *Service) Update(ctx context.Context, id int64, in model.Input) (model.Todo, error) {
	if err := in.Validate(); err != nil {
		return model.Todo{}, err
	}
	store, err := s.storeFor()
	if err != nil {
		return model.Todo{}, err
	}
	start := time.Now()
	todo, err := store.Update(ctx, id, in)
	s.observe("update", start, err)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn(ctx, "todo not found for update", logger.Int64("id", id))
		return model.Todo{}, err
	case err != nil:
		s.logger.Error(ctx, "error updating todo", logger.Int64("id", id), logger.Error(err))
		return model.Todo{}, err
	}
	s.logger.Info(ctx, "updated todo", logger.Int64("id", id))
	return todo, nil
}

// Delete removes the todo with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	store, err := s.storeFor()
	if err != nil {
		return err
	}
	start := time.Now()
	err = store.Delete(ctx, id)
	s.observe("delete", start, err)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn(ctx, "todo not found for deletion", logger.Int64("id", id))
		return err
	case err != nil:
		s.logger.Error(ctx, "error deleting todo", logger.Int64("id", id), logger.Error(err))
		return err
	}
	metrics.RecordTodoDeleted()
	s.logger.Info(ctx, "deleted todo", logger.Int64("id", id))
	return nil
}

// Ping checks storage health.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.storeFor()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"driver":  s.driver,
	}
	if !s.started || s.store == nil {
		return stats
	}
	stats["driver"] = s.driverName()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if n, err := s.store.Count(ctx); err == nil {
		stats["todos"] = n
		metrics.UpdateTodosTotal(n)
	}

	if p, ok := s.store.(interface{ Stats() sql.DBStats }); ok {
		ps := p.Stats()
		stats["pool"] = map[string]interface{}{
			"maxOpen":   ps.MaxOpenConnections,
			"open":      ps.OpenConnections,
			"inUse":     ps.InUse,
			"idle":      ps.Idle,
			"waitCount": ps.WaitCount,
			"waitMs":    ps.WaitDuration.Milliseconds(),
		}
		metrics.UpdatePoolStats(ps)
	}
	return stats
}
