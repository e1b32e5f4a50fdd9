package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/todos/internal/domain/model"
)

// MemoryStore is an in-process Store backed by a map. Ids start at 1 and
// are never reused, matching an autoincrement column.
type MemoryStore struct {
	mu     sync.RWMutex
	todos  map[int64]model.Todo
	nextID int64
	closed bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos:  make(map[int64]model.Todo),
		nextID: 1,
	}
}

// Driver returns "memory".
func (s *MemoryStore) Driver() string { return DriverMemory }

func (s *MemoryStore) List(ctx context.Context) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "list"); err != nil {
		return nil, err
	}

	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "get"); err != nil {
		return model.Todo{}, err
	}

	t, ok := s.todos[id]
	if !ok {
		return model.Todo{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) Create(ctx context.Context, in model.Input) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "create"); err != nil {
		return model.Todo{}, err
	}

	t := model.Todo{ID: s.nextID}.Apply(in)
	s.todos[t.ID] = t
	s.nextID++
	return t, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, in model.Input) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "update"); err != nil {
		return model.Todo{}, err
	}

	t, ok := s.todos[id]
	if !ok {
		return model.Todo{}, ErrNotFound
	}
	t = t.Apply(in)
	s.todos[id] = t
	return t, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "delete"); err != nil {
		return err
	}

	if _, ok := s.todos[id]; !ok {
		return ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "count"); err != nil {
		return 0, err
	}
	return len(s.todos), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx, "ping")
}

// Close marks the store closed; later calls fail with a storage error.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// check must be called with s.mu held.
func (s *MemoryStore) check(ctx context.Context, op string) error {
	if s.closed {
		return storageError(op, ErrClosed)
	}
	return storageError(op, ctx.Err())
}
