package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/todos/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory opens an empty store for one test.
type storeFactory func(t *testing.T) Store

// runStoreContract exercises the behavior every Store must share.
func runStoreContract(t *testing.T, open storeFactory) {
	ctx := context.Background()

	t.Run("create then get returns the same todo", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(ctx, model.Input{Title: "Buy milk"})
		require.NoError(t, err)
		assert.Greater(t, created.ID, int64(0))
		assert.Equal(t, "Buy milk", created.Title)
		assert.False(t, created.Completed)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("list grows by the number of created todos", func(t *testing.T) {
		s := open(t)
		before, err := s.List(ctx)
		require.NoError(t, err)
		require.NotNil(t, before)
		assert.Empty(t, before)

		for _, title := range []string{"a", "b", "c"} {
			_, err := s.Create(ctx, model.Input{Title: title, Completed: title == "b"})
			require.NoError(t, err)
		}

		after, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, after, len(before)+3)
		assert.Equal(t, "a", after[0].Title)
		assert.True(t, after[1].Completed)
		assert.Less(t, after[0].ID, after[1].ID)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("update overwrites fields and keeps the id", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(ctx, model.Input{Title: "Buy milk"})
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, model.Input{Title: "Buy milk", Completed: true})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, updated.Completed)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("update of a missing id is not found", func(t *testing.T) {
		s := open(t)
		_, err := s.Update(ctx, 999, model.Input{Title: "ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrStorage)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delete then get is not found", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(ctx, model.Input{Title: "Buy milk"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, created.ID))

		_, err = s.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete of a missing id is not found without storage error", func(t *testing.T) {
		s := open(t)
		err := s.Delete(ctx, 12345)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrStorage)
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		s := open(t)
		first, err := s.Create(ctx, model.Input{Title: "first"})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, first.ID))

		second, err := s.Create(ctx, model.Input{Title: "second"})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("concurrent creates get distinct ids", func(t *testing.T) {
		s := open(t)
		const n = 20
		ids := make(chan int64, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := s.Create(ctx, model.Input{Title: "parallel"})
				if err == nil {
					ids <- created.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("ping succeeds on an open store", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("calls after close are storage errors", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Close())

		_, err := s.List(ctx)
		assert.ErrorIs(t, err, ErrStorage)
		_, err = s.Create(ctx, model.Input{Title: "late"})
		assert.ErrorIs(t, err, ErrStorage)
		assert.False(t, errors.Is(err, ErrNotFound))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Create(ctx, model.Input{Title: "x"})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, "mysql", "whatever")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := storageError("create", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage: create: disk full", err.Error())
	assert.Nil(t, storageError("create", nil))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "create", se.Op)
}
