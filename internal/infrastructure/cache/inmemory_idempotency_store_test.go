package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "push:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "push:a", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		done, err := store.IsProcessed(ctx, "push:a")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("expired keys can be reused", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "push:b", time.Minute)
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		done, err := store.IsProcessed(ctx, "push:b")
		require.NoError(t, err)
		assert.False(t, done)

		isNew, err := store.MarkProcessed(ctx, "push:b", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("cleanup drops expired keys", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "push:c", time.Second)
		require.NoError(t, err)
		before := store.Size()

		now = now.Add(time.Hour)
		store.cleanup()
		assert.Less(t, store.Size(), before)
		assert.Zero(t, store.Size())
	})

	t.Run("forget releases a key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "push:d", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Forget(ctx, "push:d"))

		isNew, err := store.MarkProcessed(ctx, "push:d", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("unknown key", func(t *testing.T) {
		done, err := store.IsProcessed(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, done)
	})
}

func TestInMemoryIdempotencyStore_Concurrent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(context.Background(), "same", time.Hour); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
