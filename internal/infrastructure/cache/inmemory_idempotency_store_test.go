package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("reserves new key", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "user-1:key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects held key", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "user-1:key-2", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Reserve(ctx, "user-1:key-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("allows reuse after expiration", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "user-1:key-3", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, err = store.Reserve(ctx, "user-1:key-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("allows reuse after release", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "user-1:key-4", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.Release(ctx, "user-1:key-4"))

		ok, err = store.Reserve(ctx, "user-1:key-4", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, _ = store.Reserve(ctx, "short-1", 10*time.Millisecond)
	_, _ = store.Reserve(ctx, "short-2", 10*time.Millisecond)
	_, _ = store.Reserve(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	ok, err := store.Reserve(ctx, "long", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "long-lived key should survive cleanup")
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 100

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(ctx, "checkout", time.Hour)
			if err == nil && ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won, "exactly one request should win the key")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_FallsBackToMemory(t *testing.T) {
	store := NewIdempotencyStore(nil, nil)
	defer store.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}
