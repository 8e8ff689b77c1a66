package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first mark reports new", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "ev-first", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("second mark reports duplicate", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "ev-dup", time.Hour)
		require.NoError(t, err)
		require.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "ev-dup", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired entry can be marked again", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "ev-short", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "ev-short", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("unknown event is not processed", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marked event is processed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "ev-live", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "ev-live")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired event is not processed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "ev-expired", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "ev-expired")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	assert.Equal(t, 0, store.Size())

	store.MarkProcessed(ctx, "a", time.Hour)
	store.MarkProcessed(ctx, "b", time.Hour)
	assert.Equal(t, 2, store.Size())

	// Re-marking an existing ID does not grow the map.
	store.MarkProcessed(ctx, "a", time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_EvictExpired(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	store.MarkProcessed(ctx, "stale-1", 10*time.Millisecond)
	store.MarkProcessed(ctx, "stale-2", 10*time.Millisecond)
	store.MarkProcessed(ctx, "fresh", time.Hour)
	require.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.evictExpired()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "stale-1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const workers = 100
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "contested", time.Hour)
			results <- err == nil && isNew
		}()
	}

	winners := 0
	for i := 0; i < workers; i++ {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one goroutine should see the event as new")
}

func TestInMemoryIdempotencyStore_DistinctIDs(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		isNew, err := store.MarkProcessed(ctx, fmt.Sprintf("ev-%d", i), time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	}
	assert.Equal(t, 10, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	// Closing again must not panic or block.
	require.NoError(t, store.Close())
}
