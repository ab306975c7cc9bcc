package tenant_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/pkg/tenant"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		defer cache.Close()

		tn := createTestTenant("acme", true)
		cache.Set(context.Background(), "acme", tn, time.Minute)

		got, ok := cache.Get(context.Background(), "acme")
		require.True(t, ok)
		assert.Equal(t, tn, got)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		defer cache.Close()

		_, ok := cache.Get(context.Background(), "ghost")
		assert.False(t, ok)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		defer cache.Close()

		cache.Set(context.Background(), "acme", createTestTenant("acme", true), 10*time.Millisecond)

		time.Sleep(30 * time.Millisecond)

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		defer cache.Close()

		cache.Set(context.Background(), "acme", createTestTenant("acme", true), time.Minute)
		cache.Delete(context.Background(), "acme")

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCacheWithSize(2)
		defer cache.Close()

		ctx := context.Background()
		cache.Set(ctx, "first", createTestTenant("first", true), time.Minute)
		cache.Set(ctx, "second", createTestTenant("second", true), time.Minute)

		// Touch "first" so "second" becomes the eviction candidate.
		_, ok := cache.Get(ctx, "first")
		require.True(t, ok)

		cache.Set(ctx, "third", createTestTenant("third", true), time.Minute)

		_, ok = cache.Get(ctx, "second")
		assert.False(t, ok, "lru entry should have been evicted")

		_, ok = cache.Get(ctx, "first")
		assert.True(t, ok)
		_, ok = cache.Get(ctx, "third")
		assert.True(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		require.NoError(t, cache.Close())
		require.NoError(t, cache.Close())
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		defer cache.Close()

		ctx := context.Background()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("tenant%02d", i%10)
				cache.Set(ctx, key, createTestTenant(key, true), time.Minute)
				cache.Get(ctx, key)
				if i%3 == 0 {
					cache.Delete(ctx, key)
				}
			}(i)
		}
		wg.Wait()
	})
}

func TestNoopCache(t *testing.T) {
	t.Parallel()

	cache := tenant.NewNoopCache()

	cache.Set(context.Background(), "acme", createTestTenant("acme", true), time.Minute)

	_, ok := cache.Get(context.Background(), "acme")
	assert.False(t, ok, "noop cache never stores")

	cache.Delete(context.Background(), "acme")
	assert.NoError(t, cache.Close())
}
