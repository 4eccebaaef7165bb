package kvstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/authkit/pkg/kvstore"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "authToken", "tok-1"))

		value, err := store.Get(ctx, "authToken")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", value)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})

	t.Run("overwrite", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", "v1"))
		require.NoError(t, store.Set(ctx, "k", "v2"))

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", value)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", "v"))
		require.NoError(t, store.Remove(ctx, "k"))
		require.NoError(t, store.Remove(ctx, "k"))

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		_, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, kvstore.ErrEmptyKey)
		assert.ErrorIs(t, store.Set(ctx, "", "v"), kvstore.ErrEmptyKey)
		assert.ErrorIs(t, store.Remove(ctx, ""), kvstore.ErrEmptyKey)
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = store.Set(ctx, "k", "v")
					_, _ = store.Get(ctx, "k")
				}
			}()
		}
		wg.Wait()

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", value)
	})
}

func TestMemoryFlash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("take is read-once", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		require.NoError(t, flash.Put(ctx, "returnTo", "/clubs/5", time.Minute))

		value, err := flash.Take(ctx, "returnTo")
		require.NoError(t, err)
		assert.Equal(t, "/clubs/5", value)

		_, err = flash.Take(ctx, "returnTo")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})

	t.Run("expired value is gone", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		require.NoError(t, flash.Put(ctx, "returnTo", "/clubs/5", -time.Second))

		_, err := flash.Take(ctx, "returnTo")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})

	t.Run("take of missing key", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		_, err := flash.Take(ctx, "missing")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})
}
