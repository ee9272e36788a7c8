package ports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore implementation
// adheres to the defined interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405") + "-"

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + domain.KeySearchResults
		value := `[{"id":1,"name":"Yosemite"}]`

		require.NoError(t, store.Set(ctx, key, value), "Set should not return error")

		got, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, value, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + domain.KeyDebugInfo
		require.NoError(t, store.Set(ctx, key, `{"score":0.1}`))
		require.NoError(t, store.Set(ctx, key, `{"score":0.9}`))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"score":0.9}`, got)
	})

	t.Run("Large Value", func(t *testing.T) {
		key := prefix + domain.KeyUserSketch
		value := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo", 20000)

		require.NoError(t, store.Set(ctx, key, value))
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		key := prefix + "to-delete"
		require.NoError(t, store.Set(ctx, key, "x"))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")
		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is not an error")
	})

	t.Run("Keys", func(t *testing.T) {
		k1 := prefix + "k1"
		k2 := prefix + "k2"
		require.NoError(t, store.Set(ctx, k1, "1"))
		require.NoError(t, store.Set(ctx, k2, "2"))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
