package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/landsketch/internal/adapters/file"
	"github.com/aretw0/landsketch/internal/config"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/aretw0/landsketch/pkg/adapters/redis"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.EnvFile == "" {
		opts.EnvFile = filepath.Join(t.TempDir(), "missing.env")
	}
	app, err := Setup(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, closeFn, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
		assert.NoError(t, closeFn())
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		store, _, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverFile, Path: dir})
		require.NoError(t, err)
		assert.IsType(t, &file.Store{}, store)

		require.NoError(t, store.Set(ctx, "k", "v"))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, closeFn, err := OpenStore(ctx, config.StoreConfig{
			Driver: config.DriverRedis,
			Redis:  config.RedisConfig{Addr: mr.Addr(), Prefix: "t:", TTL: "60"},
		})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &redis.Store{}, store)

		require.NoError(t, store.Set(ctx, "k", "v"))
		assert.True(t, mr.Exists("t:kv:k"))
	})

	t.Run("Redis Unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := OpenStore(ctx, config.StoreConfig{
			Driver: config.DriverRedis,
			Redis:  config.RedisConfig{Addr: addr},
		})
		assert.ErrorContains(t, err, "unreachable")
	})

	t.Run("Unknown", func(t *testing.T) {
		_, _, err := OpenStore(ctx, config.StoreConfig{Driver: "etcd"})
		assert.ErrorContains(t, err, "etcd")
	})
}

func TestSetup_FlagOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "landsketch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("endpoint: http://search.local:9000\ncanvas: {width: 300, height: 200}\n"), 0644))

	app := setupApp(t, Options{ConfigPath: cfgPath})
	url, err := app.Config.SearchURL()
	require.NoError(t, err)
	assert.Equal(t, "http://search.local:9000/api/search", url)

	app = setupApp(t, Options{ConfigPath: cfgPath, Endpoint: "http://other:1234"})
	url, err = app.Config.SearchURL()
	require.NoError(t, err)
	assert.Equal(t, "http://other:1234/api/search", url)

	_, err = Setup(context.Background(), Options{
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		Store:   "etcd",
	})
	assert.Error(t, err)
}

func TestNewStudio_UsesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "landsketch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("canvas: {width: 300, height: 200}\n"), 0644))
	app := setupApp(t, Options{ConfigPath: cfgPath})

	studio, err := app.NewStudio(memory.NewStore())
	require.NoError(t, err)

	w, h := studio.Bounds()
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
	assert.True(t, studio.Engine().Mounted())
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	NewNotifier(&buf).Notify(context.Background(), "Error creating image file.")
	assert.Equal(t, ">>> Error creating image file.\n", buf.String())

	buf.Reset()
	nav := ResultsNavigator(&buf)
	require.NoError(t, nav.Navigate(context.Background(), domain.ViewCanvas))
	assert.Empty(t, buf.String())
	require.NoError(t, nav.Navigate(context.Background(), domain.ViewResults))
	assert.Contains(t, buf.String(), "results")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, HandleExecutionError(nil))
	assert.NoError(t, HandleExecutionError(context.Canceled))
	assert.Error(t, HandleExecutionError(os.ErrPermission))
}

func TestOpenStore_Encrypted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	store, _, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverFile, Path: dir, EncryptionKey: key})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "abc/searchResults", `[{"name":"Fjord"}]`))

	got, err := store.Get(ctx, "abc/searchResults")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Fjord"}]`, got)

	plain := file.New(dir)
	raw, err := plain.Get(ctx, "abc/searchResults")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Fjord")

	_, _, err = OpenStore(ctx, config.StoreConfig{Driver: config.DriverMemory, EncryptionKey: "bad"})
	assert.ErrorContains(t, err, "encryption_key")
}
