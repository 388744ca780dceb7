package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gomarketplace-cart/config"
	"gomarketplace-cart/pkg/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

const testKey = "GOMARKETPLACE@CARTPRODUCTS"

// exerciseStore runs the contract every driver must satisfy.
func exerciseStore(t *testing.T, store kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, found, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	require.False(t, found, "fresh store must report absent")

	require.NoError(t, store.Set(ctx, testKey, `[{"id":"a","quantity":1}]`))
	got, found, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"id":"a","quantity":1}]`, got)

	require.NoError(t, store.Set(ctx, testKey, `[]`))
	got, found, err = store.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, got, "set replaces the previous value")

	_, found, err = store.Get(ctx, "OTHER@KEY")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	_, found, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	require.False(t, found, "close drops process-local state")
}

func TestMemoryStoreHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore()
	require.ErrorIs(t, store.Set(ctx, testKey, "[]"), context.Canceled)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(" ")
	require.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	// Values survive reopening the file.
	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, reopened.Close())
	})
	got, found, err := reopened.Get(context.Background(), testKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, got)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	require.NoError(t, store.Connect(context.Background()))
	exerciseStore(t, store)

	raw, err := mr.Get(testKey)
	require.NoError(t, err)
	require.Equal(t, `[]`, raw)
}

func TestRedisStoreAcceptsURL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	exerciseStore(t, store)
}

func TestRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore("")
	require.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, PostgresPoolConfig{DSN: dsn, MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, testKey)
		_ = store.Close()
	})
	_, err = store.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, testKey)
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{StoreDriver: kvstore.DriverMemory})
		require.NoError(t, err)
		exerciseStore(t, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{
			StoreDriver:     kvstore.DriverSQLite,
			StoreSQLitePath: filepath.Join(t.TempDir(), "cart.db"),
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		exerciseStore(t, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, err := Open(ctx, &config.Config{StoreDriver: kvstore.DriverRedis, RedisAddr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		exerciseStore(t, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{StoreDriver: "floppy"})
		require.ErrorContains(t, err, "floppy")
	})
}
