package identity_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	identity "github.com/vocalia/go-identity"
)

func newBunStore(t *testing.T) *identity.BunStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	// Keep the shared in-memory database alive for the test's duration.
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := identity.NewBunStore(db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestBunStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "users", `[{"email":"a@b.com"}]`))

	value, ok, err := store.Get(ctx, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"email":"a@b.com"}]`, value)
}

func TestBunStoreSetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t)

	require.NoError(t, store.Set(ctx, "session", "first"))
	require.NoError(t, store.Set(ctx, "session", "second"))

	value, ok, err := store.Get(ctx, "session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", value, "the upsert replaces the row in place")

	other, ok, err := store.Get(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, other)
}

func TestBunStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t)

	require.NoError(t, store.Set(ctx, "session", "value"))
	require.NoError(t, store.Remove(ctx, "session"))

	_, ok, err := store.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent key is a no-op
	require.NoError(t, store.Remove(ctx, "session"))
}
