package identity_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/vocalia/go-identity"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "greeting", "hello"))

	val, ok, err := store.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", val)

	require.NoError(t, store.Remove(ctx, "greeting"))

	_, ok, err = store.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent key is a no-op
	assert.NoError(t, store.Remove(ctx, "greeting"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := identity.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "ai-voice-users", `[{"email":"a@b.com"}]`))

	val, ok, err := store.Get(ctx, "ai-voice-users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"email":"a@b.com"}]`, val)

	// Values survive a new store instance over the same directory
	reopened, err := identity.NewFileStore(dir)
	require.NoError(t, err)

	val, ok, err = reopened.Get(ctx, "ai-voice-users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"email":"a@b.com"}]`, val)

	require.NoError(t, store.Remove(ctx, "ai-voice-users"))

	_, ok, err = store.Get(ctx, "ai-voice-users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := identity.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "ai-voice-settings:user/1", "{}"))

	val, ok, err := store.Get(ctx, "ai-voice-settings:user/1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", val)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}

func TestCorruptedCollectionSelfHeals(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	require.NoError(t, store.Set(ctx, identity.DefaultUsersKey, "{not json"))

	repo := identity.NewAccounts(store)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	// The corrupted key is cleared so the next write starts clean
	_, ok, err := store.Get(ctx, identity.DefaultUsersKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
