package identity_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/vocalia/go-identity"
)

func TestPreferencesDefaults(t *testing.T) {
	ctx := context.Background()
	prefs := identity.NewPreferences(identity.NewMemoryStore())

	settings, err := prefs.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, settings.AutoSaveHistory)
	assert.False(t, settings.DownloadAfterGeneration)
	assert.Equal(t, 20, settings.MaxHistoryItems)
	assert.Equal(t, "system", settings.Theme)
}

func TestPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	prefs := identity.NewPreferences(identity.NewMemoryStore())

	require.NoError(t, prefs.Save(ctx, "user-1", identity.Settings{
		AutoSaveHistory:         false,
		DownloadAfterGeneration: true,
		MaxHistoryItems:         5,
		Theme:                   "dark",
	}))

	settings, err := prefs.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, settings.AutoSaveHistory)
	assert.True(t, settings.DownloadAfterGeneration)
	assert.Equal(t, 5, settings.MaxHistoryItems)
	assert.Equal(t, "dark", settings.Theme)

	// Each account has its own document
	other, err := prefs.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, other.AutoSaveHistory)
}

func TestPreferencesMissingCapFallsBack(t *testing.T) {
	ctx := context.Background()
	prefs := identity.NewPreferences(identity.NewMemoryStore())

	require.NoError(t, prefs.Save(ctx, "user-1", identity.Settings{
		AutoSaveHistory: true,
	}))

	settings, err := prefs.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 20, settings.MaxHistoryItems, "a document saved without a cap reads back the default")
}

func TestPreferencesReset(t *testing.T) {
	ctx := context.Background()
	prefs := identity.NewPreferences(identity.NewMemoryStore())

	require.NoError(t, prefs.Save(ctx, "user-1", identity.Settings{Theme: "dark"}))
	require.NoError(t, prefs.Reset(ctx, "user-1"))

	settings, err := prefs.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, settings.AutoSaveHistory)
	assert.Equal(t, "system", settings.Theme)
}

func TestPreferencesCorruptionRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()
	prefs := identity.NewPreferences(store)

	key := fmt.Sprintf("%s:user-1", identity.DefaultSettingsPrefix)
	require.NoError(t, store.Set(ctx, key, "{bad json"))

	settings, err := prefs.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, settings.AutoSaveHistory)

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "corrupted document is removed")
}

func TestPreferencesRequireUserID(t *testing.T) {
	ctx := context.Background()
	prefs := identity.NewPreferences(identity.NewMemoryStore())

	_, err := prefs.Get(ctx, "")
	assert.ErrorIs(t, err, identity.ErrNoEmptyString)

	assert.ErrorIs(t, prefs.Save(ctx, "", identity.Settings{}), identity.ErrNoEmptyString)
	assert.ErrorIs(t, prefs.Reset(ctx, ""), identity.ErrNoEmptyString)
}
