package identity

import (
	"context"
	"encoding/json"
)

// Default logical storage keys. They match the keys the original web shell
// used so an existing deployment keeps its data.
const (
	DefaultUsersKey       = "ai-voice-users"
	DefaultSessionKey     = "ai-voice-user"
	DefaultActivityKey    = "ai-voice-activities"
	DefaultSettingsPrefix = "ai-voice-settings"
	DefaultHistoryPrefix  = "ai-voice-history"
)

// Store is the persistence contract every collection in this package sits
// on: opaque string values under logical keys. Implementations are expected
// to make Get/Set/Remove individually atomic; there are no transactions
// across keys, so callers must tolerate partial application when a process
// dies between two writes.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// loadJSON decodes the value under key into out. A missing key leaves out
// untouched. A value that fails to decode is logged, removed, and treated as
// absent — corruption recovers to the empty state instead of propagating.
func loadJSON[T any](ctx context.Context, store Store, logger Logger, key string, out *T) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return wrapStorage(err, "storage read failed")
	}

	if !ok || raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Warn("discarding corrupted value under %q: %v", key, err)
		if rerr := store.Remove(ctx, key); rerr != nil {
			logger.Warn("unable to clear corrupted key %q: %v", key, rerr)
		}
		var zero T
		*out = zero
	}

	return nil
}

func saveJSON[T any](ctx context.Context, store Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return wrapStorage(err, "storage encode failed")
	}
	return wrapStorage(store.Set(ctx, key, string(raw)), "storage write failed")
}
