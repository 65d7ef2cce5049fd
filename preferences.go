package identity

import (
	"context"
	"encoding/json"
	"fmt"
)

// Settings are per-account preferences. Zero-value semantics follow the
// stored document; DefaultSettings is applied when no document exists.
type Settings struct {
	AutoSaveHistory         bool   `json:"auto_save_history"`
	DownloadAfterGeneration bool   `json:"download_after_generation"`
	MaxHistoryItems         int    `json:"max_history_items"`
	Theme                   string `json:"theme,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoSaveHistory: true,
		MaxHistoryItems: 20,
		Theme:           "system",
	}
}

// Preferences stores one Settings document per account id, namespaced under
// its own key prefix.
type Preferences struct {
	store  Store
	prefix string
	logger Logger
}

type PreferencesOption func(*Preferences)

func WithPreferencesLogger(logger Logger) PreferencesOption {
	return func(p *Preferences) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithPreferencesPrefix(prefix string) PreferencesOption {
	return func(p *Preferences) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

func NewPreferences(store Store, opts ...PreferencesOption) *Preferences {
	p := &Preferences{
		store:  store,
		prefix: DefaultSettingsPrefix,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

func (p *Preferences) key(userID string) string {
	return fmt.Sprintf("%s:%s", p.prefix, userID)
}

// Get returns the stored settings for the account, or the defaults when no
// document exists. A corrupted document is removed and reported as defaults.
func (p *Preferences) Get(ctx context.Context, userID string) (Settings, error) {
	if userID == "" {
		return Settings{}, ErrNoEmptyString
	}

	key := p.key(userID)

	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return Settings{}, wrapStorage(err, "unable to read settings")
	}

	if !ok {
		return DefaultSettings(), nil
	}

	settings := DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		p.logger.Warn("corrupted settings for %s, restoring defaults: %v", userID, err)
		if err := p.store.Remove(ctx, key); err != nil {
			p.logger.Warn("unable to clear corrupted settings key %q: %v", key, err)
		}
		return DefaultSettings(), nil
	}

	// Documents saved without a cap fall back to the default one.
	if settings.MaxHistoryItems <= 0 {
		settings.MaxHistoryItems = DefaultSettings().MaxHistoryItems
	}
	return settings, nil
}

func (p *Preferences) Save(ctx context.Context, userID string, settings Settings) error {
	if userID == "" {
		return ErrNoEmptyString
	}
	return saveJSON(ctx, p.store, p.key(userID), settings)
}

// Reset removes the stored document so the account falls back to defaults.
func (p *Preferences) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNoEmptyString
	}
	return p.store.Remove(ctx, p.key(userID))
}
