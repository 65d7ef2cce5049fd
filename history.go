package identity

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// VoiceClip is one saved generation result in an account's history.
type VoiceClip struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Markup    string    `json:"markup,omitempty"`
	VoiceID   string    `json:"voice_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptEvent is the message the embedded generator posts when it
// finishes producing a clip.
type TranscriptEvent struct {
	Text    string `json:"text"`
	Markup  string `json:"markup,omitempty"`
	VoiceID string `json:"voice_id,omitempty"`
}

// History stores generated voice clips per account and translates generator
// transcript events into history writes and audit entries.
type History struct {
	store       Store
	preferences *Preferences
	activity    ActivityLog
	prefix      string
	logger      Logger
	now         func() time.Time
}

type HistoryOption func(*History)

func WithHistoryLogger(logger Logger) HistoryOption {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithHistoryPrefix(prefix string) HistoryOption {
	return func(h *History) {
		if prefix != "" {
			h.prefix = prefix
		}
	}
}

func WithHistoryClock(clock func() time.Time) HistoryOption {
	return func(h *History) {
		if clock != nil {
			h.now = clock
		}
	}
}

func NewHistory(store Store, preferences *Preferences, activity ActivityLog, opts ...HistoryOption) *History {
	h := &History{
		store:       store,
		preferences: preferences,
		activity:    activity,
		prefix:      DefaultHistoryPrefix,
		logger:      defLogger{},
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

func (h *History) key(userID string) string {
	return fmt.Sprintf("%s:%s", h.prefix, userID)
}

// List returns the account's saved clips, newest last (append order).
func (h *History) List(ctx context.Context, userID string) ([]VoiceClip, error) {
	if userID == "" {
		return nil, ErrNoEmptyString
	}

	var clips []VoiceClip
	if err := loadJSON(ctx, h.store, h.logger, h.key(userID), &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// Remove deletes one clip from the account's history.
func (h *History) Remove(ctx context.Context, userID string, clipID uuid.UUID) error {
	if userID == "" {
		return ErrNoEmptyString
	}

	clips, err := h.List(ctx, userID)
	if err != nil {
		return err
	}

	for i := range clips {
		if clips[i].ID == clipID {
			return saveJSON(ctx, h.store, h.key(userID), append(clips[:i:i], clips[i+1:]...))
		}
	}

	return ErrNotFound
}

// Clear wipes the account's history.
func (h *History) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNoEmptyString
	}
	return h.store.Remove(ctx, h.key(userID))
}

// HandleTranscript processes a generator event for the given session. The
// voice-created audit entry is always appended; the history write happens
// only when the account's auto-save preference is on.
func (h *History) HandleTranscript(ctx context.Context, session *SessionObject, event TranscriptEvent) (*VoiceClip, error) {
	if session == nil || session.UserID == "" {
		return nil, ErrUnableToFindSession
	}

	h.activity.Append(ctx, session, ActionVoiceCreated, truncate(event.Text, 120))

	settings, err := h.preferences.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if !settings.AutoSaveHistory {
		return nil, nil
	}

	clip := VoiceClip{
		ID:        uuid.New(),
		Text:      event.Text,
		Markup:    event.Markup,
		VoiceID:   event.VoiceID,
		CreatedAt: h.now(),
	}

	clips, err := h.List(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	clips = append(clips, clip)

	// Cap the history at the account's preference, keeping the newest clips.
	if max := settings.MaxHistoryItems; max > 0 && len(clips) > max {
		clips = clips[len(clips)-max:]
	}

	if err := saveJSON(ctx, h.store, h.key(session.UserID), clips); err != nil {
		return nil, err
	}

	return &clip, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Never split a multi-byte rune.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
