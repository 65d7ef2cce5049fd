package identity_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/vocalia/go-identity"
)

type historyFixture struct {
	history *identity.History
	prefs   *identity.Preferences
	log     identity.ActivityLog
	session *identity.SessionObject
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()

	store := identity.NewMemoryStore()
	prefs := identity.NewPreferences(store)
	log := identity.NewActivityLog(store)

	return &historyFixture{
		history: identity.NewHistory(store, prefs, log),
		prefs:   prefs,
		log:     log,
		session: &identity.SessionObject{
			UserID: uuid.New().String(),
			Email:  "a@b.com",
			Name:   "A",
		},
	}
}

func TestHandleTranscriptSavesClip(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	clip, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{
		Text:    "Hello world",
		Markup:  "<speak>Hello world</speak>",
		VoiceID: "en-US-neural",
	})
	require.NoError(t, err)
	require.NotNil(t, clip)
	assert.Equal(t, "Hello world", clip.Text)
	assert.Equal(t, "en-US-neural", clip.VoiceID)

	clips, err := f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	require.Len(t, clips, 1)

	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, identity.ActionVoiceCreated, entries[0].Action)
	assert.Equal(t, "A", entries[0].ActorName)
}

func TestHandleTranscriptHonorsAutoSaveOff(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	require.NoError(t, f.prefs.Save(ctx, f.session.UserID, identity.Settings{
		AutoSaveHistory: false,
	}))

	clip, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{
		Text: "Hello world",
	})
	require.NoError(t, err)
	assert.Nil(t, clip, "nothing saved with auto-save off")

	clips, err := f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	assert.Empty(t, clips)

	// The audit entry is written regardless of the preference
	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, identity.ActionVoiceCreated, entries[0].Action)
}

func TestHandleTranscriptRequiresSession(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	_, err := f.history.HandleTranscript(ctx, nil, identity.TranscriptEvent{Text: "x"})
	assert.ErrorIs(t, err, identity.ErrUnableToFindSession)

	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryRemoveClip(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	first, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{Text: "one"})
	require.NoError(t, err)
	_, err = f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{Text: "two"})
	require.NoError(t, err)

	require.NoError(t, f.history.Remove(ctx, f.session.UserID, first.ID))

	clips, err := f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "two", clips[0].Text)

	assert.ErrorIs(t, f.history.Remove(ctx, f.session.UserID, first.ID), identity.ErrNotFound)
}

func TestHandleTranscriptCapsHistory(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	require.NoError(t, f.prefs.Save(ctx, f.session.UserID, identity.Settings{
		AutoSaveHistory: true,
		MaxHistoryItems: 3,
	}))

	for i := 0; i < 5; i++ {
		_, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{
			Text: fmt.Sprintf("clip %d", i),
		})
		require.NoError(t, err)
	}

	clips, err := f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	require.Len(t, clips, 3, "history is capped at the account's preference")

	assert.Equal(t, "clip 2", clips[0].Text, "oldest clips are dropped first")
	assert.Equal(t, "clip 4", clips[2].Text)

	// Every generation is still audited, capped or not
	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestHandleTranscriptDefaultCap(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	for i := 0; i < 25; i++ {
		_, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{
			Text: fmt.Sprintf("clip %d", i),
		})
		require.NoError(t, err)
	}

	clips, err := f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	require.Len(t, clips, 20)
	assert.Equal(t, "clip 24", clips[19].Text, "the newest clip survives")
}

func TestHandleTranscriptDetailsKeepRuneBoundaries(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	// 119 single-byte characters put the multi-byte tail across the
	// truncation boundary.
	text := strings.Repeat("a", 119) + "สวัสดี"

	_, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{Text: text})
	require.NoError(t, err)

	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.True(t, utf8.ValidString(entries[0].Details))
	assert.Equal(t, strings.Repeat("a", 119), entries[0].Details)
}

func TestHistoryClear(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	_, err := f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{Text: "one"})
	require.NoError(t, err)
	_, err = f.history.HandleTranscript(ctx, f.session, identity.TranscriptEvent{Text: "two"})
	require.NoError(t, err)

	clips, err := f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "one", clips[0].Text, "history keeps append order")

	require.NoError(t, f.history.Clear(ctx, f.session.UserID))

	clips, err = f.history.List(ctx, f.session.UserID)
	require.NoError(t, err)
	assert.Empty(t, clips)
}
