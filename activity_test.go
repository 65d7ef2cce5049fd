package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/vocalia/go-identity"
)

func testActor() *identity.SessionObject {
	return &identity.SessionObject{
		UserID: uuid.New().String(),
		Email:  "actor@x.com",
		Name:   "Actor",
	}
}

func TestActivityListNewestFirst(t *testing.T) {
	ctx := context.Background()

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	log := identity.NewActivityLog(identity.NewMemoryStore(),
		identity.WithActivityClock(func() time.Time { return current }),
	)

	actor := testActor()

	log.Append(ctx, actor, identity.ActionLogin, "t1")
	current = current.Add(time.Minute)
	log.Append(ctx, actor, identity.ActionLogout, "t2")
	current = current.Add(time.Minute)
	log.Append(ctx, actor, identity.ActionLogin, "t3")

	entries, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "t3", entries[0].Details)
	assert.Equal(t, "t2", entries[1].Details)
	assert.Equal(t, "t1", entries[2].Details)
}

func TestActivityListTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()

	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	log := identity.NewActivityLog(identity.NewMemoryStore(),
		identity.WithActivityClock(func() time.Time { return fixed }),
	)

	actor := testActor()

	log.Append(ctx, actor, identity.ActionLogin, "first")
	log.Append(ctx, actor, identity.ActionLogin, "second")
	log.Append(ctx, actor, identity.ActionLogin, "third")

	entries, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "first", entries[0].Details)
	assert.Equal(t, "second", entries[1].Details)
	assert.Equal(t, "third", entries[2].Details)
}

func TestActivityAppendAttributesActor(t *testing.T) {
	ctx := context.Background()
	log := identity.NewActivityLog(identity.NewMemoryStore())

	actor := testActor()
	log.Append(ctx, actor, identity.ActionRegister, "registered account")

	entries, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, actor.UserID, entries[0].ActorID.String())
	assert.Equal(t, "Actor", entries[0].ActorName)
	assert.Equal(t, identity.ActionRegister, entries[0].Action)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

// failingStore rejects every write so tests can observe best-effort behavior.
type failingStore struct{}

func (f failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (f failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func (f failingStore) Remove(context.Context, string) error {
	return errors.New("disk full")
}

func TestActivityAppendIsBestEffort(t *testing.T) {
	ctx := context.Background()
	log := identity.NewActivityLog(failingStore{})

	// Must not panic or surface the storage failure
	log.Append(ctx, testActor(), identity.ActionLogin, "swallowed")

	entries, err := log.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
