package identity

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActivityAction identifies the event an audit entry records.
type ActivityAction string

const (
	ActionLogin            ActivityAction = "login"
	ActionLogout           ActivityAction = "logout"
	ActionRegister         ActivityAction = "register"
	ActionUserCreated      ActivityAction = "user-created"
	ActionUserRemoved      ActivityAction = "user-removed"
	ActionAccountBlocked   ActivityAction = "account-blocked"
	ActionAccountUnblocked ActivityAction = "account-unblocked"
	ActionAdminGranted     ActivityAction = "admin-granted"
	ActionAdminRevoked     ActivityAction = "admin-revoked"
	ActionUserUpdated      ActivityAction = "user-updated"
	ActionVoiceCreated     ActivityAction = "voice-created"
)

// ActivityEntry is a single audit record. ActorID and ActorName describe who
// performed the action at the time it happened; later renames or deletions do
// not rewrite history.
type ActivityEntry struct {
	ID        uuid.UUID      `json:"id"`
	ActorID   uuid.UUID      `json:"actor_id"`
	ActorName string         `json:"actor_name"`
	Action    ActivityAction `json:"action"`
	Details   string         `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ActivityLog is an append-only audit trail. Append is best effort: a failed
// write is logged and swallowed so auditing never blocks the operation that
// produced the event.
type ActivityLog interface {
	Append(ctx context.Context, actor *SessionObject, action ActivityAction, details string)
	List(ctx context.Context) ([]ActivityEntry, error)
}

// ActivitySink receives a copy of every entry the log accepts. Sinks run
// synchronously after the persisted write; they share Append's best-effort
// contract and must not block.
type ActivitySink func(entry ActivityEntry)

type activityLog struct {
	store  Store
	key    string
	logger Logger
	now    func() time.Time
	sinks  []ActivitySink
}

var _ ActivityLog = (*activityLog)(nil)

type ActivityOption func(*activityLog)

func WithActivityLogger(logger Logger) ActivityOption {
	return func(l *activityLog) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithActivityStorageKey(key string) ActivityOption {
	return func(l *activityLog) {
		if key != "" {
			l.key = key
		}
	}
}

func WithActivityClock(clock func() time.Time) ActivityOption {
	return func(l *activityLog) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithActivitySink registers an observer for accepted entries, e.g. to fan
// out to an external audit pipeline.
func WithActivitySink(sink ActivitySink) ActivityOption {
	return func(l *activityLog) {
		if sink != nil {
			l.sinks = append(l.sinks, sink)
		}
	}
}

func NewActivityLog(store Store, opts ...ActivityOption) ActivityLog {
	l := &activityLog{
		store:  store,
		key:    DefaultActivityKey,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

func (l *activityLog) Append(ctx context.Context, actor *SessionObject, action ActivityAction, details string) {
	entry := ActivityEntry{
		ID:        uuid.New(),
		Action:    action,
		Details:   details,
		Timestamp: l.now(),
	}

	if actor != nil {
		if uid, err := actor.GetUserUUID(); err == nil {
			entry.ActorID = uid
		}
		entry.ActorName = actor.Name
	}

	var entries []ActivityEntry
	if err := loadJSON(ctx, l.store, l.logger, l.key, &entries); err != nil {
		l.logger.Error("activity append: load failed, dropping entry %s: %v", action, err)
		return
	}

	if err := saveJSON(ctx, l.store, l.key, append(entries, entry)); err != nil {
		l.logger.Error("activity append: save failed, dropping entry %s: %v", action, err)
		return
	}

	for _, sink := range l.sinks {
		sink(entry)
	}
}

// List returns entries ordered newest first. Entries sharing a timestamp
// keep their insertion order relative to each other (stable sort).
func (l *activityLog) List(ctx context.Context) ([]ActivityEntry, error) {
	var entries []ActivityEntry
	if err := loadJSON(ctx, l.store, l.logger, l.key, &entries); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}
