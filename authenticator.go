package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Auther composes the session manager, account repository, and activity log
// behind the one surface application code depends on. Administrative
// operations reject with ErrUnauthorized unless the current session belongs
// to an administrator; every successful mutation appends exactly one
// activity entry and refreshes the cached user list.
type Auther struct {
	session  *SessionManager
	accounts Accounts
	activity ActivityLog
	logger   Logger

	mu       sync.RWMutex
	inFlight bool
	users    []PublicAccount
}

var _ Authorizer = (*Auther)(nil)

type AutherOption func(*Auther)

func WithLogger(logger Logger) AutherOption {
	return func(a *Auther) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAuthenticator(session *SessionManager, accounts Accounts, activity ActivityLog, opts ...AutherOption) *Auther {
	a := &Auther{
		session:  session,
		accounts: accounts,
		activity: activity,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// CurrentSession returns the active session, or nil when unauthenticated.
func (a *Auther) CurrentSession() *SessionObject {
	return a.session.Current()
}

// InFlight reports whether a session operation is in progress.
func (a *Auther) InFlight() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.inFlight
}

func (a *Auther) IsAuthenticated() bool {
	return a.session.Current() != nil
}

func (a *Auther) IsAdmin() bool {
	return a.session.Current().IsAdmin()
}

func (a *Auther) setInFlight(v bool) {
	a.mu.Lock()
	a.inFlight = v
	a.mu.Unlock()
}

func (a *Auther) Login(ctx context.Context, email, password string) (*SessionObject, error) {
	a.setInFlight(true)
	defer a.setInFlight(false)
	return a.session.Login(ctx, email, password)
}

func (a *Auther) Register(ctx context.Context, email, password, name string) (*SessionObject, error) {
	a.setInFlight(true)
	defer a.setInFlight(false)
	return a.session.Register(ctx, email, password, name)
}

func (a *Auther) Logout(ctx context.Context) error {
	a.setInFlight(true)
	defer a.setInFlight(false)
	return a.session.Logout(ctx)
}

// Restore rehydrates the persisted session at startup.
func (a *Auther) Restore(ctx context.Context) (*SessionObject, error) {
	return a.session.Restore(ctx)
}

// Users returns the cached account list from the last ListUsers call or
// administrative mutation. It can be stale; observers that need fresh data
// call ListUsers.
func (a *Auther) Users() []PublicAccount {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.users
}

func (a *Auther) ListUsers(ctx context.Context) ([]PublicAccount, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	return a.refreshUsers(ctx)
}

func (a *Auther) ListActivity(ctx context.Context) ([]ActivityEntry, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	return a.activity.List(ctx)
}

func (a *Auther) CreateUser(ctx context.Context, email, password, name string, admin bool) (*PublicAccount, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}

	account, err := a.accounts.Create(ctx, email, password, name, admin)
	if err != nil {
		return nil, err
	}

	a.activity.Append(ctx, a.session.Current(), ActionUserCreated, fmt.Sprintf("created account %s", account.Email))

	if _, err := a.refreshUsers(ctx); err != nil {
		a.logger.Warn("user list refresh failed: %v", err)
	}

	public := account.Redact()
	return &public, nil
}

// DeleteUser removes an account. Deleting the acting administrator's own
// account is allowed and ends their session.
func (a *Auther) DeleteUser(ctx context.Context, id string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	uid, err := parseAccountID(id)
	if err != nil {
		return err
	}

	removed, err := a.accounts.Remove(ctx, uid)
	if err != nil {
		return err
	}

	actor := a.session.Current()
	a.activity.Append(ctx, actor, ActionUserRemoved, fmt.Sprintf("removed account %s", removed.Email))

	if _, err := a.refreshUsers(ctx); err != nil {
		a.logger.Warn("user list refresh failed: %v", err)
	}

	if actor != nil && actor.UserID == removed.ID.String() {
		return a.session.Logout(ctx)
	}
	return nil
}

func (a *Auther) Block(ctx context.Context, id string) error {
	return a.setBlocked(ctx, id, true, ActionAccountBlocked, "blocked account %s")
}

func (a *Auther) Unblock(ctx context.Context, id string) error {
	return a.setBlocked(ctx, id, false, ActionAccountUnblocked, "unblocked account %s")
}

func (a *Auther) GrantAdmin(ctx context.Context, id string) error {
	return a.setAdmin(ctx, id, true, ActionAdminGranted, "granted administrator to %s")
}

func (a *Auther) RevokeAdmin(ctx context.Context, id string) error {
	return a.setAdmin(ctx, id, false, ActionAdminRevoked, "revoked administrator from %s")
}

// UpdateDisplayName renames an account. Administrators can rename anyone;
// everyone else only their own account.
func (a *Auther) UpdateDisplayName(ctx context.Context, id, name string) error {
	actor := a.session.Current()
	if actor == nil {
		return ErrUnauthorized
	}

	if !actor.IsAdmin() && actor.UserID != id {
		return ErrUnauthorized
	}

	uid, err := parseAccountID(id)
	if err != nil {
		return err
	}

	account, err := a.accounts.SetName(ctx, uid, name)
	if err != nil {
		return err
	}

	a.activity.Append(ctx, actor, ActionUserUpdated, fmt.Sprintf("renamed account %s to %q", account.Email, name))

	if _, err := a.refreshUsers(ctx); err != nil {
		a.logger.Warn("user list refresh failed: %v", err)
	}
	return nil
}

// LogActivity appends an entry attributed to the current session. Used for
// events produced outside the facade, like a generated voice clip.
func (a *Auther) LogActivity(ctx context.Context, action ActivityAction, details string) {
	a.activity.Append(ctx, a.session.Current(), action, details)
}

func (a *Auther) setBlocked(ctx context.Context, id string, blocked bool, action ActivityAction, format string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	uid, err := parseAccountID(id)
	if err != nil {
		return err
	}

	account, err := a.accounts.SetBlocked(ctx, uid, blocked)
	if err != nil {
		return err
	}

	a.activity.Append(ctx, a.session.Current(), action, fmt.Sprintf(format, account.Name))

	if _, err := a.refreshUsers(ctx); err != nil {
		a.logger.Warn("user list refresh failed: %v", err)
	}
	return nil
}

func (a *Auther) setAdmin(ctx context.Context, id string, admin bool, action ActivityAction, format string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	uid, err := parseAccountID(id)
	if err != nil {
		return err
	}

	account, err := a.accounts.SetAdmin(ctx, uid, admin)
	if err != nil {
		return err
	}

	a.activity.Append(ctx, a.session.Current(), action, fmt.Sprintf(format, account.Name))

	if _, err := a.refreshUsers(ctx); err != nil {
		a.logger.Warn("user list refresh failed: %v", err)
	}
	return nil
}

func (a *Auther) requireAdmin() error {
	if !a.session.Current().IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

func (a *Auther) refreshUsers(ctx context.Context) ([]PublicAccount, error) {
	users, err := a.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.users = users
	a.mu.Unlock()

	return users, nil
}

func parseAccountID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return uid, nil
}
