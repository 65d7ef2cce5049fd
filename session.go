package identity

import (
	"context"
	"sync"
)

// SessionState tracks where the manager is in its lifecycle.
type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
)

// sessionTransitions is the allowed state machine. Anything not listed is an
// ErrInvalidTransition.
var sessionTransitions = map[SessionState][]SessionState{
	StateUnauthenticated: {StateAuthenticating},
	StateAuthenticating:  {StateAuthenticated, StateUnauthenticated},
	StateAuthenticated:   {StateAuthenticating},
}

func canTransition(from, to SessionState) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SessionManager owns the current-session projection: it is the only writer
// of the persisted session value. The acting identity is always threaded
// explicitly through return values and context, never held in package state.
type SessionManager struct {
	accounts Accounts
	activity ActivityLog
	store    Store
	key      string
	logger   Logger

	mu      sync.RWMutex
	state   SessionState
	current *SessionObject
}

type SessionOption func(*SessionManager)

func WithSessionLogger(logger Logger) SessionOption {
	return func(s *SessionManager) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSessionStorageKey(key string) SessionOption {
	return func(s *SessionManager) {
		if key != "" {
			s.key = key
		}
	}
}

func NewSessionManager(store Store, accounts Accounts, activity ActivityLog, opts ...SessionOption) *SessionManager {
	s := &SessionManager{
		accounts: accounts,
		activity: activity,
		store:    store,
		key:      DefaultSessionKey,
		logger:   defLogger{},
		state:    StateUnauthenticated,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// State returns the current lifecycle state.
func (s *SessionManager) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns the active session, or nil when unauthenticated.
func (s *SessionManager) Current() *SessionObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SessionManager) transition(to SessionState) error {
	if !canTransition(s.state, to) {
		s.logger.Error("invalid session transition %s -> %s", s.state, to)
		return ErrInvalidTransition
	}
	s.state = to
	return nil
}

// beginAuthentication moves into Authenticating, but only from
// Unauthenticated: login and register never run over an existing session.
func (s *SessionManager) beginAuthentication() error {
	if s.state != StateUnauthenticated {
		s.logger.Error("invalid session transition %s -> %s", s.state, StateAuthenticating)
		return ErrInvalidTransition
	}
	return s.transition(StateAuthenticating)
}

// Login authenticates by email and credential. Failures surface in a fixed
// order: unknown email, then wrong credential, then blocked account. A failed
// attempt leaves no session and writes no activity entry.
func (s *SessionManager) Login(ctx context.Context, email, password string) (*SessionObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginAuthentication(); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		s.state = StateUnauthenticated
		return nil, err
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		s.state = StateUnauthenticated
		return nil, err
	}

	if account.Blocked {
		s.state = StateUnauthenticated
		return nil, ErrAccountBlocked
	}

	session := newSessionFromAccount(account)
	if err := s.persist(ctx, session); err != nil {
		s.state = StateUnauthenticated
		return nil, err
	}

	s.current = session
	s.state = StateAuthenticated
	s.activity.Append(ctx, session, ActionLogin, "signed in")

	return session, nil
}

// Register creates an account and establishes a session for it in one step.
// The repository's bootstrap rule applies: the first account becomes an
// administrator.
func (s *SessionManager) Register(ctx context.Context, email, password, name string) (*SessionObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginAuthentication(); err != nil {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, email, password, name, false)
	if err != nil {
		s.state = StateUnauthenticated
		return nil, err
	}

	session := newSessionFromAccount(account)
	if err := s.persist(ctx, session); err != nil {
		s.state = StateUnauthenticated
		return nil, err
	}

	s.current = session
	s.state = StateAuthenticated
	s.activity.Append(ctx, session, ActionRegister, "registered account")

	return session, nil
}

// Logout appends the audit entry attributed to the outgoing identity before
// clearing persisted state, and always ends Unauthenticated even when the
// audit or storage write fails.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outgoing := s.current
	s.current = nil
	s.state = StateUnauthenticated

	if outgoing == nil {
		return nil
	}

	s.activity.Append(ctx, outgoing, ActionLogout, "signed out")

	if err := s.store.Remove(ctx, s.key); err != nil {
		s.logger.Warn("unable to clear persisted session: %v", err)
		return err
	}
	return nil
}

// Restore loads the persisted session at startup. It trusts the stored
// projection: no credential or blocked re-check against the repository. A
// corrupted value self-heals to unauthenticated and removes the key.
func (s *SessionManager) Restore(ctx context.Context) (*SessionObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session SessionObject
	if err := loadJSON(ctx, s.store, s.logger, s.key, &session); err != nil {
		return nil, err
	}

	if session.UserID == "" {
		return nil, nil
	}

	s.current = &session
	s.state = StateAuthenticated
	return &session, nil
}

func (s *SessionManager) persist(ctx context.Context, session *SessionObject) error {
	return saveJSON(ctx, s.store, s.key, session)
}
