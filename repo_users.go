package identity

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Accounts manages the registered account collection.
//
// Email uniqueness is case-sensitive as stored. The very first account ever
// created in an empty collection is granted administrator privileges no
// matter what the caller asked for (bootstrap rule). Nothing here protects
// the last remaining administrator from demotion or deletion:
// EnsureDefaultAdmin restores administrative access on the next startup.
type Accounts interface {
	ListAll(ctx context.Context) ([]PublicAccount, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, email, password, name string, admin bool) (*Account, error)
	Remove(ctx context.Context, id uuid.UUID) (*Account, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*Account, error)
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) (*Account, error)
	SetName(ctx context.Context, id uuid.UUID, name string) (*Account, error)
	EnsureDefaultAdmin(ctx context.Context, email, password, name string) (bool, error)
}

type accounts struct {
	store  Store
	key    string
	logger Logger
	now    func() time.Time

	// Single-writer arbitration: every mutation is a read-modify-write of
	// the whole collection, so they serialize through this mutex. Multi
	// process safety is the Store backend's problem.
	mu sync.Mutex
}

var _ Accounts = (*accounts)(nil)

type AccountsOption func(*accounts)

func WithAccountsLogger(logger Logger) AccountsOption {
	return func(a *accounts) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithAccountsStorageKey(key string) AccountsOption {
	return func(a *accounts) {
		if key != "" {
			a.key = key
		}
	}
}

// WithAccountsClock injects a custom clock (useful for tests).
func WithAccountsClock(clock func() time.Time) AccountsOption {
	return func(a *accounts) {
		if clock != nil {
			a.now = clock
		}
	}
}

func NewAccounts(store Store, opts ...AccountsOption) Accounts {
	a := &accounts{
		store:  store,
		key:    DefaultUsersKey,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

func (a *accounts) load(ctx context.Context) ([]Account, error) {
	var records []Account
	if err := loadJSON(ctx, a.store, a.logger, a.key, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *accounts) save(ctx context.Context, records []Account) error {
	return saveJSON(ctx, a.store, a.key, records)
}

func (a *accounts) ListAll(ctx context.Context) ([]PublicAccount, error) {
	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PublicAccount, 0, len(records))
	for _, r := range records {
		out = append(out, r.Redact())
	}
	return out, nil
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Email == email {
			record := records[i]
			return &record, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			record := records[i]
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

func (a *accounts) Create(ctx context.Context, email, password, name string, admin bool) (*Account, error) {
	if email == "" || password == "" || name == "" {
		return nil, ErrNoEmptyString
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	record := Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Blocked:      false,
		// Bootstrap rule: the first account becomes administrator.
		Admin:     admin || len(records) == 0,
		CreatedAt: a.now(),
	}

	if err := a.save(ctx, append(records, record)); err != nil {
		return nil, err
	}

	return &record, nil
}

func (a *accounts) Remove(ctx context.Context, id uuid.UUID) (*Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			removed := records[i]
			if err := a.save(ctx, append(records[:i:i], records[i+1:]...)); err != nil {
				return nil, err
			}
			return &removed, nil
		}
	}

	return nil, ErrNotFound
}

func (a *accounts) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*Account, error) {
	return a.update(ctx, id, func(record *Account) {
		record.Blocked = blocked
	})
}

func (a *accounts) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) (*Account, error) {
	return a.update(ctx, id, func(record *Account) {
		record.Admin = admin
	})
}

func (a *accounts) SetName(ctx context.Context, id uuid.UUID, name string) (*Account, error) {
	if name == "" {
		return nil, ErrNoEmptyString
	}
	return a.update(ctx, id, func(record *Account) {
		record.Name = name
	})
}

// update applies mutate to the record with the given id and persists the
// collection. Setting a flag to its current value is a no-op success.
func (a *accounts) update(ctx context.Context, id uuid.UUID, mutate func(*Account)) (*Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			mutate(&records[i])
			if err := a.save(ctx, records); err != nil {
				return nil, err
			}
			record := records[i]
			return &record, nil
		}
	}

	return nil, ErrNotFound
}

// EnsureDefaultAdmin synthesizes one administrator account when the
// collection is empty, so a deployment is never left without administrative
// access. The id is derived from the email so repeated bootstraps of a wiped
// deployment produce the same identifier. No activity entry is written: no
// actor is authenticated yet.
func (a *accounts) EnsureDefaultAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if email == "" || password == "" || name == "" {
		return false, ErrNoEmptyString
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.load(ctx)
	if err != nil {
		return false, err
	}

	if len(records) > 0 {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	record := Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Admin:        true,
		CreatedAt:    a.now(),
	}
	if id, err := hashid.NewUUID(email); err == nil {
		record.ID = id
	}

	if err := a.save(ctx, []Account{record}); err != nil {
		return false, err
	}

	a.logger.Info("created default administrator account %q", email)
	return true, nil
}
