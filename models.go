package identity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the stored identity record. The credential is kept as a bcrypt
// hash; anything leaving this package goes through Redact first.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Blocked      bool      `json:"is_blocked"`
	Admin        bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Redact strips credential material for consumers outside the repository.
func (a Account) Redact() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Blocked:   a.Blocked,
		Admin:     a.Admin,
		CreatedAt: a.CreatedAt,
	}
}

// PublicAccount is the credential-free view of an Account.
type PublicAccount struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Blocked   bool      `json:"is_blocked"`
	Admin     bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionObject is the redacted projection of the authenticated account held
// for the duration of a visit. It never carries the credential.
type SessionObject struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Admin  bool   `json:"is_admin"`
}

func (s *SessionObject) GetUserID() string { return s.UserID }

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) IsAdmin() bool {
	if s == nil {
		return false
	}
	return s.Admin
}

func newSessionFromAccount(a *Account) *SessionObject {
	return &SessionObject{
		UserID: a.ID.String(),
		Email:  a.Email,
		Name:   a.Name,
		Admin:  a.Admin,
	}
}
