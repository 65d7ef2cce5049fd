package identity

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options shared by the session manager and the HTTP
// transport.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
}

// SimpleConfig is a plain struct Config for embedding applications and tests.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	ContextKey      string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "identity"
	}
	return c.ContextKey
}

// Authorizer is the single surface the UI layer depends on. *Auther is the
// canonical implementation.
type Authorizer interface {
	CurrentSession() *SessionObject
	InFlight() bool
	IsAuthenticated() bool
	IsAdmin() bool

	Login(ctx context.Context, email, password string) (*SessionObject, error)
	Register(ctx context.Context, email, password, name string) (*SessionObject, error)
	Logout(ctx context.Context) error

	Users() []PublicAccount
	ListUsers(ctx context.Context) ([]PublicAccount, error)
	ListActivity(ctx context.Context) ([]ActivityEntry, error)
	CreateUser(ctx context.Context, email, password, name string, admin bool) (*PublicAccount, error)
	DeleteUser(ctx context.Context, id string) error
	Block(ctx context.Context, id string) error
	Unblock(ctx context.Context, id string) error
	GrantAdmin(ctx context.Context, id string) error
	RevokeAdmin(ctx context.Context, id string) error
	UpdateDisplayName(ctx context.Context, id, name string) error

	LogActivity(ctx context.Context, action ActivityAction, details string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
