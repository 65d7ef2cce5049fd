package identity

import (
	"github.com/goliatone/go-errors"
)

// ErrDuplicateEmail is returned when a registration or admin create targets
// an email address that already has an account.
var ErrDuplicateEmail = errors.New("email address already registered", errors.CategoryConflict).
	WithTextCode("DUPLICATE_EMAIL").
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is returned when a login identifies no account.
var ErrAccountNotFound = errors.New("no account for that email address", errors.CategoryAuth).
	WithTextCode("ACCOUNT_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredential is the error for a password that does not verify.
var ErrInvalidCredential = errors.New("invalid credential", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIAL").
	WithCode(errors.CodeUnauthorized)

// ErrAccountBlocked is returned when a blocked account attempts to establish
// a session.
var ErrAccountBlocked = errors.New("account is blocked", errors.CategoryAuth).
	WithTextCode("ACCOUNT_BLOCKED").
	WithCode(errors.CodeForbidden)

// ErrNotFound is returned by administrative operations that reference an
// account id with no matching record.
var ErrNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode("NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrUnauthorized is returned when a non-administrator invokes an
// administrative operation.
var ErrUnauthorized = errors.New("administrator privileges required", errors.CategoryAuthz).
	WithTextCode("UNAUTHORIZED").
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString rejects empty required inputs before they reach storage.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_VALUE").
	WithCode(errors.CodeBadRequest)

// ErrUnableToFindSession is returned when a request carries no session cookie.
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is the error for session tokens past their expiration.
var ErrTokenExpired = errors.New("session token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is the error for session tokens that fail to parse or
// verify.
var ErrTokenMalformed = errors.New("session token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidTransition is returned when the session manager is asked to move
// between states the transition table does not connect.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryValidation).
	WithTextCode("INVALID_SESSION_TRANSITION").
	WithCode(errors.CodeBadRequest)

// wrapValidation converts ozzo (or any) validation failures into the rich
// error shape the rest of the package speaks.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.CategoryValidation, "invalid input").
		WithTextCode("VALIDATION").
		WithCode(errors.CodeBadRequest)
}

// wrapStorage tags storage layer failures so callers can distinguish them
// from domain rejections.
func wrapStorage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.CategoryInternal, msg)
}
