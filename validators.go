package identity

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Composable field rules. The session state machine only requires non-empty
// values; the stricter format checks live here so callers can opt in at the
// edge.
var (
	emailRules = []validation.Rule{
		validation.Required,
		is.Email,
	}

	passwordRules = []validation.Rule{
		validation.Required,
		validation.Length(8, 128),
	}

	nameRules = []validation.Rule{
		validation.Required,
		validation.Length(2, 100),
	}
)

// LoginPayload carries the credentials for an authentication attempt.
type LoginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (p LoginPayload) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	))
}

// RegisterPayload carries the fields for self-service registration.
type RegisterPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

func (p RegisterPayload) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Email, emailRules...),
		validation.Field(&p.Password, passwordRules...),
		validation.Field(&p.Name, nameRules...),
	))
}

// CreateUserPayload is the administrative variant of RegisterPayload: it can
// request the administrator flag up front.
type CreateUserPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Admin    bool   `json:"is_admin" form:"is_admin"`
}

func (p CreateUserPayload) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Email, emailRules...),
		validation.Field(&p.Password, passwordRules...),
		validation.Field(&p.Name, nameRules...),
	))
}

// UpdateNamePayload updates an account's display name.
type UpdateNamePayload struct {
	Name string `json:"name" form:"name"`
}

func (p UpdateNamePayload) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Name, nameRules...),
	))
}
