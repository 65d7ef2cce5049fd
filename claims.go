package identity

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the JWT projection of an authenticated session. The
// subject carries the account id; everything else is display metadata so the
// client can render without a round trip.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"adm"`
}

func (c SessionClaims) Session() *SessionObject {
	return &SessionObject{
		UserID: c.Subject,
		Email:  c.Email,
		Name:   c.Name,
		Admin:  c.Admin,
	}
}
