package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs and verifies the session projection handed to clients.
// Tokens are HS256 with the key taken from Config; there is no external
// issuer, the subsystem is both minter and verifier.
type TokenService struct {
	config Config
	now    func() time.Time
}

type TokenServiceOption func(*TokenService)

func WithTokenClock(clock func() time.Time) TokenServiceOption {
	return func(t *TokenService) {
		if clock != nil {
			t.now = clock
		}
	}
}

func NewTokenService(config Config, opts ...TokenServiceOption) *TokenService {
	t := &TokenService{
		config: config,
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

func (t *TokenService) Generate(session *SessionObject) (string, error) {
	if session == nil || session.UserID == "" {
		return "", ErrUnableToFindSession
	}

	now := t.now()
	expiration := time.Duration(t.config.GetTokenExpiration()) * time.Hour
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    t.config.GetIssuer(),
			Audience:  jwt.ClaimStrings(t.config.GetAudience()),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
		Email: session.Email,
		Name:  session.Name,
		Admin: session.Admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.config.GetSigningKey()))
	if err != nil {
		return "", wrapStorage(err, "unable to sign session token")
	}

	return signed, nil
}

func (t *TokenService) Validate(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrUnableToFindSession
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return []byte(t.config.GetSigningKey()), nil
	}, jwt.WithTimeFunc(t.now))

	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	default:
		return nil, ErrTokenMalformed
	}
}
