// Package session issues and verifies the signed tokens that carry a
// logged-in user's identity between requests.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mireyav/crescendo/internal/constants"
)

// ErrInvalidToken reports a token that is missing, malformed, expired or
// signed with the wrong key.
var ErrInvalidToken = errors.New("invalid session token")

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		lifetime: constants.DefaultSessionLifetime,
	}
}

// Issue creates a signed token for the user.
func (i *Issuer) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user id it was issued to.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
