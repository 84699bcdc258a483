// Package auth issues and verifies organizer capability tokens. A token is
// handed out once, when the pot is created, and grants organizer-only
// operations on that single pot.
package auth

import (
	"context"
	"fmt"
	"time"

	apperrors "gatta/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOrganizer = "organizer"
	issuer        = "gatta"
)

// Claims of an organizer token. Subject is the pot id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 organizer tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer. A zero ttl issues tokens that never expire.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed organizer token for the pot
func (i *Issuer) Issue(potID string) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		Role: RoleOrganizer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  potID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign organizer token: %w", err)
	}
	return signed, nil
}

// Verify checks that raw is a valid organizer token for potID
func (i *Issuer) Verify(raw, potID string) error {
	if raw == "" {
		return apperrors.ErrUnauthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if claims.Role != RoleOrganizer || claims.Subject != potID {
		return apperrors.ErrForbidden
	}
	return nil
}

type ctxKey string

const organizerKey ctxKey = "organizer_pot_id"

// WithOrganizer marks ctx as carrying a verified organizer capability for potID
func WithOrganizer(ctx context.Context, potID string) context.Context {
	return context.WithValue(ctx, organizerKey, potID)
}

// IsOrganizer reports whether ctx carries the organizer capability for potID
func IsOrganizer(ctx context.Context, potID string) bool {
	v, ok := ctx.Value(organizerKey).(string)
	return ok && v != "" && v == potID
}
