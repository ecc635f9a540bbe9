// Package jwt resolves HS256-signed bearer tokens whose subject is the
// user id.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

const minSecretKeySize = 16

var _ simplefiles.IdentityResolver = (*Resolver)(nil)

// Resolver verifies tokens with a shared HMAC secret.
type Resolver struct {
	secret []byte
}

// New creates a resolver. The secret must be at least 16 bytes.
func New(secret string) (*Resolver, error) {
	if len(secret) < minSecretKeySize {
		return nil, errors.New("jwt secret must be at least 16 characters")
	}
	return &Resolver{secret: []byte(secret)}, nil
}

// Resolve returns Anonymous for tokens that fail signature, expiry or
// subject checks.
func (r *Resolver) Resolve(ctx context.Context, token string) simplefiles.Requester {
	if token == "" {
		return simplefiles.Anonymous()
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return simplefiles.Anonymous()
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return simplefiles.Anonymous()
	}
	return simplefiles.AuthenticatedUser(userID)
}

// Issue signs a token for userID valid for ttl.
func (r *Resolver) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
