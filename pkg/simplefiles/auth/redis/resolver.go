// Package redis resolves session tokens stored as auth_<token> keys whose
// value is the user id.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

// KeyPrefix is prepended to a token to form its session key.
const KeyPrefix = "auth_"

var _ simplefiles.IdentityResolver = (*Resolver)(nil)

// Resolver looks session tokens up in Redis.
type Resolver struct {
	client goredis.Cmdable
	logger *slog.Logger
}

// New creates a resolver reading through client. A nil logger uses slog.Default.
func New(client goredis.Cmdable, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, logger: logger}
}

// SessionKey returns the Redis key holding token's user id.
func SessionKey(token string) string {
	return KeyPrefix + token
}

// Resolve treats lookup failures as anonymous; they are logged, never returned.
func (r *Resolver) Resolve(ctx context.Context, token string) simplefiles.Requester {
	if token == "" {
		return simplefiles.Anonymous()
	}

	value, err := r.client.Get(ctx, SessionKey(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return simplefiles.Anonymous()
	}
	if err != nil {
		r.logger.Warn("Session lookup failed", "error", err)
		return simplefiles.Anonymous()
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		r.logger.Warn("Session holds malformed user id", "error", err)
		return simplefiles.Anonymous()
	}
	return simplefiles.AuthenticatedUser(userID)
}

// CreateSession stores a session binding token to userID for ttl.
func (r *Resolver) CreateSession(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return r.client.Set(ctx, SessionKey(token), userID.String(), ttl).Err()
}
