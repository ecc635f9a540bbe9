package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

var _ simplefiles.IdentityResolver = (*Resolver)(nil)

// Resolver maps tokens to users from an in-process table.
type Resolver struct {
	mu     sync.RWMutex
	tokens map[string]uuid.UUID
}

// New creates a resolver seeded with tokens.
func New(tokens map[string]uuid.UUID) *Resolver {
	r := &Resolver{tokens: make(map[string]uuid.UUID, len(tokens))}
	for token, userID := range tokens {
		r.tokens[token] = userID
	}
	return r
}

// Set binds token to userID, replacing any previous binding.
func (r *Resolver) Set(token string, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = userID
}

// Revoke removes token.
func (r *Resolver) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
}

func (r *Resolver) Resolve(ctx context.Context, token string) simplefiles.Requester {
	if token == "" {
		return simplefiles.Anonymous()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.tokens[token]
	if !ok {
		return simplefiles.Anonymous()
	}
	return simplefiles.AuthenticatedUser(userID)
}
