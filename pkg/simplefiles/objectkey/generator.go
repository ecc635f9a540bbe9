package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Strategy names accepted by New.
const (
	StrategyFlat    = "flat"
	StrategySharded = "sharded"
)

// Generator defines the interface for content key generation strategies.
// Keys are derived from a random key id, never from the file record id, so
// content and metadata lifecycles stay decoupled.
type Generator interface {
	// GenerateKey creates a storage key for the given key id
	GenerateKey(keyID uuid.UUID) string
}

// FlatGenerator stores every blob directly under its UUID
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(keyID uuid.UUID) string {
	return keyID.String()
}

// GitLikeGenerator provides Git-style sharded storage
// Key: objects/ab/cd1234ef5678...
type GitLikeGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewGitLikeGenerator() *GitLikeGenerator {
	return &GitLikeGenerator{
		ShardLength: 2,
	}
}

func (g *GitLikeGenerator) GenerateKey(keyID uuid.UUID) string {
	idStr := strings.ReplaceAll(keyID.String(), "-", "")

	shard := g.ShardLength
	if shard <= 0 || shard > len(idStr) {
		shard = 2
	}

	return fmt.Sprintf("objects/%s/%s", idStr[:shard], idStr[shard:])
}

// VariantKey derives the key of a size variant from the original key.
func VariantKey(key, size string) string {
	if size == "" {
		return key
	}
	return key + "_" + size
}

// New returns the generator registered under strategy.
func New(strategy string) (Generator, error) {
	switch strategy {
	case "", StrategyFlat:
		return NewFlatGenerator(), nil
	case StrategySharded:
		return NewGitLikeGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported object key strategy: %s", strategy)
	}
}
