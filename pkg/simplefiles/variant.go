package simplefiles

import (
	"context"
	"errors"

	"github.com/tendant/simple-files/pkg/simplefiles/objectkey"
)

// Size identifies a size variant of an image. The empty Size is the original.
type Size string

// Size constants are the thumbnail widths generated by the variant worker.
const (
	SizeOriginal Size = ""
	Size500      Size = "500"
	Size250      Size = "250"
	Size100      Size = "100"
)

var sizeAliases = map[string]Size{
	"500":    Size500,
	"250":    Size250,
	"100":    Size100,
	"large":  Size500,
	"medium": Size250,
	"small":  Size100,
}

// ParseSize maps a requested size token to a Size. Unknown tokens map to
// the original and report false.
func ParseSize(token string) (Size, bool) {
	if token == "" || token == "0" {
		return SizeOriginal, true
	}
	size, ok := sizeAliases[token]
	if !ok {
		return SizeOriginal, false
	}
	return size, true
}

// VariantResolver picks which stored byte-stream serves a content request.
type VariantResolver struct {
	content *ContentStore
}

// NewVariantResolver creates a resolver reading through content.
func NewVariantResolver(content *ContentStore) *VariantResolver {
	return &VariantResolver{content: content}
}

// Resolve returns the bytes for the requested size token and the size that
// was actually served. A missing variant falls back to the original; only a
// missing original yields ErrNotFound.
func (v *VariantResolver) Resolve(ctx context.Context, file *File, token string) ([]byte, Size, error) {
	key, served, err := v.Lookup(ctx, file.ContentKey, token)
	if err != nil {
		return nil, SizeOriginal, err
	}

	data, err := v.content.Retrieve(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, SizeOriginal, ErrNotFound
	}
	if err != nil {
		return nil, SizeOriginal, err
	}
	return data, served, nil
}

// Lookup resolves the key to read for a size token, falling back to the
// original key when the variant has not been generated.
func (v *VariantResolver) Lookup(ctx context.Context, key, token string) (string, Size, error) {
	size, known := ParseSize(token)
	if !known {
		variantLookupsTotal.WithLabelValues("unknown", variantResultUnsupported).Inc()
		return key, SizeOriginal, nil
	}
	if size == SizeOriginal {
		variantLookupsTotal.WithLabelValues("", variantResultOriginal).Inc()
		return key, SizeOriginal, nil
	}

	variantKey := objectkey.VariantKey(key, string(size))
	exists, err := v.content.Exists(ctx, variantKey)
	if err != nil {
		return "", SizeOriginal, err
	}
	if !exists {
		variantLookupsTotal.WithLabelValues(string(size), variantResultFallback).Inc()
		return key, SizeOriginal, nil
	}

	variantLookupsTotal.WithLabelValues(string(size), variantResultHit).Inc()
	return variantKey, size, nil
}
