package simplefiles

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/tendant/simple-files/pkg/simplefiles/objectkey"
)

// ContentStore writes and reads raw file bytes under generated keys. It
// only ever sees decoded bytes and knows nothing about file records.
type ContentStore struct {
	blobs BlobStore
	keys  objectkey.Generator
}

// NewContentStore creates a content store on top of a blob backend.
// A nil generator falls back to flat UUID keys.
func NewContentStore(blobs BlobStore, keys objectkey.Generator) *ContentStore {
	if keys == nil {
		keys = objectkey.NewFlatGenerator()
	}
	return &ContentStore{blobs: blobs, keys: keys}
}

// Store writes data under a freshly generated key and returns the key.
func (c *ContentStore) Store(ctx context.Context, data []byte, mimeType string) (string, error) {
	key := c.keys.GenerateKey(uuid.New())

	params := UploadParams{ObjectKey: key, MimeType: mimeType}
	if err := c.blobs.UploadWithParams(ctx, bytes.NewReader(data), params); err != nil {
		return "", &StorageError{Key: key, Op: "store", Err: err}
	}
	return key, nil
}

// Retrieve reads the bytes stored under key. Absent keys yield ErrBlobNotFound.
func (c *ContentStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	rc, err := c.blobs.Download(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, &StorageError{Key: key, Op: "retrieve", Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &StorageError{Key: key, Op: "read", Err: err}
	}
	return data, nil
}

// Exists reports whether anything is stored under key.
func (c *ContentStore) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := c.blobs.Exists(ctx, key)
	if err != nil {
		return false, &StorageError{Key: key, Op: "exists", Err: err}
	}
	return ok, nil
}
