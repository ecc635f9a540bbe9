package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/tendant/simple-files/pkg/simplefiles"
)

var _ simplefiles.BlobStore = (*Backend)(nil)

// Backend is an in-memory implementation of the simplefiles.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Upload stores content under objectKey, replacing anything already there
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	return nil
}

// UploadWithParams stores content; the MIME type is derived from the file
// name on read, so it is not kept.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params simplefiles.UploadParams) error {
	return b.Upload(ctx, params.ObjectKey, reader)
}

// Download opens the content stored under objectKey
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, simplefiles.ErrBlobNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists reports whether content is stored under objectKey
func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[objectKey]
	return exists, nil
}
