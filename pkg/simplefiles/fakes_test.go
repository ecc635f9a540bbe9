package simplefiles

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

// stubRepository serves GetFile from a fixed map and fails everything else.
type stubRepository struct {
	files map[uuid.UUID]*File
	err   error
}

func (r *stubRepository) InsertFile(ctx context.Context, file *File) (uuid.UUID, error) {
	return uuid.Nil, io.ErrUnexpectedEOF
}

func (r *stubRepository) GetFile(ctx context.Context, id uuid.UUID) (*File, error) {
	if r.err != nil {
		return nil, r.err
	}
	file, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return file, nil
}

func (r *stubRepository) ListChildren(ctx context.Context, params ListChildrenParams) ([]*File, error) {
	return nil, io.ErrUnexpectedEOF
}

func (r *stubRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) (*File, error) {
	return nil, io.ErrUnexpectedEOF
}

// stubBlobStore is a minimal map-backed BlobStore.
type stubBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	mimeTypes map[string]string
	err       error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: map[string][]byte{}, mimeTypes: map[string]string{}}
}

func (s *stubBlobStore) Upload(ctx context.Context, key string, r io.Reader) error {
	return s.UploadWithParams(ctx, r, UploadParams{ObjectKey: key})
}

func (s *stubBlobStore) UploadWithParams(ctx context.Context, r io.Reader, params UploadParams) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[params.ObjectKey] = data
	s.mimeTypes[params.ObjectKey] = params.MimeType
	return nil
}

func (s *stubBlobStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}
