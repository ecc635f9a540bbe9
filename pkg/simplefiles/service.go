package simplefiles

import "context"

// Service defines the file lifecycle operations
type Service interface {
	// CreateFile validates and persists a new file, folder or image.
	CreateFile(ctx context.Context, requester Requester, req CreateFileRequest) (*File, error)

	// GetFile returns one of the requester's records.
	GetFile(ctx context.Context, requester Requester, id string) (*File, error)

	// ListFiles returns one page of the requester's records under a parent.
	ListFiles(ctx context.Context, requester Requester, req ListFilesRequest) ([]*File, error)

	// PublishFile makes a record's content publicly readable.
	PublishFile(ctx context.Context, requester Requester, id string) (*File, error)

	// UnpublishFile makes a record's content private again.
	UnpublishFile(ctx context.Context, requester Requester, id string) (*File, error)

	// GetFileContent returns a record's bytes, optionally a size variant.
	GetFileContent(ctx context.Context, requester Requester, id string, size string) (*FileContent, error)
}
