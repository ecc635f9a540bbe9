package simplefiles

import (
	"context"
	"io"
	"math"

	"github.com/google/uuid"
)

// BlobStore defines the interface for raw byte storage backends.
// Implementations return ErrBlobNotFound for keys that hold nothing.
type BlobStore interface {
	// Upload writes content under objectKey
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams writes content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens the content stored under objectKey
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Exists reports whether content is stored under objectKey
	Exists(ctx context.Context, objectKey string) (bool, error)
}

// Repository defines the interface for file record persistence
type Repository interface {
	// InsertFile stores a new record, assigning and returning its id.
	InsertFile(ctx context.Context, file *File) (uuid.UUID, error)

	// GetFile returns the record with the given id or ErrNotFound.
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)

	// ListChildren returns at most PageSize records of the owner whose parent
	// equals params.Parent, in insertion order, skipping params.Page pages.
	ListChildren(ctx context.Context, params ListChildrenParams) ([]*File, error)

	// UpdateVisibility sets IsPublic and returns the updated record or ErrNotFound.
	UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) (*File, error)
}

// JobQueue dispatches variant-generation work to an out-of-process consumer.
type JobQueue interface {
	Enqueue(ctx context.Context, job VariantJob) error
}

// IdentityResolver maps an opaque session token to a requester. Failures of
// any kind resolve to Anonymous.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) Requester
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// ListChildrenParams contains parameters for a hierarchical listing query
type ListChildrenParams struct {
	OwnerID uuid.UUID
	Parent  Parent
	Page    int
}

// Offset returns the number of records skipped before the page starts.
// Pages too large to multiply out saturate at math.MaxInt, past any result.
func (p ListChildrenParams) Offset() int {
	if p.Page < 0 {
		return 0
	}
	if p.Page > math.MaxInt/PageSize {
		return math.MaxInt
	}
	return p.Page * PageSize
}
