package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

var _ simplefiles.Repository = (*Repository)(nil)

// Repository implements simplefiles.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*simplefiles.File
	order []uuid.UUID // insertion order
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		files: make(map[uuid.UUID]*simplefiles.File),
	}
}

func (r *Repository) InsertFile(ctx context.Context, file *simplefiles.File) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	for _, exists := r.files[id]; exists; _, exists = r.files[id] {
		id = uuid.New()
	}

	// Create a copy to avoid external modifications
	fileCopy := *file
	fileCopy.ID = id
	if fileCopy.CreatedAt.IsZero() {
		fileCopy.CreatedAt = time.Now().UTC()
		fileCopy.UpdatedAt = fileCopy.CreatedAt
	}
	r.files[id] = &fileCopy
	r.order = append(r.order, id)

	return id, nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplefiles.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, exists := r.files[id]
	if !exists {
		return nil, simplefiles.ErrNotFound
	}

	fileCopy := *file
	return &fileCopy, nil
}

func (r *Repository) ListChildren(ctx context.Context, params simplefiles.ListChildrenParams) ([]*simplefiles.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	offset := params.Offset()
	result := make([]*simplefiles.File, 0, simplefiles.PageSize)
	skipped := 0
	for _, id := range r.order {
		file := r.files[id]
		if file.OwnerID != params.OwnerID || file.Parent != params.Parent {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		fileCopy := *file
		result = append(result, &fileCopy)
		if len(result) == simplefiles.PageSize {
			break
		}
	}

	return result, nil
}

func (r *Repository) UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) (*simplefiles.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, exists := r.files[id]
	if !exists {
		return nil, simplefiles.ErrNotFound
	}

	if file.IsPublic != isPublic {
		file.IsPublic = isPublic
		file.UpdatedAt = time.Now().UTC()
	}

	fileCopy := *file
	return &fileCopy, nil
}
