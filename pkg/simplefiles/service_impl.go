package simplefiles

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-files/pkg/simplefiles/objectkey"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	jobQueue   JobQueue
	keys       objectkey.Generator
	logger     *slog.Logger

	validator *Validator
	content   *ContentStore
	variants  *VariantResolver
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the raw byte storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithJobQueue sets the queue receiving variant-generation jobs
func WithJobQueue(queue JobQueue) Option {
	return func(s *service) {
		s.jobQueue = queue
	}
}

// WithKeyGenerator sets the content key generation strategy
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.jobQueue == nil {
		s.jobQueue = NewNoopJobQueue()
	}
	if s.keys == nil {
		s.keys = objectkey.NewFlatGenerator()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "simplefiles")

	s.validator = NewValidator(s.repository)
	s.content = NewContentStore(s.blobStore, s.keys)
	s.variants = NewVariantResolver(s.content)

	return s, nil
}

func (s *service) CreateFile(ctx context.Context, requester Requester, req CreateFileRequest) (*File, error) {
	ownerID, ok := requester.UserID()
	if !ok {
		return nil, ErrUnauthorized
	}

	params, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	var data []byte
	if params.Kind.HasContent() {
		data, err = base64.StdEncoding.DecodeString(params.Data)
		if err != nil {
			return nil, newValidationError(ReasonInvalidData)
		}
	}

	file, err := s.persist(ctx, ownerID, params, data)
	if err != nil {
		if params.Kind == KindImage {
			// No file id exists yet; the worker only learns which user's
			// upload failed.
			if qerr := s.jobQueue.Enqueue(ctx, VariantJob{UserID: ownerID}); qerr != nil {
				jobsEnqueuedTotal.WithLabelValues("failed").Inc()
				s.logger.Warn("Failed to notify job queue of failed upload", "user_id", ownerID, "error", qerr)
			} else {
				jobsEnqueuedTotal.WithLabelValues("failed_upload").Inc()
			}
		}
		return nil, err
	}
	filesCreatedTotal.WithLabelValues(string(file.Kind)).Inc()

	if file.Kind == KindImage {
		fileID := file.ID
		if err := s.jobQueue.Enqueue(ctx, VariantJob{FileID: &fileID, UserID: ownerID}); err != nil {
			jobsEnqueuedTotal.WithLabelValues("failed").Inc()
			s.logger.Debug("Variant job not enqueued", "file_id", fileID, "error", err)
		} else {
			jobsEnqueuedTotal.WithLabelValues("ok").Inc()
		}
	}

	s.logger.Info("File created", "file_id", file.ID, "user_id", ownerID, "type", file.Kind)
	return file, nil
}

// persist writes content before metadata so that a stored record never
// points at missing bytes. A crash in between leaves an orphaned blob.
func (s *service) persist(ctx context.Context, ownerID uuid.UUID, params *FileParams, data []byte) (*File, error) {
	now := time.Now().UTC()
	file := &File{
		OwnerID:   ownerID,
		Name:      params.Name,
		Kind:      params.Kind,
		Parent:    params.Parent,
		IsPublic:  params.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if params.Kind.HasContent() {
		key, err := s.content.Store(ctx, data, MimeTypeByName(params.Name))
		if err != nil {
			s.logger.Error("Failed to store content", "user_id", ownerID, "error", err)
			return nil, err
		}
		file.ContentKey = key
	}

	id, err := s.repository.InsertFile(ctx, file)
	if err != nil {
		s.logger.Error("Failed to insert file record", "user_id", ownerID, "content_key", file.ContentKey, "error", err)
		return nil, &FileError{Op: "create", Err: err}
	}
	file.ID = id

	return file, nil
}

func (s *service) GetFile(ctx context.Context, requester Requester, id string) (*File, error) {
	if !requester.IsAuthenticated() {
		return nil, ErrUnauthorized
	}

	file, err := s.loadFile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(file, requester, ActionReadMetadata); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *service) ListFiles(ctx context.Context, requester Requester, req ListFilesRequest) ([]*File, error) {
	ownerID, ok := requester.UserID()
	if !ok {
		return nil, ErrUnauthorized
	}

	parent, err := ParseParent(req.ParentID)
	if err != nil {
		return []*File{}, nil
	}

	if folderID, isFolder := parent.FolderID(); isFolder {
		folder, err := s.repository.GetFile(ctx, folderID)
		if errors.Is(err, ErrNotFound) {
			return []*File{}, nil
		}
		if err != nil {
			return nil, &FileError{FileID: folderID, Op: "lookup_parent", Err: err}
		}
		if folder.Kind != KindFolder {
			return []*File{}, nil
		}
	}

	files, err := s.repository.ListChildren(ctx, ListChildrenParams{
		OwnerID: ownerID,
		Parent:  parent,
		Page:    parsePage(req.Page),
	})
	if err != nil {
		return nil, &FileError{Op: "list", Err: err}
	}
	if files == nil {
		files = []*File{}
	}
	return files, nil
}

func (s *service) PublishFile(ctx context.Context, requester Requester, id string) (*File, error) {
	return s.setVisibility(ctx, requester, id, true)
}

func (s *service) UnpublishFile(ctx context.Context, requester Requester, id string) (*File, error) {
	return s.setVisibility(ctx, requester, id, false)
}

func (s *service) setVisibility(ctx context.Context, requester Requester, id string, isPublic bool) (*File, error) {
	file, err := s.loadFile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(file, requester, ActionChangeVisibility); err != nil {
		return nil, err
	}

	updated, err := s.repository.UpdateVisibility(ctx, file.ID, isPublic)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &FileError{FileID: file.ID, Op: "update_visibility", Err: err}
	}
	return updated, nil
}

func (s *service) GetFileContent(ctx context.Context, requester Requester, id string, size string) (*FileContent, error) {
	file, err := s.loadFile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(file, requester, ActionReadContent); err != nil {
		return nil, err
	}

	if file.Kind == KindFolder {
		return nil, ErrFolderHasNoContent
	}

	data, served, err := s.variants.Resolve(ctx, file, size)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Failed to read content", "file_id", file.ID, "error", err)
		}
		return nil, err
	}

	return &FileContent{
		File:     file,
		Data:     data,
		MimeType: MimeTypeByName(file.Name),
		Size:     served,
	}, nil
}

// loadFile parses a path id and loads the record. Malformed ids and absent
// records both yield ErrNotFound.
func (s *service) loadFile(ctx context.Context, id string) (*File, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	file, err := s.repository.GetFile(ctx, fileID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &FileError{FileID: fileID, Op: "get", Err: err}
	}
	return file, nil
}

// parsePage treats negative or non-numeric pages as the first page. Positive
// pages beyond the int range map to math.MaxInt so they list nothing.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return math.MaxInt
	}
	if err != nil || page < 0 {
		return 0
	}
	return page
}
