package simplefiles

import (
	"context"
	"errors"

	"github.com/spf13/cast"
)

// Validator checks creation payloads and produces normalized parameters.
type Validator struct {
	repository Repository
}

// NewValidator creates a validator that resolves parent folders through repo.
func NewValidator(repo Repository) *Validator {
	return &Validator{repository: repo}
}

// Validate applies the creation rules in order; the first failing rule wins.
// Rejections are returned as *ValidationError. Repository faults are returned
// unchanged.
func (v *Validator) Validate(ctx context.Context, req CreateFileRequest) (*FileParams, error) {
	if req.Name == "" {
		return nil, newValidationError(ReasonMissingName)
	}

	kind := Kind(req.Type)
	if !kind.IsValid() {
		return nil, newValidationError(ReasonMissingType)
	}

	if kind != KindFolder && req.Data == "" {
		return nil, newValidationError(ReasonMissingData)
	}

	parent, err := v.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	return &FileParams{
		Name:     req.Name,
		Kind:     kind,
		Parent:   parent,
		IsPublic: cast.ToBool(req.IsPublic),
		Data:     req.Data,
	}, nil
}

func (v *Validator) resolveParent(ctx context.Context, raw interface{}) (Parent, error) {
	if raw == nil {
		return RootParent(), nil
	}

	s, err := cast.ToStringE(raw)
	if err != nil {
		return Parent{}, newValidationError(ReasonParentNotFound)
	}
	parent, err := ParseParent(s)
	if err != nil {
		return Parent{}, newValidationError(ReasonParentNotFound)
	}

	folderID, ok := parent.FolderID()
	if !ok {
		return parent, nil
	}

	folder, err := v.repository.GetFile(ctx, folderID)
	if errors.Is(err, ErrNotFound) {
		return Parent{}, newValidationError(ReasonParentNotFound)
	}
	if err != nil {
		return Parent{}, &FileError{FileID: folderID, Op: "lookup_parent", Err: err}
	}
	if folder.Kind != KindFolder {
		return Parent{}, newValidationError(ReasonParentNotAFolder)
	}

	return parent, nil
}
