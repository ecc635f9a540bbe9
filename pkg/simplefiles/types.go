package simplefiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PageSize is the number of records returned by a single listing page.
const PageSize = 20

// Kind is the domain type for file record kinds.
type Kind string

// Kind constants (typed).
const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// HasContent reports whether records of this kind carry stored bytes.
func (k Kind) HasContent() bool {
	return k == KindFile || k == KindImage
}

// rootParentValue is the literal stored and sent for the root parent.
const rootParentValue = "0"

// errInvalidParent is returned when a parent reference cannot be parsed.
var errInvalidParent = errors.New("invalid parent reference")

// Parent is either the root sentinel or a reference to a folder record.
// The zero value is the root.
type Parent struct {
	folderID uuid.UUID
	isFolder bool
}

// RootParent returns the root parent sentinel.
func RootParent() Parent {
	return Parent{}
}

// FolderParent returns a parent referencing the folder with the given id.
func FolderParent(id uuid.UUID) Parent {
	return Parent{folderID: id, isFolder: true}
}

// ParseParent parses the wire representation of a parent. Empty strings and
// "0" mean root; anything else must be a record id.
func ParseParent(s string) (Parent, error) {
	if s == "" || s == rootParentValue {
		return RootParent(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Parent{}, fmt.Errorf("%w: %q", errInvalidParent, s)
	}
	return FolderParent(id), nil
}

// IsRoot reports whether p is the root sentinel.
func (p Parent) IsRoot() bool {
	return !p.isFolder
}

// FolderID returns the referenced folder id, or false for the root.
func (p Parent) FolderID() (uuid.UUID, bool) {
	return p.folderID, p.isFolder
}

// String returns the stored representation: "0" for root, otherwise the id.
func (p Parent) String() string {
	if p.IsRoot() {
		return rootParentValue
	}
	return p.folderID.String()
}

// MarshalJSON encodes the root as the number 0 and folders as their id.
func (p Parent) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte(rootParentValue), nil
	}
	return json.Marshal(p.folderID.String())
}

// UnmarshalJSON accepts 0, "0", null or a record id string.
func (p *Parent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(rootParentValue)) {
		*p = RootParent()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", errInvalidParent, string(data))
	}
	parsed, err := ParseParent(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// File is the persisted record describing one file or folder.
//
// ContentKey locates the raw bytes in the content store. It is empty for
// folders and never serialized to clients.
type File struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"userId"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"type"`
	Parent     Parent    `json:"parentId"`
	IsPublic   bool      `json:"isPublic"`
	ContentKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether the record belongs to requester. A nil record
// has no owner.
func (f *File) IsOwnedBy(requester Requester) bool {
	return f != nil && requester.Is(f.OwnerID)
}

// Requester is the resolved identity behind a request. The zero value is
// an anonymous requester.
type Requester struct {
	userID        uuid.UUID
	authenticated bool
}

// Anonymous returns an unauthenticated requester.
func Anonymous() Requester {
	return Requester{}
}

// AuthenticatedUser returns a requester authenticated as userID.
func AuthenticatedUser(userID uuid.UUID) Requester {
	return Requester{userID: userID, authenticated: true}
}

// UserID returns the requester's user id and whether it is authenticated.
func (r Requester) UserID() (uuid.UUID, bool) {
	return r.userID, r.authenticated
}

// IsAuthenticated reports whether the requester has a resolved identity.
func (r Requester) IsAuthenticated() bool {
	return r.authenticated
}

// Is reports whether the requester is authenticated as userID.
func (r Requester) Is(userID uuid.UUID) bool {
	return r.authenticated && r.userID == userID
}

// VariantJob is the payload enqueued to request size-variant generation.
// FileID is absent for the coarse notification sent after a failed image
// upload.
type VariantJob struct {
	FileID *uuid.UUID `json:"fileId,omitempty"`
	UserID uuid.UUID  `json:"userId"`
}

// FileContent is the result of a content fetch.
type FileContent struct {
	File     *File
	Data     []byte
	MimeType string
	// Size is the variant actually served; empty means the original.
	Size Size
}
