package simplefiles

// CreateFileRequest is the raw creation payload.
//
// ParentID and IsPublic are kept loosely typed because clients send the root
// parent as the number 0 and visibility as booleans, strings or numbers; the
// Validator normalizes them.
type CreateFileRequest struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	ParentID interface{} `json:"parentId,omitempty"`
	IsPublic interface{} `json:"isPublic,omitempty"`
	// Data is the base64-encoded content; required unless Type is folder.
	Data string `json:"data,omitempty"`
}

// FileParams is a validated, normalized creation request.
type FileParams struct {
	Name     string
	Kind     Kind
	Parent   Parent
	IsPublic bool
	// Data is still base64-encoded; it is decoded right before it reaches
	// the content store.
	Data string
}

// ListFilesRequest contains the raw listing query parameters.
type ListFilesRequest struct {
	ParentID string
	Page     string
}
