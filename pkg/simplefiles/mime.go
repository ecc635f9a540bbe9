package simplefiles

import (
	"mime"
	"path/filepath"
)

// DefaultMimeType is served when a file name has no known extension.
const DefaultMimeType = "application/octet-stream"

// MimeTypeByName maps a file name's extension to a MIME type.
func MimeTypeByName(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return DefaultMimeType
}
