// Package simplefiles manages user-owned files and folders: creation,
// hierarchical listing, visibility control and content retrieval, including
// size-variant delivery for images.
//
// The Service orchestrates a Validator, a ContentStore over a pluggable
// BlobStore, a metadata Repository, the Authorize access policy and a
// VariantResolver. Backends live in subpackages: repo/{memory,postgres,mongo},
// storage/{memory,fs,s3}, queue/{memory,redis} and auth/{memory,redis,jwt}.
//
// Ownership
//
// Every record belongs to the user that created it. Only the owner may read
// metadata, list, publish or unpublish. Content is readable by the owner, or
// by anyone once the record is public. Requests that fail ownership checks
// are answered exactly like requests for records that do not exist.
//
// Variants
//
// Creating an image enqueues a VariantJob. A worker outside this module
// writes resized copies under "<contentKey>_<width>". Until those copies
// exist, content requests for a size are served the original bytes.
package simplefiles
