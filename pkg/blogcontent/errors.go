package blogcontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPostNotFound indicates no post exists for a slug
	ErrPostNotFound = errors.New("post not found")

	// ErrAuthorNotFound indicates no author exists for an id
	ErrAuthorNotFound = errors.New("author not found")

	// ErrInvalidPagination indicates page or per_page is below 1
	ErrInvalidPagination = errors.New("page and per_page must be at least 1")

	// ErrInvalidSlug indicates a slug or author id that cannot name a resource
	ErrInvalidSlug = errors.New("invalid slug")

	// ErrNoBackend indicates a service was built without a backend
	ErrNoBackend = errors.New("backend is required")
)

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents a resource that could not be parsed
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
