package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMovieNotFound signals a title that is absent from the catalog.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrDuplicateTitle signals a catalog in which a title resolves to more than one index.
	ErrDuplicateTitle = errors.New("duplicate title")
	// ErrInvalidCatalog signals a malformed similarity artifact.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrMetadataDisabled signals that no metadata provider credential is configured.
	ErrMetadataDisabled = errors.New("metadata provider disabled")
	// ErrMetadataUnavailable signals that the metadata provider is currently unreachable.
	ErrMetadataUnavailable = errors.New("metadata provider unavailable")
)

// MovieNotFoundError wraps ErrMovieNotFound with the title that failed to resolve.
type MovieNotFoundError struct {
	Title string
}

func (e *MovieNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMovieNotFound.Error(), e.Title)
}

func (e *MovieNotFoundError) Unwrap() error { return ErrMovieNotFound }

// NewMovieNotFound creates a lookup failure for title.
func NewMovieNotFound(title string) error {
	return &MovieNotFoundError{Title: title}
}
