package service

import (
	"errors"
	"fmt"

	"EchoChat/backend/go/internal/memory/store"
)

// ErrNotFound mirrors the store sentinel so callers only need this package.
var ErrNotFound = store.ErrNotFound

// ValidationError reports malformed caller input. Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// EmbeddingError reports a failed embedding provider call. Search surfaces
// it to the caller; the augmentation path swallows it.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StorageError reports a persistence failure. Handlers map it to 500.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEmbedding reports whether err is an EmbeddingError.
func IsEmbedding(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee)
}
