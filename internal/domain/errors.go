package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRowSkipped marks an export row without enough data to build a recipe.
	ErrRowSkipped = errors.New("row skipped")
	// ErrMissingCredentials is returned when the remote store is not configured.
	ErrMissingCredentials = errors.New("missing remote store credentials")
)

// FileParseError reports an unreadable or malformed export file.
type FileParseError struct {
	File string
	Err  error
}

func (e *FileParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("parse export: %v", e.Err)
	}
	return fmt.Sprintf("parse export %s: %v", e.File, e.Err)
}

func (e *FileParseError) Unwrap() error { return e.Err }

// RemoteStoreError wraps any failed call against the remote page store.
type RemoteStoreError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteStoreError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	default:
		return e.Op + ": remote store error"
	}
}

func (e *RemoteStoreError) Unwrap() error { return e.Err }

// GenerationError is recorded when keyword generation fails for one domain.
type GenerationError struct {
	Domain string
	Cause  any
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate keywords for %s: %v", e.Domain, e.Cause)
}
