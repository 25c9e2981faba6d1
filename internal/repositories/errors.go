package repositories

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrNotFound is returned when no item exists under the requested key
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidID is returned when an empty or malformed key is provided
	ErrInvalidID = errors.New("invalid ID")

	// ErrConnection is returned when the backing store cannot be reached
	ErrConnection = errors.New("store connection error")

	// ErrThrottled is returned when the backing store rejects a request for capacity reasons
	ErrThrottled = errors.New("request throttled")

	// ErrSerialization is returned when an item cannot be encoded or decoded
	ErrSerialization = errors.New("serialization error")

	// ErrRejected is returned when the store refuses an otherwise well-formed request
	ErrRejected = errors.New("request rejected by store")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op     string // Operation that failed
	Entity string // Entity type
	ID     string // Entity ID (if applicable)
	Err    error  // Underlying error
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s operation failed for ID %s: %v", e.Entity, e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s %s operation failed: %v", e.Entity, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(op, entity, id string, err error) *RepositoryError {
	return &RepositoryError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// NotFoundError creates a "not found" repository error
func NotFoundError(op, entity, id string) *RepositoryError {
	return NewRepositoryError(op, entity, id, ErrNotFound)
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidID checks if an error is an "invalid ID" error
func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}

// IsConnection checks if an error is a "connection" error
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsThrottled checks if an error is a "throttled" error
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
