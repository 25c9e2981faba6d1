package services

import (
	"errors"
	"fmt"
)

// Error kinds. A *ServiceError matches exactly one of these with errors.Is.
var (
	// ErrInvalidInput marks missing or malformed caller input
	ErrInvalidInput = errors.New("invalid input")

	// ErrProductNotFound marks a lookup or update whose target does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrStoreFailure marks a backend that is unavailable or rejected the operation
	ErrStoreFailure = errors.New("store failure")
)

// MessageInternalError is the only message callers see for store failures
const MessageInternalError = "Internal Server Error"

// ServiceError carries the kind of a failure together with a message that is
// safe to return to callers. Err holds the internal cause for logging.
type ServiceError struct {
	Kind      error
	Op        string
	ProductID string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: product %s", e.Kind, e.Op)
	if e.ProductID != "" {
		msg += fmt.Sprintf(" for ID %s", e.ProductID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

// Unwrap returns the underlying cause
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind
func (e *ServiceError) Is(target error) bool {
	return e.Kind == target
}

// NewInvalidInputError creates a client error with a caller-facing message
func NewInvalidInputError(op, productID, message string) *ServiceError {
	return &ServiceError{
		Kind:      ErrInvalidInput,
		Op:        op,
		ProductID: productID,
		Message:   message,
	}
}

// NewNotFoundError creates a not found error for the given product
func NewNotFoundError(op, productID string, cause error) *ServiceError {
	return &ServiceError{
		Kind:      ErrProductNotFound,
		Op:        op,
		ProductID: productID,
		Message:   fmt.Sprintf("Product %s not Found", productID),
		Err:       cause,
	}
}

// NewStoreFailureError creates a store failure that hides its cause from callers
func NewStoreFailureError(op, productID string, cause error) *ServiceError {
	return &ServiceError{
		Kind:      ErrStoreFailure,
		Op:        op,
		ProductID: productID,
		Message:   MessageInternalError,
		Err:       cause,
	}
}

// IsInvalidInput checks if an error is a client input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if an error is a product not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

// IsStoreFailure checks if an error is a store failure
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}
