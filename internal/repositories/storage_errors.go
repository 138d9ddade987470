package repositories

import "fmt"

// StorageErrorCode enumerates persistence error causes shared by the stores.
type StorageErrorCode string

const (
	// StorageErrorUnknown represents an unspecified failure.
	StorageErrorUnknown StorageErrorCode = "storage_unknown"
	// StorageErrorNotFound indicates the requested record does not exist.
	StorageErrorNotFound StorageErrorCode = "storage_not_found"
	// StorageErrorUnavailable indicates the backing store cannot be reached.
	StorageErrorUnavailable StorageErrorCode = "storage_unavailable"
	// StorageErrorConflict indicates a write collided with an existing record.
	StorageErrorConflict StorageErrorCode = "storage_conflict"
)

// StorageError wraps store failures with machine readable codes.
type StorageError struct {
	Op      string
	Code    StorageErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying error, if any.
func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound reports whether the error represents a missing record.
func (e *StorageError) IsNotFound() bool {
	return e != nil && e.Code == StorageErrorNotFound
}

// IsUnavailable reports whether the error represents a backend outage.
func (e *StorageError) IsUnavailable() bool {
	return e != nil && e.Code == StorageErrorUnavailable
}

// NewStorageError constructs a typed storage error.
func NewStorageError(op string, code StorageErrorCode, message string, err error) *StorageError {
	if message == "" {
		message = string(code)
	}
	return &StorageError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
