package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("todo not found")
	ErrStorage       = errors.New("storage error")
	ErrClosed        = errors.New("store closed")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// StorageError wraps a driver failure with the operation that hit it.
// It matches ErrStorage with errors.Is and unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
