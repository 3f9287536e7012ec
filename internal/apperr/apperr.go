// Package apperr holds the error kinds shared by services and handlers.
// Callers classify with errors.Is against the sentinels below.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyPaid       = errors.New("job already paid")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStorage           = errors.New("storage error")
)

// Forbidden wraps ErrForbidden with the failed rule.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// StorageError is the only retryable kind. The whole operation may be
// retried by the caller, never a part of it.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return ErrStorage.Error()
	}
	return ErrStorage.Error() + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err as a StorageError unless it already carries a domain kind.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Err: err}
}

// IsDomain reports whether err is a terminal business or authorization error.
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrInsufficientFunds)
}

func Retryable(err error) bool {
	return errors.Is(err, ErrStorage)
}
