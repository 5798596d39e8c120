package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// StorageUnavailableError signals that the attempt blob store rejected a
// write (quota, connectivity). It is recoverable: callers keep serving from
// their in-memory copy and only future persistence is degraded.
type StorageUnavailableError struct {
	Err error
}

func (err StorageUnavailableError) Error() string {
	if err.Err == nil {
		return "storage unavailable"
	}
	return "storage unavailable: " + err.Err.Error()
}

func (err StorageUnavailableError) Unwrap() error { return err.Err }

func IsStorageUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*StorageUnavailableError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
