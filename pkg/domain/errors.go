package domain

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a record does not exist in the addressed
// repository.
type NotFoundError struct {
	URI RecordURI
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("record %s not found", e.URI)
}

// CrossRepositoryError is returned when a record is addressed through a
// repository scope it does not belong to. Callers must surface it exactly as
// a NotFoundError so record ids cannot be enumerated across repositories.
type CrossRepositoryError struct {
	URI   RecordURI
	Scope int64
}

func (e CrossRepositoryError) Error() string {
	return fmt.Sprintf("record %s not found", e.URI)
}

// ConflictError is returned when an update carries a stale version. The
// caller can recover by re-fetching current state and reapplying intent.
type ConflictError struct {
	URI      RecordURI
	Expected int
	Actual   int
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("record %s version conflict: expected %d, stored %d", e.URI, e.Expected, e.Actual)
}

// StorageError wraps an infrastructure failure of a durable backend. It is
// not retryable by the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err should read to a caller as "no such
// record". Cross-repository addressing is deliberately indistinguishable
// from a missing id.
func IsNotFound(err error) bool {
	var nf NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var xr CrossRepositoryError
	return errors.As(err, &xr)
}

// IsConflict reports whether err is a stale-version conflict.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}
