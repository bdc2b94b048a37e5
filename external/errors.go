package external

import (
	"errors"
	"fmt"
)

// ErrBackend matches every generation backend failure via errors.Is.
var ErrBackend = errors.New("generation backend failure")

// BackendError describes a failed backend call.
// StatusCode is 0 when no HTTP response was received.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func newBackendError(op string, status int, err error) *BackendError {
	return &BackendError{Op: op, StatusCode: status, Err: err}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBackend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is reports ErrBackend as a match so callers need not know the concrete type.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }
