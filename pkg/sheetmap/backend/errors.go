package backend

import "fmt"

// WriteError wraps a failure raised by a backend while producing a document.
type WriteError struct {
	Backend string
	Sheet   string
	Op      string
	Err     error
}

func (e *WriteError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s backend: %s sheet %q: %v", e.Backend, e.Op, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a new WriteError.
func NewWriteError(backend, sheet, op string, err error) *WriteError {
	return &WriteError{
		Backend: backend,
		Sheet:   sheet,
		Op:      op,
		Err:     err,
	}
}

// ReadError wraps a failure raised by a backend while reading a document.
type ReadError struct {
	Backend string
	Sheet   string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s backend: read sheet %q: %v", e.Backend, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s backend: read: %v", e.Backend, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError creates a new ReadError.
func NewReadError(backend, sheet string, err error) *ReadError {
	return &ReadError{
		Backend: backend,
		Sheet:   sheet,
		Err:     err,
	}
}
