// Package graph flattens object graphs into per-sheet record batches and
// reassembles them.
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyKey is wrapped by the RowError returned when a parent with
// children has no key to stamp into them. Such children could never be
// attached again on read.
var ErrEmptyKey = errors.New("parent key is empty")

// RelationalCycleError reports model types that link back into themselves.
type RelationalCycleError struct {
	// Path lists the sheets along the cycle, ending with the repeated one.
	Path []string
}

func (e *RelationalCycleError) Error() string {
	return fmt.Sprintf("relational cycle: %s", strings.Join(e.Path, " -> "))
}

// NewRelationalCycleError creates a new RelationalCycleError.
func NewRelationalCycleError(path []string) *RelationalCycleError {
	return &RelationalCycleError{
		Path: path,
	}
}

// MaxDepthError reports an acyclic relational chain deeper than the
// configured limit.
type MaxDepthError struct {
	// Path lists the sheets from the root to the first one past the limit.
	Path  []string
	Limit int
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("relational depth exceeds %d: %s", e.Limit, strings.Join(e.Path, " -> "))
}

// NewMaxDepthError creates a new MaxDepthError.
func NewMaxDepthError(path []string, limit int) *MaxDepthError {
	return &MaxDepthError{
		Path:  path,
		Limit: limit,
	}
}

// DanglingChildError reports a child row whose key matches no parent.
type DanglingChildError struct {
	Sheet string
	Row   int
	Key   string
}

func (e *DanglingChildError) Error() string {
	return fmt.Sprintf("dangling child in sheet %q row %d: no parent with key %q", e.Sheet, e.Row, e.Key)
}

// NewDanglingChildError creates a new DanglingChildError.
func NewDanglingChildError(sheet string, row int, key string) *DanglingChildError {
	return &DanglingChildError{
		Sheet: sheet,
		Row:   row,
		Key:   key,
	}
}

// RowError reports a value that could not be moved between a row and a field.
type RowError struct {
	Sheet string
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d field %s: %v", e.Sheet, e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError creates a new RowError.
func NewRowError(sheet string, row int, field string, err error) *RowError {
	return &RowError{
		Sheet: sheet,
		Row:   row,
		Field: field,
		Err:   err,
	}
}

// IsCycleError returns true if err is or wraps a RelationalCycleError.
func IsCycleError(err error) bool {
	var ce *RelationalCycleError
	return errors.As(err, &ce)
}

// IsDanglingChild returns true if err is or wraps a DanglingChildError.
func IsDanglingChild(err error) bool {
	var de *DanglingChildError
	return errors.As(err, &de)
}
