package sheetmap

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/graph"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrIllegalState is returned when an export is configured or finalized
// out of order.
var ErrIllegalState = errors.New("illegal export state")

// ErrEmptyKey is wrapped by the RowError returned when a parent with child
// rows has an empty key.
var ErrEmptyKey = graph.ErrEmptyKey

// ErrSheetClosed is returned when a streaming export revisits a sheet.
var ErrSheetClosed = backend.ErrSheetClosed

type (
	// SchemaError reports a malformed model. It is raised before any I/O.
	SchemaError = schema.Error
	// RelationalCycleError reports a relational graph that links back into itself.
	RelationalCycleError = graph.RelationalCycleError
	// MaxDepthError reports a relational chain deeper than Options.MaxDepth.
	MaxDepthError = graph.MaxDepthError
	// DanglingChildError reports a child row whose key matches no parent.
	DanglingChildError = graph.DanglingChildError
	// RowError reports a row value that could not be moved between a cell
	// and its field, or a parent whose empty key cannot link its children.
	RowError = graph.RowError
	// PresentationError reports a failing style, comment or status rule.
	PresentationError = style.PresentationError
	// BackendWriteError wraps a document backend failure while writing.
	BackendWriteError = backend.WriteError
	// BackendReadError wraps a document backend failure while reading.
	BackendReadError = backend.ReadError
)

// IsSchemaError returns true if err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsCycleError returns true if err is or wraps a RelationalCycleError.
func IsCycleError(err error) bool {
	return graph.IsCycleError(err)
}

// IsDanglingChild returns true if err is or wraps a DanglingChildError.
func IsDanglingChild(err error) bool {
	return graph.IsDanglingChild(err)
}

// UnsupportedFeatureError is reported as a warning when a document cannot
// represent some cell feature and the feature is dropped.
type UnsupportedFeatureError struct {
	Sheet   string
	Feature string
	Count   int
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("sheet %q: %d %s dropped, not supported by the document mode", e.Sheet, e.Count, e.Feature)
}

// NewUnsupportedFeatureError creates a new UnsupportedFeatureError.
func NewUnsupportedFeatureError(sheet, feature string, count int) *UnsupportedFeatureError {
	return &UnsupportedFeatureError{
		Sheet:   sheet,
		Feature: feature,
		Count:   count,
	}
}
