package schema

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes schema resolution failures.
type ErrorCode string

const (
	// ErrCodeNotStruct indicates the model is not a struct type.
	ErrCodeNotStruct ErrorCode = "NOT_STRUCT"

	// ErrCodeNoSheet indicates the model has no sheet designation.
	ErrCodeNoSheet ErrorCode = "NO_SHEET"

	// ErrCodeDuplicateColumn indicates two fields map to the same header.
	ErrCodeDuplicateColumn ErrorCode = "DUPLICATE_COLUMN"

	// ErrCodeDuplicateSheet indicates two linked types share a sheet name.
	ErrCodeDuplicateSheet ErrorCode = "DUPLICATE_SHEET"

	// ErrCodeUnsupportedType indicates a mapped field has a type no column can hold.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeMalformedTag indicates a tag that cannot be parsed.
	ErrCodeMalformedTag ErrorCode = "MALFORMED_TAG"

	// ErrCodeUnknownRule indicates a rules tag naming an unregistered rule.
	ErrCodeUnknownRule ErrorCode = "UNKNOWN_RULE"

	// ErrCodeMissingKey indicates a relational link whose key field is not a
	// mapped column on the parent or child side.
	ErrCodeMissingKey ErrorCode = "MISSING_KEY"
)

// Error reports a malformed model. It is raised before any document I/O.
type Error struct {
	Code    ErrorCode
	Type    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Type, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Type, e.Message)
}

// NewError creates a new schema Error.
func NewError(code ErrorCode, typeName, field, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Type:    typeName,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsError reports whether err is a schema Error with the given code.
// An empty code matches any schema Error.
func IsError(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return code == "" || se.Code == code
	}
	return false
}
