package style

import "fmt"

// PresentationError reports a failing user rule. It aborts the whole
// operation so that no partially styled document is produced.
type PresentationError struct {
	Sheet string
	Row   int
	Field string
	Rule  string
	Err   error
}

func (e *PresentationError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("presentation rule %q failed for field %s (sheet %q, row %d): %v", e.Rule, e.Field, e.Sheet, e.Row, e.Err)
	}
	return fmt.Sprintf("presentation rule %q failed for field %s: %v", e.Rule, e.Field, e.Err)
}

func (e *PresentationError) Unwrap() error {
	return e.Err
}

// NewPresentationError creates a new PresentationError.
func NewPresentationError(field, rule string, err error) *PresentationError {
	return &PresentationError{
		Field: field,
		Rule:  rule,
		Err:   err,
	}
}
