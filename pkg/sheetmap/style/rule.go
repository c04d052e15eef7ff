// Package style resolves per-cell presentation from static styles and
// user-supplied conditional rules.
package style

import "github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"

// StyleRule inspects a field value and, when it matches, returns a style
// patch. Non-zero attributes of the patch override the accumulated style.
// Rules must be pure functions of the value.
type StyleRule func(v any) (models.Style, bool, error)

// CommentRule returns the comment text to attach when it matches.
type CommentRule func(v any) (string, bool, error)

// StatusRule returns the status marker for a value.
type StatusRule func(v any) (models.Status, error)

// Named pairs a rule with the name it was registered under, so failures can
// be reported against it.
type Named[R any] struct {
	Name string
	Rule R
}

// When returns a StyleRule applying patch whenever pred holds.
func When(pred func(v any) bool, patch models.Style) StyleRule {
	return func(v any) (models.Style, bool, error) {
		if pred(v) {
			return patch, true, nil
		}
		return models.Style{}, false, nil
	}
}

// CommentWhen returns a CommentRule attaching text whenever pred holds.
func CommentWhen(pred func(v any) bool, text string) CommentRule {
	return func(v any) (string, bool, error) {
		if pred(v) {
			return text, true, nil
		}
		return "", false, nil
	}
}

// StatusWhen returns a StatusRule yielding match when pred holds and
// otherwise in every other case.
func StatusWhen(pred func(v any) bool, match, otherwise models.Status) StatusRule {
	return func(v any) (models.Status, error) {
		if pred(v) {
			return match, nil
		}
		return otherwise, nil
	}
}
