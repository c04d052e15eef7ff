package style

import (
	"fmt"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

// Spec is the declared presentation of one column.
type Spec struct {
	// Header is the value-independent header cell style.
	Header models.Style
	// Static is the base data style, including the display format.
	Static models.Style
	// Styles are evaluated in declaration order; later matches win.
	Styles []Named[StyleRule]
	// Comment and Status are optional side channels.
	Comment *Named[CommentRule]
	Status  *Named[StatusRule]
}

// HasRules reports whether any conditional logic is declared.
func (s Spec) HasRules() bool {
	return len(s.Styles) > 0 || s.Comment != nil || s.Status != nil
}

// Resolve computes the presentation of a data cell holding v.
func Resolve(field string, spec Spec, v any) (models.Presentation, error) {
	p := models.Presentation{Style: spec.Static}

	for _, r := range spec.Styles {
		var (
			patch models.Style
			ok    bool
		)
		err := guard(field, r.Name, func() (err error) {
			patch, ok, err = r.Rule(v)
			return err
		})
		if err != nil {
			return models.Presentation{}, err
		}
		if ok {
			p.Style = p.Style.Merge(patch)
		}
	}

	if c := spec.Comment; c != nil {
		err := guard(field, c.Name, func() error {
			text, ok, err := c.Rule(v)
			if ok {
				p.Comment = text
			}
			return err
		})
		if err != nil {
			return models.Presentation{}, err
		}
	}

	if s := spec.Status; s != nil {
		err := guard(field, s.Name, func() (err error) {
			p.Status, err = s.Rule(v)
			return err
		})
		if err != nil {
			return models.Presentation{}, err
		}
	}

	return p, nil
}

// guard runs fn and converts both returned errors and panics into a
// PresentationError naming the field and rule.
func guard(field, rule string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPresentationError(field, rule, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		return NewPresentationError(field, rule, err)
	}
	return nil
}
