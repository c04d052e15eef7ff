package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader returns the form header text is compared in: trimmed,
// NFKC-normalized and case-folded. Two headers that normalize to the same
// text are the same column.
func NormalizeHeader(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}
