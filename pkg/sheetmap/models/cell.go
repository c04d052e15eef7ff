// Package models defines the data structures exchanged between the mapping
// engine and tabular document backends.
package models

// CellRow represents a single raw row as read from a document backend.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column index (1-based, as string) to the raw cell value.
	C map[string]any `json:"c"`
	// Images maps column index to embedded picture bytes (optional).
	Images map[string][]byte `json:"images,omitempty"`
}

// Value returns the raw value at the 1-based column position, or nil.
func (r CellRow) Value(col int) any {
	return r.C[colKey(col)]
}

// Image returns the picture anchored at the 1-based column position, or nil.
func (r CellRow) Image(col int) []byte {
	return r.Images[colKey(col)]
}
