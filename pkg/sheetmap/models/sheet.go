package models

// SheetData represents the raw content of a single sheet.
type SheetData struct {
	// Rows contains non-empty rows with their raw cell values.
	Rows []CellRow `json:"rows,omitempty"`
	// UsedRange is the bounding range of non-empty cells (e.g. "A1:D10").
	UsedRange string `json:"used_range,omitempty"`
}
