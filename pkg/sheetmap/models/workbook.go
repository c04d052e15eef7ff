package models

// WorkbookData is a raw dump of a workbook: every sheet's non-empty rows,
// keyed by sheet name.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets maps sheet name to SheetData.
	Sheets map[string]SheetData `json:"sheets"`
	// Order lists sheet names in workbook order.
	Order []string `json:"sheet_order,omitempty"`
}

// SheetNames returns the sheet names in workbook order. Sheets missing from
// Order are not listed.
func (w *WorkbookData) SheetNames() []string {
	names := make([]string, 0, len(w.Order))
	for _, name := range w.Order {
		if _, ok := w.Sheets[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
