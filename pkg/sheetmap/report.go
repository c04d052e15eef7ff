package sheetmap

// SheetStat counts the data rows moved through one sheet.
type SheetStat struct {
	Sheet string `json:"sheet"`
	Rows  int    `json:"rows"`
}

// Report collects the non-fatal outcome of an export or read.
type Report struct {
	// Sheets lists the sheets touched, in document order.
	Sheets []SheetStat `json:"sheets"`
	// Warnings holds anomalies that did not abort the operation, such as
	// dangling children in lenient mode or features a streaming document
	// cannot represent.
	Warnings []error `json:"-"`
}

// HasWarnings reports whether any warning was recorded.
func (r *Report) HasWarnings() bool {
	return r != nil && len(r.Warnings) > 0
}

// Rows returns the data row count of sheet.
func (r *Report) Rows(sheet string) int {
	for _, s := range r.Sheets {
		if s.Sheet == sheet {
			return s.Rows
		}
	}
	return 0
}

func (r *Report) warn(err error) {
	r.Warnings = append(r.Warnings, err)
}

func (r *Report) sheet(name string, rows int) {
	r.Sheets = append(r.Sheets, SheetStat{Sheet: name, Rows: rows})
}
