package models

import "strconv"

// RecordBatch is the ordered set of rows mapped to one sheet.
type RecordBatch struct {
	// Sheet is the target sheet name.
	Sheet string `json:"sheet"`
	// Columns holds the column headers in declaration order.
	Columns []string `json:"columns"`
	// Rows holds the records in emission order.
	Rows []Row `json:"rows"`
}

// Row is a single record. Values are aligned with RecordBatch.Columns.
type Row struct {
	// Index is the 1-based source row number when read from a document,
	// or the 1-based record position when assembled.
	Index int `json:"index"`
	// Values holds one literal per column.
	Values []any `json:"values"`
}

// Len returns the number of rows in the batch.
func (b RecordBatch) Len() int {
	return len(b.Rows)
}

func colKey(col int) string {
	return strconv.Itoa(col)
}
