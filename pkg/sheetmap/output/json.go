// Package output serializes dumped workbooks to JSON.
package output

import (
	"encoding/json"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

// ToJSON serializes a workbook dump.
func ToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return marshal(wb, pretty)
}

// SheetToJSON serializes a single sheet of a dump.
func SheetToJSON(sheet *models.SheetData, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

// BatchToJSON serializes a record batch.
func BatchToJSON(batch *models.RecordBatch, pretty bool) ([]byte, error) {
	return marshal(batch, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
