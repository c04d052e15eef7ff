package xlsx

import (
	"errors"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

var errAlreadyWritten = errors.New("document already written")

// Workbook is an xlsx workbook opened for reading.
type Workbook struct {
	f *excelize.File
}

// Sheets lists sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// Rows returns the non-empty rows of a sheet. Values are the raw cell
// strings: numbers unformatted, dates as their serial number.
func (w *Workbook) Rows(sheet string) ([]models.CellRow, error) {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil {
		return nil, backend.NewReadError(name, sheet, err)
	}
	if idx < 0 {
		return nil, backend.NewReadError(name, sheet, backend.ErrSheetNotFound)
	}

	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, backend.NewReadError(name, sheet, err)
	}
	images, err := w.pictures(sheet)
	if err != nil {
		return nil, backend.NewReadError(name, sheet, err)
	}

	var result []models.CellRow
	for r, row := range rows {
		rowNum := r + 1
		cellMap := make(map[string]any)
		for c, value := range row {
			if value == "" {
				continue
			}
			cellMap[strconv.Itoa(c+1)] = value
		}
		pics := images[rowNum]
		delete(images, rowNum)
		if len(cellMap) == 0 && len(pics) == 0 {
			continue
		}
		result = append(result, models.CellRow{R: rowNum, C: cellMap, Images: pics})
	}

	// Pictures can sit on rows that hold no values at all.
	for rowNum, pics := range images {
		result = insertRow(result, models.CellRow{R: rowNum, C: map[string]any{}, Images: pics})
	}
	return result, nil
}

// pictures returns the first picture of every picture cell, grouped by row.
func (w *Workbook) pictures(sheet string) (map[int]map[string][]byte, error) {
	cells, err := w.f.GetPictureCells(sheet)
	if err != nil {
		return nil, err
	}
	out := make(map[int]map[string][]byte)
	for _, cell := range cells {
		pics, err := w.f.GetPictures(sheet, cell)
		if err != nil {
			return nil, err
		}
		if len(pics) == 0 {
			continue
		}
		col, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return nil, err
		}
		if out[row] == nil {
			out[row] = make(map[string][]byte)
		}
		out[row][strconv.Itoa(col)] = pics[0].File
	}
	return out, nil
}

func insertRow(rows []models.CellRow, row models.CellRow) []models.CellRow {
	i := len(rows)
	for i > 0 && rows[i-1].R > row.R {
		i--
	}
	rows = append(rows, models.CellRow{})
	copy(rows[i+1:], rows[i:])
	rows[i] = row
	return rows
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Dump reads every sheet of the workbook as raw rows along with its used range.
func (w *Workbook) Dump(bookName string) (*models.WorkbookData, error) {
	data := &models.WorkbookData{
		BookName: bookName,
		Sheets:   make(map[string]models.SheetData),
	}
	for _, sheet := range w.Sheets() {
		rows, err := w.Rows(sheet)
		if err != nil {
			return nil, err
		}
		raw, err := w.f.GetRows(sheet)
		if err != nil {
			return nil, backend.NewReadError(name, sheet, err)
		}
		for _, row := range rows {
			for col, v := range row.C {
				row.C[col] = parseValue(v.(string))
			}
		}
		data.Sheets[sheet] = models.SheetData{Rows: rows, UsedRange: UsedRange(raw)}
		data.Order = append(data.Order, sheet)
	}
	return data, nil
}

// parseValue attempts to parse a raw cell string as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
