package sheetmap

import (
	"os"
	"path/filepath"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/xlsx"
)

// Dump reads every sheet of an xlsx file as raw rows, without a schema.
func Dump(path string) (*models.WorkbookData, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb, err := xlsx.OpenWorkbook(f)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return wb.Dump(filepath.Base(path))
}
