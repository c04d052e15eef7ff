// Package backend defines the contract between the mapping engine and
// tabular document formats.
package backend

import (
	"errors"
	"io"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

// Mode selects how a document is produced.
type Mode int

const (
	// Buffered keeps the whole document in memory until it is written.
	Buffered Mode = iota
	// Streaming writes rows forward only. Sheets cannot be revisited.
	Streaming
)

func (m Mode) String() string {
	if m == Streaming {
		return "streaming"
	}
	return "buffered"
}

// ParseMode parses "buffered" or "streaming". The empty string is Buffered.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "buffered":
		return Buffered, true
	case "streaming":
		return Streaming, true
	}
	return Buffered, false
}

var (
	// ErrSheetClosed is returned when a streaming document is asked to
	// reopen a sheet it has already moved past.
	ErrSheetClosed = errors.New("sheet is closed")
	// ErrNoSheet is returned when a row is appended before any sheet began.
	ErrNoSheet = errors.New("no sheet has been started")
	// ErrTemplateStreaming is returned when a template is combined with
	// streaming mode.
	ErrTemplateStreaming = errors.New("templates require buffered mode")
	// ErrSheetNotFound is returned when reading a sheet the workbook lacks.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Column describes one column of a sheet being written.
type Column struct {
	Header string  `json:"header"`
	Width  float64 `json:"width,omitempty"`
}

// Cell is one value to be written along with its resolved presentation.
type Cell struct {
	Value   any           `json:"v,omitempty"`
	Style   models.Style  `json:"style,omitzero"`
	Comment string        `json:"comment,omitempty"`
	Status  models.Status `json:"status,omitzero"`
	// Image is rendered as a picture anchored at the cell instead of a value.
	Image []byte `json:"image,omitempty"`
}

// Capabilities reports which cell features a document can represent.
type Capabilities struct {
	Comments bool
	Images   bool
}

// Backend creates documents of one format and reads them back.
type Backend interface {
	// Name identifies the format in errors and metrics.
	Name() string
	// Create starts a new document. A non-nil template seeds the document
	// with existing sheets and styles and requires Buffered mode.
	Create(mode Mode, template io.Reader) (Document, error)
	// Open reads a document.
	Open(r io.Reader) (Workbook, error)
}

// Document is a document under construction.
type Document interface {
	// BeginSheet makes name the current sheet, creating it if needed, and
	// positions the row cursor at its first row.
	BeginSheet(name string, columns []Column) error
	// AppendRow writes cells to the next row of the current sheet.
	AppendRow(cells []Cell) error
	// Capabilities reports what the document can represent.
	Capabilities() Capabilities
	// WriteTo finalizes the document and writes it to w.
	WriteTo(w io.Writer) (int64, error)
	// Close releases resources held by the document.
	Close() error
}

// Workbook is a document opened for reading.
type Workbook interface {
	// Sheets lists sheet names in document order.
	Sheets() []string
	// Rows returns the non-empty rows of a sheet.
	Rows(sheet string) ([]models.CellRow, error)
	Close() error
}
