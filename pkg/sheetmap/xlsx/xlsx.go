// Package xlsx implements the document backend for Excel workbooks on top
// of excelize.
package xlsx

import (
	"io"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
)

const (
	name          = "xlsx"
	defaultSheet  = "Sheet1"
	defaultAuthor = "sheetmap"
)

// Options configures the xlsx backend.
type Options struct {
	// CommentAuthor is recorded on every cell comment.
	CommentAuthor string
}

// Backend produces and reads .xlsx workbooks.
type Backend struct {
	author string
}

// New creates an xlsx backend.
func New(opts Options) *Backend {
	author := opts.CommentAuthor
	if author == "" {
		author = defaultAuthor
	}
	return &Backend{author: author}
}

func (b *Backend) Name() string {
	return name
}

// Create starts a workbook. Buffered documents build the workbook in
// memory; streaming documents write each sheet through a stream writer.
func (b *Backend) Create(mode backend.Mode, template io.Reader) (backend.Document, error) {
	if template != nil && mode == backend.Streaming {
		return nil, backend.NewWriteError(name, "", "create", backend.ErrTemplateStreaming)
	}

	f := excelize.NewFile()
	fresh := true
	if template != nil {
		var err error
		if f, err = excelize.OpenReader(template); err != nil {
			return nil, backend.NewWriteError(name, "", "open template", err)
		}
		fresh = false
	}

	d := &document{
		f:      f,
		author: b.author,
		styles: newStyles(f),
		fresh:  fresh,
		next:   make(map[string]int),
	}
	if mode == backend.Streaming {
		return &streamDocument{document: d}, nil
	}
	return d, nil
}

// Open reads a workbook.
func (b *Backend) Open(r io.Reader) (backend.Workbook, error) {
	return OpenWorkbook(r)
}

// OpenWorkbook reads a workbook, exposing the xlsx specific Dump.
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, backend.NewReadError(name, "", err)
	}
	return &Workbook{f: f}, nil
}

// document is a buffered workbook.
type document struct {
	f       *excelize.File
	author  string
	styles  *styles
	fresh   bool
	current string
	next    map[string]int
	written bool
}

// ensureSheet creates name unless it exists. The first sheet of a fresh
// workbook takes over the default sheet.
func (d *document) ensureSheet(sheet string) error {
	if d.fresh {
		d.fresh = false
		if sheet != defaultSheet {
			return d.f.SetSheetName(defaultSheet, sheet)
		}
		return nil
	}
	idx, err := d.f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return nil
	}
	_, err = d.f.NewSheet(sheet)
	return err
}

func (d *document) BeginSheet(sheet string, columns []backend.Column) error {
	if err := d.ensureSheet(sheet); err != nil {
		return backend.NewWriteError(name, sheet, "begin", err)
	}
	for i, c := range columns {
		if c.Width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return backend.NewWriteError(name, sheet, "begin", err)
		}
		if err := d.f.SetColWidth(sheet, col, col, c.Width); err != nil {
			return backend.NewWriteError(name, sheet, "column width", err)
		}
	}
	d.current = sheet
	d.next[sheet] = 1
	return nil
}

func (d *document) AppendRow(cells []backend.Cell) error {
	if d.current == "" {
		return backend.NewWriteError(name, "", "append", backend.ErrNoSheet)
	}
	sheet := d.current
	row := d.next[sheet]
	d.next[sheet] = row + 1

	for i, c := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return backend.NewWriteError(name, sheet, "append", err)
		}
		if err := d.writeCell(sheet, cell, c); err != nil {
			return backend.NewWriteError(name, sheet, "write "+cell, err)
		}
	}
	return nil
}

func (d *document) writeCell(sheet, cell string, c backend.Cell) error {
	if len(c.Image) > 0 {
		pic := &excelize.Picture{
			Extension: imageExtension(c.Image),
			File:      c.Image,
			Format:    &excelize.GraphicOptions{AutoFit: true},
		}
		if err := d.f.AddPictureFromBytes(sheet, cell, pic); err != nil {
			return err
		}
	} else if err := d.f.SetCellValue(sheet, cell, c.Value); err != nil {
		return err
	}

	// Unstyled cells keep whatever style the workbook already has there.
	if !c.Style.IsZero() || c.Status != 0 {
		id, err := d.styles.id(c.Style, c.Status)
		if err != nil {
			return err
		}
		if err := d.f.SetCellStyle(sheet, cell, cell, id); err != nil {
			return err
		}
	}

	if c.Comment != "" {
		return d.f.AddComment(sheet, excelize.Comment{
			Cell:   cell,
			Author: d.author,
			Text:   c.Comment,
		})
	}
	return nil
}

func (d *document) Capabilities() backend.Capabilities {
	return backend.Capabilities{Comments: true, Images: true}
}

func (d *document) WriteTo(w io.Writer) (int64, error) {
	if d.written {
		return 0, backend.NewWriteError(name, "", "write", errAlreadyWritten)
	}
	d.written = true
	n, err := d.f.WriteTo(w)
	if err != nil {
		return n, backend.NewWriteError(name, "", "write", err)
	}
	return n, nil
}

func (d *document) Close() error {
	return d.f.Close()
}

// streamDocument writes each sheet forward only through a stream writer.
type streamDocument struct {
	*document
	sw   *excelize.StreamWriter
	seen map[string]bool
}

func (d *streamDocument) BeginSheet(sheet string, columns []backend.Column) error {
	if sheet == d.current {
		return nil
	}
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[sheet] {
		return backend.NewWriteError(name, sheet, "begin", backend.ErrSheetClosed)
	}
	if err := d.flush(); err != nil {
		return err
	}
	if err := d.ensureSheet(sheet); err != nil {
		return backend.NewWriteError(name, sheet, "begin", err)
	}

	sw, err := d.f.NewStreamWriter(sheet)
	if err != nil {
		return backend.NewWriteError(name, sheet, "begin", err)
	}
	for i, c := range columns {
		if c.Width <= 0 {
			continue
		}
		if err := sw.SetColWidth(i+1, i+1, c.Width); err != nil {
			return backend.NewWriteError(name, sheet, "column width", err)
		}
	}
	d.sw = sw
	d.seen[sheet] = true
	d.current = sheet
	d.next[sheet] = 1
	return nil
}

func (d *streamDocument) AppendRow(cells []backend.Cell) error {
	if d.sw == nil {
		return backend.NewWriteError(name, "", "append", backend.ErrNoSheet)
	}
	row := d.next[d.current]
	d.next[d.current] = row + 1

	values := make([]any, len(cells))
	for i, c := range cells {
		cell := excelize.Cell{Value: c.Value}
		if !c.Style.IsZero() || c.Status != 0 {
			id, err := d.styles.id(c.Style, c.Status)
			if err != nil {
				return backend.NewWriteError(name, d.current, "style", err)
			}
			cell.StyleID = id
		}
		values[i] = cell
	}

	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return backend.NewWriteError(name, d.current, "append", err)
	}
	if err := d.sw.SetRow(start, values); err != nil {
		return backend.NewWriteError(name, d.current, "append", err)
	}
	return nil
}

func (d *streamDocument) flush() error {
	if d.sw == nil {
		return nil
	}
	sw := d.sw
	d.sw = nil
	if err := sw.Flush(); err != nil {
		return backend.NewWriteError(name, d.current, "flush", err)
	}
	return nil
}

func (d *streamDocument) Capabilities() backend.Capabilities {
	return backend.Capabilities{}
}

func (d *streamDocument) WriteTo(w io.Writer) (int64, error) {
	if err := d.flush(); err != nil {
		return 0, err
	}
	return d.document.WriteTo(w)
}

// imageExtension picks the picture extension excelize expects from the
// image's content.
func imageExtension(b []byte) string {
	switch http.DetectContentType(b) {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	default:
		return ".png"
	}
}
