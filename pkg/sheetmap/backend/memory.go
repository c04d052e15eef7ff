package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

// Memory is a JSON document backend. It represents every cell feature and
// is used where a spreadsheet file is not needed.
type Memory struct{}

// NewMemory creates a Memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// MemoryBook is the JSON form of a Memory document.
type MemoryBook struct {
	Sheets []*MemorySheet `json:"sheets"`
}

// MemorySheet is one sheet of a MemoryBook. Rows[0] is the header row.
type MemorySheet struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns,omitempty"`
	Rows    [][]Cell `json:"rows"`
}

// Sheet returns the named sheet, or nil.
func (b *MemoryBook) Sheet(name string) *MemorySheet {
	for _, s := range b.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// DecodeMemory parses a Memory document. Numbers decode as int64 when
// integral and float64 otherwise.
func DecodeMemory(r io.Reader) (*MemoryBook, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var book MemoryBook
	if err := dec.Decode(&book); err != nil {
		return nil, err
	}
	for _, s := range book.Sheets {
		for _, row := range s.Rows {
			for i := range row {
				if n, ok := row[i].Value.(json.Number); ok {
					row[i].Value = numberValue(n)
				}
			}
		}
	}
	return &book, nil
}

func numberValue(n json.Number) any {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Create(mode Mode, template io.Reader) (Document, error) {
	d := &memoryDoc{
		mode:   mode,
		book:   &MemoryBook{},
		cursor: make(map[string]int),
	}
	if template == nil {
		return d, nil
	}
	if mode == Streaming {
		return nil, NewWriteError(m.Name(), "", "create", ErrTemplateStreaming)
	}
	book, err := DecodeMemory(template)
	if err != nil {
		return nil, NewWriteError(m.Name(), "", "open template", err)
	}
	d.book = book
	return d, nil
}

func (m *Memory) Open(r io.Reader) (Workbook, error) {
	book, err := DecodeMemory(r)
	if err != nil {
		return nil, NewReadError(m.Name(), "", err)
	}
	return &memoryWorkbook{book: book}, nil
}

type memoryDoc struct {
	mode    Mode
	book    *MemoryBook
	current *MemorySheet
	cursor  map[string]int
	done    bool
}

func (d *memoryDoc) BeginSheet(name string, columns []Column) error {
	if d.current != nil && d.current.Name == name {
		return nil
	}
	if _, seen := d.cursor[name]; seen && d.mode == Streaming {
		return NewWriteError("memory", name, "begin", ErrSheetClosed)
	}

	s := d.book.Sheet(name)
	if s == nil {
		s = &MemorySheet{Name: name}
		d.book.Sheets = append(d.book.Sheets, s)
	}
	s.Columns = mergeColumns(s.Columns, columns)
	d.current = s
	d.cursor[name] = 0
	return nil
}

func mergeColumns(existing, columns []Column) []Column {
	out := append([]Column(nil), existing...)
	for i, c := range columns {
		if i < len(out) {
			if c.Width > 0 {
				out[i].Width = c.Width
			}
			out[i].Header = c.Header
			continue
		}
		out = append(out, c)
	}
	return out
}

func (d *memoryDoc) AppendRow(cells []Cell) error {
	if d.current == nil {
		return NewWriteError("memory", "", "append", ErrNoSheet)
	}
	s := d.current
	at := d.cursor[s.Name]
	d.cursor[s.Name] = at + 1

	if at >= len(s.Rows) {
		s.Rows = append(s.Rows, append([]Cell(nil), cells...))
		return nil
	}
	row := s.Rows[at]
	for i, c := range cells {
		if i >= len(row) {
			row = append(row, c)
			continue
		}
		if c.Style.IsZero() {
			c.Style = row[i].Style
		}
		row[i] = c
	}
	s.Rows[at] = row
	return nil
}

func (d *memoryDoc) Capabilities() Capabilities {
	return Capabilities{Comments: true, Images: true}
}

func (d *memoryDoc) WriteTo(w io.Writer) (int64, error) {
	if d.done {
		return 0, NewWriteError("memory", "", "write", fmt.Errorf("document already written"))
	}
	d.done = true

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.book); err != nil {
		return 0, NewWriteError("memory", "", "encode", err)
	}
	return buf.WriteTo(w)
}

func (d *memoryDoc) Close() error {
	d.current = nil
	return nil
}

type memoryWorkbook struct {
	book *MemoryBook
}

func (w *memoryWorkbook) Sheets() []string {
	names := make([]string, len(w.book.Sheets))
	for i, s := range w.book.Sheets {
		names[i] = s.Name
	}
	return names
}

func (w *memoryWorkbook) Rows(sheet string) ([]models.CellRow, error) {
	s := w.book.Sheet(sheet)
	if s == nil {
		return nil, NewReadError("memory", sheet, ErrSheetNotFound)
	}

	var out []models.CellRow
	for i, row := range s.Rows {
		cr := models.CellRow{R: i + 1, C: make(map[string]any)}
		for j, c := range row {
			col := strconv.Itoa(j + 1)
			if len(c.Image) > 0 {
				if cr.Images == nil {
					cr.Images = make(map[string][]byte)
				}
				cr.Images[col] = c.Image
			}
			if c.Value == nil || c.Value == "" {
				continue
			}
			cr.C[col] = c.Value
		}
		if len(cr.C) > 0 || len(cr.Images) > 0 {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (w *memoryWorkbook) Close() error {
	return nil
}
