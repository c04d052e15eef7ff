package sheetmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/graph"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/store"
)

var errEmptyCover = errors.New("cover sheet has no data row")

// Read parses a document into root objects of type T, reattaching every
// child collection declared on T. T may be a struct type or a pointer to one.
//
// Dangling children abort the read in strict mode. Otherwise they are left
// out of every parent and reported once each in the returned Report.
func Read[T any](r io.Reader, opts Options) (out []T, report *Report, err error) {
	start := time.Now()
	defer func() { opts.Metrics.Observe("read", start, err) }()

	t := reflect.TypeFor[T]()
	s, err := opts.resolver().Resolve(t)
	if err != nil {
		return nil, nil, err
	}

	wb, err := opts.backend().Open(r)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	report = &Report{}
	batches, err := readBatches(wb, s, opts, report)
	if err != nil {
		return nil, nil, err
	}

	roots, warnings, err := graph.Disassemble(s, batches, opts.graph())
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		var de *graph.DanglingChildError
		if errors.As(w, &de) {
			opts.Metrics.DanglingChild(de.Sheet)
		}
		report.warn(w)
		opts.logger().Warn("read warning", "error", w)
	}

	out = make([]T, len(roots))
	for i, root := range roots {
		if t.Kind() == reflect.Pointer {
			out[i] = root.(T)
		} else {
			out[i] = reflect.ValueOf(root).Elem().Interface().(T)
		}
	}
	return out, report, nil
}

// ReadStored fetches key from st and reads it like Read.
func ReadStored[T any](ctx context.Context, st store.Store, key string, opts Options) ([]T, *Report, error) {
	_, rc, err := st.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	return Read[T](rc, opts)
}

// ReadCover fills dst, a pointer to a cover model, from its sheet.
func ReadCover(r io.Reader, dst any, opts Options) (*Report, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, fmt.Errorf("cover destination must be a non-nil pointer, got %T", dst)
	}
	s, err := opts.resolver().ResolveValue(dst)
	if err != nil {
		return nil, err
	}

	be := opts.backend()
	wb, err := be.Open(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.Rows(s.Sheet)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	batch := toBatch(s, rows, opts, report)
	if batch.Len() == 0 {
		return nil, backend.NewReadError(be.Name(), s.Sheet, errEmptyCover)
	}

	row := batch.Rows[0]
	for i, c := range s.Columns {
		if err := c.Set(dst, row.Values[i]); err != nil {
			return nil, graph.NewRowError(s.Sheet, row.Index, c.Field, err)
		}
	}
	report.sheet(s.Sheet, 1)
	opts.Metrics.RowsRead(s.Sheet, 1)
	return report, nil
}

// readBatches reads the sheet of every schema reachable from root. A
// missing sheet reads as empty.
func readBatches(wb backend.Workbook, root *schema.Schema, opts Options, report *Report) (map[string]models.RecordBatch, error) {
	batches := make(map[string]models.RecordBatch)
	for _, s := range root.Walk() {
		rows, err := wb.Rows(s.Sheet)
		if errors.Is(err, backend.ErrSheetNotFound) {
			opts.logger().Debug("sheet missing, reading as empty", "sheet", s.Sheet)
			continue
		}
		if err != nil {
			return nil, err
		}
		b := toBatch(s, rows, opts, report)
		batches[s.Sheet] = b
		report.sheet(s.Sheet, b.Len())
		opts.Metrics.RowsRead(s.Sheet, b.Len())
	}
	return batches, nil
}

// toBatch aligns raw rows with the schema's columns. Columns are located by
// normalized header text; if any mapped header is missing, every column falls
// back to its declaration position. See headerRow for when the first row is
// taken as the header.
func toBatch(s *schema.Schema, rows []models.CellRow, opts Options, report *Report) models.RecordBatch {
	b := models.RecordBatch{Sheet: s.Sheet, Columns: s.Headers()}
	if len(rows) == 0 {
		return b
	}

	pos, matched := locateColumns(s, rows[0])
	data := rows
	if headerRow(s, rows[0], matched) {
		data = rows[1:]
	} else {
		opts.logger().Debug("no header row, first row read as data", "sheet", s.Sheet, "row", rows[0].R)
	}
	if matched < len(s.Columns) {
		opts.logger().Debug("headers not matched, using declaration order", "sheet", s.Sheet)
		for i := range pos {
			pos[i] = i + 1
		}
	}

	for _, cr := range data {
		row := models.Row{Index: cr.R, Values: make([]any, len(s.Columns))}
		for i, c := range s.Columns {
			if c.Image {
				if img := cr.Image(pos[i]); img != nil {
					row.Values[i] = img
				}
				continue
			}
			row.Values[i] = cr.Value(pos[i])
		}
		b.Rows = append(b.Rows, row)
	}
	return b
}

// headerRow reports whether first, the first non-empty row, is a header.
// It is when any mapped header matches it. A row matching none is still a
// header when it sits on the sheet's first row and some value does not
// convert into its column; otherwise it is data, as in a sheet written
// without headers or one whose header row was left blank.
func headerRow(s *schema.Schema, first models.CellRow, matched int) bool {
	if matched > 0 {
		return true
	}
	if first.R != 1 {
		return false
	}
	scratch := s.New()
	for i, c := range s.Columns {
		v := first.Value(i + 1)
		if c.Image || v == nil {
			continue
		}
		if err := c.Set(scratch, v); err != nil {
			return true
		}
	}
	return false
}

// locateColumns returns the 1-based position of every column in header and
// how many columns were found. Unmatched columns get position 0.
func locateColumns(s *schema.Schema, header models.CellRow) ([]int, int) {
	byText := make(map[string]int, len(header.C))
	for col := 1; col <= maxColumn(header); col++ {
		v := header.Value(col)
		if v == nil {
			continue
		}
		key := schema.NormalizeHeader(fmt.Sprint(v))
		if _, dup := byText[key]; !dup {
			byText[key] = col
		}
	}

	pos := make([]int, len(s.Columns))
	matched := 0
	for i, c := range s.Columns {
		if p, found := byText[schema.NormalizeHeader(c.Header)]; found {
			pos[i] = p
			matched++
		}
	}
	return pos, matched
}

func maxColumn(r models.CellRow) int {
	n := 0
	for k := range r.C {
		var col int
		if _, err := fmt.Sscan(k, &col); err == nil && col > n {
			n = col
		}
	}
	return n
}
