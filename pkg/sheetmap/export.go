package sheetmap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/graph"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/store"
)

// Export builds one document from a cover object and any number of root
// collections. Configuration calls must precede finalization through
// WriteTo, Bytes or Persist, and an Export can be finalized only once.
//
// An Export is not safe for concurrent use.
type Export struct {
	opts      Options
	mode      backend.Mode
	template  io.Reader
	cover     *graph.SheetBatch
	batches   []graph.SheetBatch
	sheets    map[string]reflect.Type
	finalized bool
	report    *Report
}

// NewExport starts an export.
func NewExport(opts Options) *Export {
	return &Export{
		opts:   opts,
		mode:   opts.Mode,
		sheets: make(map[string]reflect.Type),
		report: &Report{},
	}
}

// Streaming switches the export to forward-only emission. It must be
// requested before finalization and cannot be combined with a template.
func (e *Export) Streaming() error {
	if e.finalized {
		return fmt.Errorf("streaming requested after finalization: %w", ErrIllegalState)
	}
	if e.template != nil {
		return fmt.Errorf("streaming requested with a template: %w", ErrIllegalState)
	}
	e.mode = backend.Streaming
	return nil
}

// Template seeds the document with an existing one. Its sheets and styles
// are kept and only mapped cells are written.
func (e *Export) Template(r io.Reader) error {
	if e.finalized {
		return fmt.Errorf("template set after finalization: %w", ErrIllegalState)
	}
	if e.mode == backend.Streaming {
		return fmt.Errorf("template set on a streaming export: %w", ErrIllegalState)
	}
	e.template = r
	return nil
}

// Cover designates a single object rendered as the first sheet: a header
// row and one data row. Its child collections are not emitted.
func (e *Export) Cover(v any) error {
	if e.finalized {
		return fmt.Errorf("cover set after finalization: %w", ErrIllegalState)
	}
	if t := reflect.TypeOf(v); t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		return schema.NewError(schema.ErrCodeNotStruct, t.String(), "", "cover must be a single object")
	}
	s, err := e.opts.resolver().ResolveValue(v)
	if err != nil {
		return err
	}
	entities, err := s.Entities(v)
	if err != nil {
		return err
	}
	if len(entities) != 1 {
		return fmt.Errorf("cover of %s: expected one object, got %d", s.Type, len(entities))
	}
	if e.cover != nil {
		delete(e.sheets, e.cover.Schema.Sheet)
	}
	if err := e.claim(s); err != nil {
		return err
	}

	row := models.Row{Index: 1, Values: make([]any, len(s.Columns))}
	for i, c := range s.Columns {
		row.Values[i] = c.Get(entities[0])
	}
	e.cover = &graph.SheetBatch{
		Schema: s,
		Batch:  models.RecordBatch{Sheet: s.Sheet, Columns: s.Headers(), Rows: []models.Row{row}},
	}
	return nil
}

// Add flattens a collection of root objects and every reachable child
// collection into per-sheet batches. Keys of children are overwritten with
// their parent's key, in the caller's objects as well. A failed Add leaves
// the export and the caller's objects unchanged.
func (e *Export) Add(roots any) error {
	if e.finalized {
		return fmt.Errorf("roots added after finalization: %w", ErrIllegalState)
	}
	s, err := e.opts.resolver().ResolveValue(roots)
	if err != nil {
		return err
	}
	order, err := graph.Order(s)
	if err != nil {
		return err
	}
	for _, ts := range order {
		if err := e.available(ts); err != nil {
			return err
		}
	}

	batches, err := graph.Assemble(s, roots, e.opts.graph())
	if err != nil {
		return err
	}
	for _, b := range batches {
		e.sheets[b.Schema.Sheet] = b.Schema.Type
	}
	e.batches = append(e.batches, batches...)
	return nil
}

// available reports an error when another model type already owns the
// sheet of s.
func (e *Export) available(s *schema.Schema) error {
	if prev, ok := e.sheets[s.Sheet]; ok {
		return schema.NewError(schema.ErrCodeDuplicateSheet, s.Type.Name(), "", "sheet %q is already used by %s", s.Sheet, prev.Name())
	}
	return nil
}

// claim reserves a sheet name for one model type.
func (e *Export) claim(s *schema.Schema) error {
	if err := e.available(s); err != nil {
		return err
	}
	e.sheets[s.Sheet] = s.Type
	return nil
}

// Report returns the outcome collected so far. It is complete once the
// export is finalized.
func (e *Export) Report() *Report {
	return e.report
}

// WriteTo finalizes the export and writes the document to w.
func (e *Export) WriteTo(w io.Writer) (n int64, err error) {
	start := time.Now()
	defer func() { e.opts.Metrics.Observe("export", start, err) }()

	if e.finalized {
		return 0, fmt.Errorf("export already finalized: %w", ErrIllegalState)
	}
	e.finalized = true
	return e.emit(w)
}

// Bytes finalizes the export and returns the document.
func (e *Export) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Persist finalizes the export and stores the document under key.
func (e *Export) Persist(ctx context.Context, st store.Store, key string) (store.Info, error) {
	data, err := e.Bytes()
	if err != nil {
		return store.Info{}, err
	}
	contentType := "application/json"
	if e.opts.backend().Name() == "xlsx" {
		contentType = store.XLSXContentType
	}
	return st.Put(ctx, key, bytes.NewReader(data), store.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"sheets": strconv.Itoa(len(e.report.Sheets))},
	})
}
