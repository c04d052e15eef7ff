package sheetmap

import (
	"errors"
	"io"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/graph"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

// sheetPlan is a sheet with every cell's presentation already resolved.
type sheetPlan struct {
	name    string
	columns []backend.Column
	rows    [][]backend.Cell
}

func (p *sheetPlan) dataRows() int {
	return len(p.rows) - 1
}

// plan resolves the presentation of every cell of b. The first row of the
// plan is the header row.
func plan(b graph.SheetBatch) (*sheetPlan, error) {
	s := b.Schema
	p := &sheetPlan{
		name:    s.Sheet,
		columns: make([]backend.Column, len(s.Columns)),
		rows:    make([][]backend.Cell, 0, len(b.Batch.Rows)+1),
	}

	header := make([]backend.Cell, len(s.Columns))
	for i, c := range s.Columns {
		p.columns[i] = backend.Column{Header: c.Header, Width: c.Width}
		header[i] = backend.Cell{Value: c.Header, Style: c.Presentation.Header}
	}
	p.rows = append(p.rows, header)

	for _, row := range b.Batch.Rows {
		cells := make([]backend.Cell, len(s.Columns))
		for i, c := range s.Columns {
			v := row.Values[i]
			pres, err := style.Resolve(c.Field, c.Presentation, v)
			if err != nil {
				var pe *style.PresentationError
				if errors.As(err, &pe) {
					pe.Sheet, pe.Row = s.Sheet, row.Index
				}
				return nil, err
			}
			cell := backend.Cell{
				Value:   v,
				Style:   pres.Style,
				Comment: pres.Comment,
				Status:  pres.Status,
			}
			if c.Image {
				cell.Value = nil
				cell.Image, _ = v.([]byte)
			}
			cells[i] = cell
		}
		p.rows = append(p.rows, cells)
	}
	return p, nil
}

// strip removes the features caps cannot represent, returning how many
// comments and images were dropped.
func (p *sheetPlan) strip(caps backend.Capabilities) (comments, images int) {
	for _, row := range p.rows {
		for i := range row {
			if !caps.Comments && row[i].Comment != "" {
				row[i].Comment = ""
				comments++
			}
			if !caps.Images && row[i].Image != nil {
				row[i].Image = nil
				images++
			}
		}
	}
	return comments, images
}

func (e *Export) emit(w io.Writer) (int64, error) {
	log := e.opts.logger()

	batches := e.batches
	if e.cover != nil {
		batches = append([]graph.SheetBatch{*e.cover}, batches...)
	}
	plans := make([]*sheetPlan, 0, len(batches))
	for _, b := range batches {
		p, err := plan(b)
		if err != nil {
			return 0, err
		}
		plans = append(plans, p)
	}

	be := e.opts.backend()
	doc, err := be.Create(e.mode, e.template)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	caps := doc.Capabilities()
	for _, p := range plans {
		comments, images := p.strip(caps)
		if comments > 0 {
			e.warn(NewUnsupportedFeatureError(p.name, "comments", comments))
		}
		if images > 0 {
			e.warn(NewUnsupportedFeatureError(p.name, "images", images))
		}
	}

	for _, p := range plans {
		if err := doc.BeginSheet(p.name, p.columns); err != nil {
			return 0, err
		}
		for _, row := range p.rows {
			if err := doc.AppendRow(row); err != nil {
				return 0, err
			}
		}
		e.report.sheet(p.name, p.dataRows())
		e.opts.Metrics.RowsWritten(p.name, p.dataRows())
		log.Debug("sheet emitted", "backend", be.Name(), "mode", e.mode.String(), "sheet", p.name, "rows", p.dataRows())
	}
	return doc.WriteTo(w)
}

func (e *Export) warn(err error) {
	e.report.warn(err)
	e.opts.logger().Warn("export warning", "error", err)
}
