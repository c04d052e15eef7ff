package graph

import (
	"fmt"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
)

type entity struct {
	ptr any
	row int
}

// Disassemble rebuilds root entities from batches keyed by sheet name.
// Children attach to the first parent, in row order, whose key equals
// their key field. A child with no parent is returned as a warning, or
// aborts the call when opts.Strict is set. Missing sheets read as empty.
func Disassemble(root *schema.Schema, batches map[string]models.RecordBatch, opts Options) ([]any, []error, error) {
	ordered, err := Order(root)
	if err != nil {
		return nil, nil, err
	}

	built := make(map[*schema.Schema][]entity, len(ordered))
	for _, s := range ordered {
		rows, err := buildEntities(s, batches[s.Sheet])
		if err != nil {
			return nil, nil, err
		}
		built[s] = rows
	}

	// Deepest types attach first so that value-typed collections copy
	// complete children.
	var warnings []error
	for i := len(ordered) - 1; i > 0; i-- {
		child := ordered[i]
		links := linksTo(ordered, child)
		if len(links) == 0 {
			continue
		}
		parents := make([]map[string]any, len(links))
		for j, l := range links {
			parents[j] = indexParents(l, built[l.Parent])
		}

		for _, ce := range built[child] {
			attached := false
			for j, l := range links {
				key := keyString(l.ChildKey.Get(ce.ptr))
				p, ok := parents[j][key]
				if !ok || key == "" {
					continue
				}
				if err := l.Append(p, ce.ptr); err != nil {
					return nil, nil, NewRowError(child.Sheet, ce.row, l.Field, err)
				}
				attached = true
				break
			}
			if attached {
				continue
			}
			d := NewDanglingChildError(child.Sheet, ce.row, keyString(links[0].ChildKey.Get(ce.ptr)))
			if opts.Strict {
				return nil, nil, d
			}
			warnings = append(warnings, d)
		}
	}

	out := make([]any, len(built[root]))
	for i, e := range built[root] {
		out[i] = e.ptr
	}
	return out, warnings, nil
}

func buildEntities(s *schema.Schema, b models.RecordBatch) ([]entity, error) {
	out := make([]entity, 0, len(b.Rows))
	for _, row := range b.Rows {
		e := s.New()
		for i, c := range s.Columns {
			if i >= len(row.Values) {
				break
			}
			if err := c.Set(e, row.Values[i]); err != nil {
				return nil, NewRowError(s.Sheet, row.Index, c.Field, err)
			}
		}
		out = append(out, entity{ptr: e, row: row.Index})
	}
	return out, nil
}

// linksTo returns the links targeting child, in parent order.
func linksTo(ordered []*schema.Schema, child *schema.Schema) []*schema.Link {
	var out []*schema.Link
	for _, s := range ordered {
		for _, l := range s.Links {
			if l.Child == child {
				out = append(out, l)
			}
		}
	}
	return out
}

func indexParents(l *schema.Link, parents []entity) map[string]any {
	idx := make(map[string]any, len(parents))
	for _, p := range parents {
		key := keyString(l.ParentKey.Get(p.ptr))
		if _, dup := idx[key]; !dup {
			idx[key] = p.ptr
		}
	}
	return idx
}

func keyString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
