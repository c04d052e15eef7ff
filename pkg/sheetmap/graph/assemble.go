package graph

import (
	"fmt"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
)

// SheetBatch pairs a record batch with the schema its rows follow.
type SheetBatch struct {
	Schema *schema.Schema
	Batch  models.RecordBatch
}

// Assemble flattens roots, a collection of root entities, into one batch
// per reachable type. Parents are visited before their children, and each
// child row carries its parent's key in the child's key column. Batches are
// returned parents first.
//
// Once the whole graph has been captured, the parent keys are also stamped
// into the children's key fields. On error nothing is stamped.
func Assemble(root *schema.Schema, roots any, opts Options) ([]SheetBatch, error) {
	ordered, err := Order(root)
	if err != nil {
		return nil, err
	}
	entities, err := root.Entities(roots)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", root.Sheet, err)
	}

	a := &assembler{
		batches:  make(map[*schema.Schema]*models.RecordBatch, len(ordered)),
		maxDepth: opts.maxDepth(),
	}
	for _, s := range ordered {
		a.batches[s] = &models.RecordBatch{Sheet: s.Sheet, Columns: s.Headers()}
	}
	for _, e := range entities {
		if err := a.visit(root, e, nil, 1, []string{root.Sheet}); err != nil {
			return nil, err
		}
	}
	for _, st := range a.stamps {
		if err := st.col.Set(st.child, st.key); err != nil {
			return nil, err
		}
	}

	out := make([]SheetBatch, len(ordered))
	for i, s := range ordered {
		out[i] = SheetBatch{Schema: s, Batch: *a.batches[s]}
	}
	return out, nil
}

// stamp is a parent key waiting to be written into a child.
type stamp struct {
	col   *schema.Column
	child any
	key   any
}

type assembler struct {
	batches  map[*schema.Schema]*models.RecordBatch
	stamps   []stamp
	maxDepth int
}

// visit captures entity's row. inherited, when set, is the key its parent
// stamps into it; it replaces the entity's own value for that column.
func (a *assembler) visit(s *schema.Schema, entity any, inherited *stamp, depth int, path []string) error {
	if depth > a.maxDepth {
		return NewMaxDepthError(path, a.maxDepth)
	}

	b := a.batches[s]
	row := models.Row{Index: len(b.Rows) + 1, Values: make([]any, len(s.Columns))}
	for i, c := range s.Columns {
		if inherited != nil && inherited.col == c {
			row.Values[i] = inherited.key
			continue
		}
		row.Values[i] = c.Get(entity)
	}
	b.Rows = append(b.Rows, row)

	for _, l := range s.Links {
		children := l.Children(entity)
		if len(children) == 0 {
			continue
		}
		key := row.Values[l.ParentKey.Index]
		if key == nil || key == "" {
			return NewRowError(s.Sheet, row.Index, l.ParentKey.Field, ErrEmptyKey)
		}

		// Convert once through a scratch child so the captured value is
		// the one the child field will hold.
		scratch := l.Child.New()
		if err := l.ChildKey.Set(scratch, key); err != nil {
			return NewRowError(l.Child.Sheet, a.batches[l.Child].Len()+1, l.ChildKey.Field, err)
		}
		childKey := l.ChildKey.Get(scratch)

		for _, child := range children {
			st := stamp{col: l.ChildKey, child: child, key: childKey}
			if err := a.visit(l.Child, child, &st, depth+1, append(path[:len(path):len(path)], l.Child.Sheet)); err != nil {
				return err
			}
			a.stamps = append(a.stamps, st)
		}
	}
	return nil
}
