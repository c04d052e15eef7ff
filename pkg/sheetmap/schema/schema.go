// Package schema resolves sheet schemas from tagged Go struct types.
//
// A model type designates its sheet through a SheetName method and maps
// fields to columns with struct tags:
//
//	type Student struct {
//		ID      int      `sheet:"Id,key"`
//		Name    string   `sheet:"Name,width=24" style:"bold"`
//		Score   float64  `sheet:"Score,type=decimal" rules:"style=highScore status=passFail"`
//		Courses []Course `children:"ID=StudentID"`
//	}
//
//	func (Student) SheetName() string { return "Students" }
//
// Untagged fields are ignored. Resolution builds the accessors of every
// column and link once; the resulting Schema is immutable and cached per type.
package schema

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

// Sheeter is implemented by model types to designate their sheet.
type Sheeter interface {
	SheetName() string
}

// Schema is the resolved tabular layout of one model type.
type Schema struct {
	// Type is the struct type described by the schema.
	Type reflect.Type
	// Sheet is the target sheet name.
	Sheet string
	// Columns are ordered by field declaration.
	Columns []*Column
	// Links are the declared child collections, in declaration order.
	Links []*Link
	// Key is the column tagged `key`, if any.
	Key *Column
	// Image is the first image column, if any.
	Image *Column

	byField map[string]*Column
}

// New allocates a zero entity and returns it as a pointer to Type.
func (s *Schema) New() any {
	return reflect.New(s.Type).Interface()
}

// Column returns the column mapped from the named Go field.
func (s *Schema) Column(field string) *Column {
	return s.byField[field]
}

// Headers returns the column headers in declaration order.
func (s *Schema) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Walk returns s and every schema reachable through links, depth-first in
// declaration order, each exactly once.
func (s *Schema) Walk() []*Schema {
	var out []*Schema
	seen := make(map[*Schema]bool)
	var visit func(*Schema)
	visit = func(n *Schema) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, l := range n.Links {
			visit(l.Child)
		}
	}
	visit(s)
	return out
}

// Entities converts a T, *T, []T, []*T or [N]T value into entity pointers.
// Slice elements are addressed in place so that key stamping writes through.
func (s *Schema) Entities(collection any) ([]any, error) {
	v := reflect.ValueOf(collection)
	if !v.IsValid() {
		return nil, nil
	}
	switch {
	case v.Type() == s.Type:
		p := reflect.New(s.Type)
		p.Elem().Set(v)
		return []any{p.Interface()}, nil
	case v.Kind() == reflect.Pointer && v.Type().Elem() == s.Type:
		if v.IsNil() {
			return nil, nil
		}
		return []any{v.Interface()}, nil
	case v.Kind() == reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a collection of %s, got %s", s.Type, v.Type())
	}

	out := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		e := v.Index(i)
		switch {
		case e.Type() == s.Type && e.CanAddr():
			out = append(out, e.Addr().Interface())
		case e.Type() == s.Type:
			p := reflect.New(s.Type)
			p.Elem().Set(e)
			out = append(out, p.Interface())
		case e.Kind() == reflect.Pointer && e.Type().Elem() == s.Type:
			if !e.IsNil() {
				out = append(out, e.Interface())
			}
		default:
			return nil, fmt.Errorf("expected a collection of %s, got element %s", s.Type, e.Type())
		}
	}
	return out, nil
}

// Column describes one mapped field.
type Column struct {
	// Index is the zero-based position of the column in the sheet.
	Index int
	// Field is the Go field name.
	Field string
	// Header is the header cell text.
	Header string
	// Type is the semantic value type.
	Type ValueType
	// Format is the display number format.
	Format string
	// Width is the column width in characters (0 keeps the backend default).
	Width float64
	// Key marks the entity's own identity column.
	Key bool
	// Image marks a binary column rendered as an embedded picture.
	Image bool
	// Presentation holds the header, static and conditional styling.
	Presentation style.Spec

	index []int
	conv  converter
}

// Get returns the literal value of the column for entity, a pointer to the
// schema's struct type.
func (c *Column) Get(entity any) any {
	return literalOf(c.field(entity))
}

// Set converts raw and assigns it to the column's field of entity.
func (c *Column) Set(entity any, raw any) error {
	return c.conv(c.field(entity), raw)
}

func (c *Column) field(entity any) reflect.Value {
	return reflect.ValueOf(entity).Elem().FieldByIndex(c.index)
}

// Link is a declared parent-to-child collection. The child's ChildKey value
// equals its parent's ParentKey value.
type Link struct {
	// Field is the parent's collection field name.
	Field     string
	Parent    *Schema
	Child     *Schema
	ParentKey *Column
	ChildKey  *Column

	index   []int
	kind    reflect.Kind
	elemPtr bool
	keyConv converter
}

// Children returns the child entities held by parent, as pointers. Map
// collections are returned in ascending map key order.
func (l *Link) Children(parent any) []any {
	fv := reflect.ValueOf(parent).Elem().FieldByIndex(l.index)
	switch l.kind {
	case reflect.Map:
		keys := fv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return compareLiterals(literalOf(a), literalOf(b))
		})
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			if e := fv.MapIndex(k); !e.IsNil() {
				out = append(out, e.Interface())
			}
		}
		return out
	default:
		out := make([]any, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			e := fv.Index(i)
			if l.elemPtr {
				if !e.IsNil() {
					out = append(out, e.Interface())
				}
				continue
			}
			out = append(out, e.Addr().Interface())
		}
		return out
	}
}

// Append adds child to parent's collection. Value-typed slices receive a
// copy of child, so child must be complete before it is appended.
func (l *Link) Append(parent, child any) error {
	fv := reflect.ValueOf(parent).Elem().FieldByIndex(l.index)
	cv := reflect.ValueOf(child)
	switch l.kind {
	case reflect.Map:
		if fv.IsNil() {
			fv.Set(reflect.MakeMap(fv.Type()))
		}
		key := reflect.New(fv.Type().Key()).Elem()
		if err := l.keyConv(key, l.Child.Key.Get(child)); err != nil {
			return fmt.Errorf("map key for %s.%s: %w", l.Parent.Type.Name(), l.Field, err)
		}
		fv.SetMapIndex(key, cv)
	default:
		if !l.elemPtr {
			cv = cv.Elem()
		}
		fv.Set(reflect.Append(fv, cv))
	}
	return nil
}

// compareLiterals orders numbers numerically and everything else by its
// printed form.
func compareLiterals(a, b any) int {
	fa, errA := toFloat(a)
	fb, errB := toFloat(b)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
