package schema

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

var sheeterType = reflect.TypeOf((*Sheeter)(nil)).Elem()

// Resolver introspects model types into schemas and caches the results.
type Resolver struct {
	cache *Cache
	rules *Registry
}

// NewResolver returns a resolver with its own cache. A nil registry is
// replaced by an empty one.
func NewResolver(rules *Registry) *Resolver {
	if rules == nil {
		rules = NewRegistry()
	}
	return &Resolver{
		cache: NewCache(),
		rules: rules,
	}
}

var defaultResolver = NewResolver(nil)

// Default returns the process-wide resolver used when callers inject none.
func Default() *Resolver {
	return defaultResolver
}

// Rules returns the registry consulted for `rules` tags.
func (r *Resolver) Rules() *Registry {
	return r.rules
}

// Cache returns the resolver's schema cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Reset clears every cached schema.
func (r *Resolver) Reset() {
	r.cache.Reset()
}

// ResolveValue resolves the model type of v, which may be a T, *T, []T or []*T.
func (r *Resolver) ResolveValue(v any) (*Schema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, NewError(ErrCodeNotStruct, "<nil>", "", "cannot resolve a nil value")
	}
	return r.Resolve(t)
}

// Resolve returns the schema of t. Pointer, slice and array wrappers are
// stripped first. Repeated calls return the same instance.
func (r *Resolver) Resolve(t reflect.Type) (*Schema, error) {
	t = modelType(t)
	if s, ok := r.cache.Load(t); ok {
		return s, nil
	}

	building := make(map[reflect.Type]*Schema)
	s, err := r.build(t, building)
	if err != nil {
		return nil, err
	}
	if err := checkSheets(s); err != nil {
		return nil, err
	}
	for bt, bs := range building {
		if bt != t {
			r.cache.Store(bt, bs)
		}
	}
	return r.cache.Store(t, s), nil
}

func modelType(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}
}

type pendingLink struct {
	field reflect.StructField
	spec  string
}

func (r *Resolver) build(t reflect.Type, building map[reflect.Type]*Schema) (*Schema, error) {
	if s, ok := r.cache.Load(t); ok {
		return s, nil
	}
	if s, ok := building[t]; ok {
		return s, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, NewError(ErrCodeNotStruct, t.String(), "", "model must be a struct, got %s", t.Kind())
	}

	name, err := sheetName(t)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Type:    t,
		Sheet:   name,
		byField: make(map[string]*Column),
	}
	building[t] = s

	headers := make(map[string]string)
	var links []pendingLink
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() || throughPointer(t, f.Index) {
			continue
		}
		if spec, ok := f.Tag.Lookup("children"); ok {
			links = append(links, pendingLink{field: f, spec: spec})
			continue
		}
		tag, ok := f.Tag.Lookup("sheet")
		if !ok || tag == "-" {
			continue
		}

		col, err := r.column(t, f, tag)
		if err != nil {
			return nil, err
		}
		key := NormalizeHeader(col.Header)
		if prev, dup := headers[key]; dup {
			return nil, NewError(ErrCodeDuplicateColumn, t.Name(), f.Name, "header %q collides with field %s", col.Header, prev)
		}
		headers[key] = f.Name

		col.Index = len(s.Columns)
		s.Columns = append(s.Columns, col)
		s.byField[f.Name] = col
		if col.Key {
			if s.Key != nil {
				return nil, NewError(ErrCodeMalformedTag, t.Name(), f.Name, "key already declared on field %s", s.Key.Field)
			}
			s.Key = col
		}
		if col.Image && s.Image == nil {
			s.Image = col
		}
	}

	for _, pl := range links {
		if err := r.link(s, pl, building); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func sheetName(t reflect.Type) (string, error) {
	if !t.Implements(sheeterType) && !reflect.PointerTo(t).Implements(sheeterType) {
		return "", NewError(ErrCodeNoSheet, t.Name(), "", "type does not implement SheetName() string")
	}
	name := reflect.New(t).Interface().(Sheeter).SheetName()
	if strings.TrimSpace(name) == "" {
		return "", NewError(ErrCodeNoSheet, t.Name(), "", "SheetName returned an empty name")
	}
	return name, nil
}

// throughPointer reports whether a promoted field is reached through an
// embedded pointer, which could be nil.
func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}
		t = f.Type
	}
	return false
}

func (r *Resolver) column(t reflect.Type, f reflect.StructField, tag string) (*Column, error) {
	parts := strings.Split(tag, ",")
	col := &Column{
		Field:  f.Name,
		Header: strings.TrimSpace(parts[0]),
		index:  f.Index,
	}
	if col.Header == "" {
		col.Header = f.Name
	}

	var declared *ValueType
	for _, opt := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "":
		case "key":
			col.Key = true
		case "image":
			col.Image = true
		case "type":
			vt, ok := ParseValueType(val)
			if !ok {
				return nil, NewError(ErrCodeMalformedTag, t.Name(), f.Name, "unknown value type %q", val)
			}
			declared = &vt
		case "width":
			w, err := strconv.ParseFloat(val, 64)
			if err != nil || w <= 0 {
				return nil, NewError(ErrCodeMalformedTag, t.Name(), f.Name, "invalid width %q", val)
			}
			col.Width = w
		default:
			return nil, NewError(ErrCodeMalformedTag, t.Name(), f.Name, "unknown option %q", key)
		}
	}

	inferred, ok := inferValueType(f.Type)
	if !ok {
		return nil, NewError(ErrCodeUnsupportedType, t.Name(), f.Name, "cannot map field of type %s", f.Type)
	}
	if inferred == TypeBinary && !col.Image {
		return nil, NewError(ErrCodeUnsupportedType, t.Name(), f.Name, "binary fields must be declared as image columns")
	}
	if col.Image && inferred != TypeBinary {
		return nil, NewError(ErrCodeUnsupportedType, t.Name(), f.Name, "image columns must be []byte, got %s", f.Type)
	}
	col.Type = inferred
	if declared != nil {
		if !compatible(*declared, inferred, f.Type) {
			return nil, NewError(ErrCodeUnsupportedType, t.Name(), f.Name, "type %s cannot hold a %s field", *declared, f.Type)
		}
		col.Type = *declared
	}

	conv, err := converterFor(f.Type)
	if err != nil {
		return nil, NewError(ErrCodeUnsupportedType, t.Name(), f.Name, "%v", err)
	}
	col.conv = conv

	col.Format = f.Tag.Get("format")
	if col.Format == "" {
		col.Format = col.Type.DefaultFormat()
	}

	static, err := style.ParseStyle(f.Tag.Get("style"))
	if err != nil {
		return nil, NewError(ErrCodeMalformedTag, t.Name(), f.Name, "style: %v", err)
	}
	static.NumFmt = col.Format
	col.Presentation.Static = static

	col.Presentation.Header = models.Style{Bold: true}
	if h, ok := f.Tag.Lookup("header"); ok {
		hs, err := style.ParseStyle(h)
		if err != nil {
			return nil, NewError(ErrCodeMalformedTag, t.Name(), f.Name, "header: %v", err)
		}
		col.Presentation.Header = hs
	}

	if err := r.rulesFor(t, f, &col.Presentation); err != nil {
		return nil, err
	}
	return col, nil
}

// rulesFor binds the rules named in a `rules:"style=a,b comment=c status=d"` tag.
func (r *Resolver) rulesFor(t reflect.Type, f reflect.StructField, spec *style.Spec) error {
	for _, tok := range strings.Fields(f.Tag.Get("rules")) {
		kind, names, ok := strings.Cut(tok, "=")
		if !ok || names == "" {
			return NewError(ErrCodeMalformedTag, t.Name(), f.Name, "malformed rule reference %q", tok)
		}
		for _, name := range strings.Split(names, ",") {
			switch kind {
			case "style":
				rule, ok := r.rules.styleRule(name)
				if !ok {
					return NewError(ErrCodeUnknownRule, t.Name(), f.Name, "style rule %q is not registered", name)
				}
				spec.Styles = append(spec.Styles, style.Named[style.StyleRule]{Name: name, Rule: rule})
			case "comment":
				rule, ok := r.rules.commentRule(name)
				if !ok {
					return NewError(ErrCodeUnknownRule, t.Name(), f.Name, "comment rule %q is not registered", name)
				}
				if spec.Comment != nil {
					return NewError(ErrCodeMalformedTag, t.Name(), f.Name, "only one comment rule is allowed")
				}
				spec.Comment = &style.Named[style.CommentRule]{Name: name, Rule: rule}
			case "status":
				rule, ok := r.rules.statusRule(name)
				if !ok {
					return NewError(ErrCodeUnknownRule, t.Name(), f.Name, "status rule %q is not registered", name)
				}
				if spec.Status != nil {
					return NewError(ErrCodeMalformedTag, t.Name(), f.Name, "only one status rule is allowed")
				}
				spec.Status = &style.Named[style.StatusRule]{Name: name, Rule: rule}
			default:
				return NewError(ErrCodeMalformedTag, t.Name(), f.Name, "unknown rule kind %q", kind)
			}
		}
	}
	return nil
}

func (r *Resolver) link(parent *Schema, pl pendingLink, building map[reflect.Type]*Schema) error {
	f := pl.field
	tn := parent.Type.Name()
	pk, ck, ok := strings.Cut(pl.spec, "=")
	pk, ck = strings.TrimSpace(pk), strings.TrimSpace(ck)
	if !ok || pk == "" || ck == "" {
		return NewError(ErrCodeMalformedTag, tn, f.Name, "children tag must be ParentKey=ChildKey, got %q", pl.spec)
	}

	l := &Link{
		Field:  f.Name,
		Parent: parent,
		index:  f.Index,
		kind:   f.Type.Kind(),
	}

	var elem reflect.Type
	switch f.Type.Kind() {
	case reflect.Slice:
		elem = f.Type.Elem()
	case reflect.Map:
		elem = f.Type.Elem()
		if elem.Kind() != reflect.Pointer {
			return NewError(ErrCodeUnsupportedType, tn, f.Name, "map children must hold pointers, got %s", f.Type)
		}
	default:
		return NewError(ErrCodeUnsupportedType, tn, f.Name, "children must be a slice or map, got %s", f.Type)
	}
	if elem.Kind() == reflect.Pointer {
		l.elemPtr = true
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return NewError(ErrCodeUnsupportedType, tn, f.Name, "children must be structs, got %s", elem)
	}

	child, err := r.build(elem, building)
	if err != nil {
		return err
	}
	l.Child = child

	if l.ParentKey = parent.Column(pk); l.ParentKey == nil {
		return NewError(ErrCodeMissingKey, tn, f.Name, "parent key field %s is not a mapped column", pk)
	}
	if l.ChildKey = child.Column(ck); l.ChildKey == nil {
		return NewError(ErrCodeMissingKey, tn, f.Name, "child type %s has no mapped key field %s", child.Type.Name(), ck)
	}
	if l.kind == reflect.Map {
		if child.Key == nil {
			return NewError(ErrCodeMissingKey, tn, f.Name, "map children need a key column on %s", child.Type.Name())
		}
		if l.keyConv, err = converterFor(f.Type.Key()); err != nil {
			return NewError(ErrCodeUnsupportedType, tn, f.Name, "%v", err)
		}
	}

	parent.Links = append(parent.Links, l)
	return nil
}

// checkSheets rejects two distinct types mapped to the same sheet.
func checkSheets(root *Schema) error {
	owners := make(map[string]reflect.Type)
	for _, s := range root.Walk() {
		if prev, ok := owners[s.Sheet]; ok && prev != s.Type {
			return NewError(ErrCodeDuplicateSheet, s.Type.Name(), "", "sheet %q is already used by %s", s.Sheet, prev.Name())
		}
		owners[s.Sheet] = s.Type
	}
	return nil
}
