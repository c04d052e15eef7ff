package schema

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

type course struct {
	Name      string `sheet:"Name"`
	StudentID int    `sheet:"Student Id"`
}

func (course) SheetName() string { return "Course" }

type student struct {
	ID      int      `sheet:"Id,key,width=8"`
	Name    string   `sheet:"Name" style:"bold color=#333333"`
	Photo   []byte   // unmapped auxiliary payload
	Notes   string   `sheet:"-"`
	Courses []course `children:"ID=StudentID"`
}

func (student) SheetName() string { return "Student" }

type lesson struct {
	Code     string `sheet:"Code,key"`
	CourseID int    `sheet:"Course"`
}

func (*lesson) SheetName() string { return "Lesson" }

type catalog struct {
	ID      int                `sheet:"Id"`
	Lessons map[string]*lesson `children:"ID=CourseID"`
}

func (catalog) SheetName() string { return "Catalog" }

type typed struct {
	Amount   float64    `sheet:"Amount,type=currency"`
	Ratio    float64    `sheet:"Ratio,type=percentage" format:"0%"`
	Born     time.Time  `sheet:"Born,type=date"`
	Seen     *time.Time `sheet:"Seen"`
	Ref      uuid.UUID  `sheet:"Ref"`
	Active   bool       `sheet:"Active"`
	Count    *int       `sheet:"Count"`
	Portrait []byte     `sheet:"Portrait,image"`
}

func (typed) SheetName() string { return "Typed" }

type embeddedBase struct {
	Created string `sheet:"Created"`
}

type withEmbedded struct {
	embeddedBase
	Title string `sheet:"Title"`
}

func (withEmbedded) SheetName() string { return "Embedded" }

func TestResolve_ColumnsInDeclarationOrder(t *testing.T) {
	r := NewResolver(nil)
	s, err := r.Resolve(reflect.TypeOf(student{}))
	require.NoError(t, err)

	assert.Equal(t, "Student", s.Sheet)
	assert.Equal(t, []string{"Id", "Name"}, s.Headers())
	for i, c := range s.Columns {
		assert.Equal(t, i, c.Index)
	}
	require.NotNil(t, s.Key)
	assert.Equal(t, "ID", s.Key.Field)
	assert.Equal(t, 8.0, s.Key.Width)
	assert.Equal(t, models.Style{Bold: true, FontColor: "#333333"}, s.Column("Name").Presentation.Static)
	assert.Equal(t, models.Style{Bold: true}, s.Column("Name").Presentation.Header)
	assert.Nil(t, s.Column("Photo"))
	assert.Nil(t, s.Column("Notes"))

	require.Len(t, s.Links, 1)
	l := s.Links[0]
	assert.Equal(t, "Courses", l.Field)
	assert.Equal(t, "Course", l.Child.Sheet)
	assert.Equal(t, "ID", l.ParentKey.Field)
	assert.Equal(t, "StudentID", l.ChildKey.Field)
}

func TestResolve_Deterministic(t *testing.T) {
	first, err := NewResolver(nil).Resolve(reflect.TypeOf(student{}))
	require.NoError(t, err)
	second, err := NewResolver(nil).Resolve(reflect.TypeOf(student{}))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Headers(), second.Headers())
	for i := range first.Columns {
		assert.Equal(t, first.Columns[i].Field, second.Columns[i].Field)
		assert.Equal(t, first.Columns[i].Index, second.Columns[i].Index)
	}
}

func TestResolve_CachedInstanceIsReused(t *testing.T) {
	r := NewResolver(nil)
	a, err := r.Resolve(reflect.TypeOf(student{}))
	require.NoError(t, err)
	b, err := r.ResolveValue([]*student{})
	require.NoError(t, err)
	assert.Same(t, a, b)

	// the child schema is cached alongside its parent
	c, err := r.Resolve(reflect.TypeOf(course{}))
	require.NoError(t, err)
	assert.Same(t, a.Links[0].Child, c)
	assert.Equal(t, 2, r.Cache().Len())

	r.Reset()
	assert.Equal(t, 0, r.Cache().Len())
	d, err := r.Resolve(reflect.TypeOf(student{}))
	require.NoError(t, err)
	assert.NotSame(t, a, d)
}

func TestResolve_ConcurrentFirstResolution(t *testing.T) {
	r := NewResolver(nil)
	const workers = 16
	results := make([]*Schema, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.Resolve(reflect.TypeOf(student{}))
			if err == nil {
				results[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestResolve_ValueTypesAndFormats(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(typed{}))
	require.NoError(t, err)

	tests := []struct {
		field  string
		typ    ValueType
		format string
	}{
		{"Amount", TypeCurrency, `"$"#,##0.00`},
		{"Ratio", TypePercentage, "0%"},
		{"Born", TypeDate, "yyyy-mm-dd"},
		{"Seen", TypeDateTime, "yyyy-mm-dd hh:mm:ss"},
		{"Ref", TypeText, ""},
		{"Active", TypeBoolean, ""},
		{"Count", TypePrimitive, ""},
		{"Portrait", TypeBinary, ""},
	}
	for _, tt := range tests {
		c := s.Column(tt.field)
		require.NotNil(t, c, tt.field)
		assert.Equal(t, tt.typ, c.Type, tt.field)
		assert.Equal(t, tt.format, c.Format, tt.field)
		assert.Equal(t, tt.format, c.Presentation.Static.NumFmt, tt.field)
	}
	require.NotNil(t, s.Image)
	assert.Equal(t, "Portrait", s.Image.Field)
}

func TestResolve_PromotedFields(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(withEmbedded{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Created", "Title"}, s.Headers())

	e := s.New()
	require.NoError(t, s.Column("Created").Set(e, "today"))
	assert.Equal(t, "today", e.(*withEmbedded).Created)
}

func TestResolve_Rules(t *testing.T) {
	reg := NewRegistry().
		Style("red", style.When(func(any) bool { return true }, models.Style{FontColor: "#FF0000"})).
		Comment("note", style.CommentWhen(func(any) bool { return true }, "check")).
		Status("pass", style.StatusWhen(func(any) bool { return true }, models.StatusSuccess, models.StatusError))

	s, err := NewResolver(reg).Resolve(reflect.TypeOf(scoredSheet{}))
	require.NoError(t, err)
	spec := s.Column("Score").Presentation
	require.Len(t, spec.Styles, 1)
	assert.Equal(t, "red", spec.Styles[0].Name)
	require.NotNil(t, spec.Comment)
	assert.Equal(t, "note", spec.Comment.Name)
	require.NotNil(t, spec.Status)
	assert.Equal(t, "pass", spec.Status.Name)
}

type scoredSheet struct {
	Score int `sheet:"Score" rules:"style=red comment=note status=pass"`
}

func (scoredSheet) SheetName() string { return "Scores" }

type noSheet struct {
	ID int `sheet:"Id"`
}

type dupColumns struct {
	A int `sheet:"Same"`
	B int `sheet:"Same"`
}

func (dupColumns) SheetName() string { return "Dup" }

type foldedColumns struct {
	A string `sheet:"Name"`
	B string `sheet:" ＮＡＭＥ"`
}

func (foldedColumns) SheetName() string { return "Folded" }

type unsupported struct {
	Tags map[string]string `sheet:"Tags"`
}

func (unsupported) SheetName() string { return "Unsupported" }

type rawBytes struct {
	Blob []byte `sheet:"Blob"`
}

func (rawBytes) SheetName() string { return "Raw" }

type badType struct {
	Name string `sheet:"Name,type=currency"`
}

func (badType) SheetName() string { return "BadType" }

type badOption struct {
	Name string `sheet:"Name,frobnicate"`
}

func (badOption) SheetName() string { return "BadOption" }

type unknownRule struct {
	Name string `sheet:"Name" rules:"style=missing"`
}

func (unknownRule) SheetName() string { return "UnknownRule" }

type orphanLinkChild struct {
	Name string `sheet:"Name"`
}

func (orphanLinkChild) SheetName() string { return "OrphanChild" }

type missingChildKey struct {
	ID       int               `sheet:"Id"`
	Children []orphanLinkChild `children:"ID=ParentID"`
}

func (missingChildKey) SheetName() string { return "MissingChildKey" }

type missingParentKey struct {
	Children []course `children:"ID=StudentID"`
}

func (missingParentKey) SheetName() string { return "MissingParentKey" }

type malformedLink struct {
	ID       int      `sheet:"Id"`
	Children []course `children:"ID"`
}

func (malformedLink) SheetName() string { return "MalformedLink" }

type sameSheetChild struct {
	StudentID int `sheet:"Student Id"`
}

func (sameSheetChild) SheetName() string { return "Student" }

type duplicateSheet struct {
	ID       int              `sheet:"Id"`
	Children []sameSheetChild `children:"ID=StudentID"`
}

func (duplicateSheet) SheetName() string { return "Student" }

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		code ErrorCode
	}{
		{"not a struct", reflect.TypeOf(0), ErrCodeNotStruct},
		{"missing sheet", reflect.TypeOf(noSheet{}), ErrCodeNoSheet},
		{"duplicate column", reflect.TypeOf(dupColumns{}), ErrCodeDuplicateColumn},
		{"column equal after folding", reflect.TypeOf(foldedColumns{}), ErrCodeDuplicateColumn},
		{"unsupported type", reflect.TypeOf(unsupported{}), ErrCodeUnsupportedType},
		{"binary without image", reflect.TypeOf(rawBytes{}), ErrCodeUnsupportedType},
		{"incompatible declared type", reflect.TypeOf(badType{}), ErrCodeUnsupportedType},
		{"unknown option", reflect.TypeOf(badOption{}), ErrCodeMalformedTag},
		{"unknown rule", reflect.TypeOf(unknownRule{}), ErrCodeUnknownRule},
		{"missing child key", reflect.TypeOf(missingChildKey{}), ErrCodeMissingKey},
		{"missing parent key", reflect.TypeOf(missingParentKey{}), ErrCodeMissingKey},
		{"malformed link", reflect.TypeOf(malformedLink{}), ErrCodeMalformedTag},
		{"duplicate sheet", reflect.TypeOf(duplicateSheet{}), ErrCodeDuplicateSheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(nil)
			_, err := r.Resolve(tt.typ)
			require.Error(t, err)
			assert.True(t, IsError(err, tt.code), "expected %s, got %v", tt.code, err)
			assert.Equal(t, 0, r.Cache().Len())
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Name", "name"},
		{"  NAME ", "name"},
		{"ＮＡＭＥ", "name"},
		{"Student Id", "student id"},
		{"Straße", "strasse"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), tt.in)
	}
}

func TestLink_MapChildrenSortedByKey(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(catalog{}))
	require.NoError(t, err)
	l := s.Links[0]

	c := &catalog{ID: 3, Lessons: map[string]*lesson{
		"c": {Code: "c"},
		"a": {Code: "a"},
		"b": {Code: "b"},
	}}
	var codes []string
	for _, child := range l.Children(c) {
		codes = append(codes, child.(*lesson).Code)
	}
	assert.Equal(t, []string{"a", "b", "c"}, codes)

	fresh := &catalog{}
	require.NoError(t, l.Append(fresh, &lesson{Code: "z", CourseID: 3}))
	require.Contains(t, fresh.Lessons, "z")
	assert.Equal(t, 3, fresh.Lessons["z"].CourseID)
}

func TestLink_SliceChildrenAddressInPlace(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(student{}))
	require.NoError(t, err)
	l := s.Links[0]

	st := &student{ID: 1, Courses: []course{{Name: "Math"}, {Name: "Art"}}}
	children := l.Children(st)
	require.Len(t, children, 2)
	require.NoError(t, l.ChildKey.Set(children[1], int64(1)))
	assert.Equal(t, 1, st.Courses[1].StudentID)

	require.NoError(t, l.Append(st, &course{Name: "Music"}))
	assert.Len(t, st.Courses, 3)
	assert.Equal(t, "Music", st.Courses[2].Name)
}

func TestSchema_Entities(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(course{}))
	require.NoError(t, err)

	values := []course{{Name: "a"}, {Name: "b"}}
	ents, err := s.Entities(values)
	require.NoError(t, err)
	require.Len(t, ents, 2)
	ents[0].(*course).Name = "changed"
	assert.Equal(t, "changed", values[0].Name)

	ptrs := []*course{{Name: "x"}, nil, {Name: "y"}}
	ents, err = s.Entities(ptrs)
	require.NoError(t, err)
	assert.Len(t, ents, 2)

	ents, err = s.Entities(course{Name: "single"})
	require.NoError(t, err)
	assert.Len(t, ents, 1)

	_, err = s.Entities([]student{{}})
	assert.Error(t, err)
}
