package xlsx

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// save writes doc into a temp file and reopens it with excelize.
func save(t *testing.T, doc backend.Document) *excelize.File {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := os.Create(tmpFile)
	require.NoError(t, err)
	_, err = doc.WriteTo(out)
	require.NoError(t, err)
	require.NoError(t, out.Close())
	require.NoError(t, doc.Close())

	f, err := excelize.OpenFile(tmpFile)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBuffered_ValuesStylesComments(t *testing.T) {
	doc, err := New(Options{CommentAuthor: "tester"}).Create(backend.Buffered, nil)
	require.NoError(t, err)
	assert.Equal(t, backend.Capabilities{Comments: true, Images: true}, doc.Capabilities())

	require.NoError(t, doc.BeginSheet("Student", []backend.Column{{Header: "Id", Width: 12}, {Header: "Name"}}))
	require.NoError(t, doc.AppendRow([]backend.Cell{
		{Value: "Id", Style: models.Style{Bold: true}},
		{Value: "Name", Style: models.Style{Bold: true}},
	}))
	require.NoError(t, doc.AppendRow([]backend.Cell{
		{Value: int64(1)},
		{Value: "Ana", Style: models.Style{FontColor: "#FF0000"}, Comment: "needs review", Status: models.StatusError},
	}))

	f := save(t, doc)
	assert.Equal(t, []string{"Student"}, f.GetSheetList())

	v, err := f.GetCellValue("Student", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", v)

	width, err := f.GetColWidth("Student", "A")
	require.NoError(t, err)
	assert.Equal(t, 12.0, width)

	id, err := f.GetCellStyle("Student", "A1")
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, st.Font)
	assert.True(t, st.Font.Bold)

	id, err = f.GetCellStyle("Student", "B2")
	require.NoError(t, err)
	st, err = f.GetStyle(id)
	require.NoError(t, err)
	require.NotEmpty(t, st.Border)
	assert.Equal(t, "left", st.Border[0].Type)
	assert.Contains(t, st.Border[0].Color, "FF0000")

	comments, err := f.GetComments("Student")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "B2", comments[0].Cell)
	assert.Equal(t, "tester", comments[0].Author)
}

func TestBuffered_SharedStyleIDs(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	s := newStyles(f)

	a, err := s.id(models.Style{Bold: true}, models.StatusNone)
	require.NoError(t, err)
	b, err := s.id(models.Style{Bold: true}, models.StatusNone)
	require.NoError(t, err)
	c, err := s.id(models.Style{Bold: true}, models.StatusWarning)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBuffered_ImagesRoundTrip(t *testing.T) {
	b := New(Options{})
	doc, err := b.Create(backend.Buffered, nil)
	require.NoError(t, err)

	pic := tinyPNG(t)
	require.NoError(t, doc.BeginSheet("Photos", nil))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: "Name"}, {Value: "Photo"}}))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: "Ana"}, {Image: pic}}))

	var buf bytes.Buffer
	_, err = doc.WriteTo(&buf)
	require.NoError(t, err)

	wb, err := b.Open(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.Rows("Photos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[1].Value(1))
	assert.Equal(t, pic, rows[1].Image(2))
}

func TestStreaming_ForwardOnly(t *testing.T) {
	doc, err := New(Options{}).Create(backend.Streaming, nil)
	require.NoError(t, err)
	assert.Equal(t, backend.Capabilities{}, doc.Capabilities())

	require.NoError(t, doc.BeginSheet("Student", []backend.Column{{Header: "Id", Width: 10}}))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: "Id", Style: models.Style{Bold: true}}}))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: 1}}))
	require.NoError(t, doc.BeginSheet("Course", nil))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: "Name"}}))

	err = doc.BeginSheet("Student", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrSheetClosed))

	f := save(t, doc)
	assert.Equal(t, []string{"Student", "Course"}, f.GetSheetList())
	v, err := f.GetCellValue("Student", "A2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestStreaming_RejectsTemplate(t *testing.T) {
	_, err := New(Options{}).Create(backend.Streaming, bytes.NewReader(nil))
	assert.True(t, errors.Is(err, backend.ErrTemplateStreaming))
}

func TestTemplate_KeepsSheetsAndStyles(t *testing.T) {
	tmpl := excelize.NewFile()
	defer tmpl.Close()
	require.NoError(t, tmpl.SetSheetName("Sheet1", "Notes"))
	require.NoError(t, tmpl.SetCellValue("Notes", "A1", "keep me"))
	_, err := tmpl.NewSheet("Student")
	require.NoError(t, err)
	fill, err := tmpl.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	require.NoError(t, err)
	require.NoError(t, tmpl.SetCellStyle("Student", "A1", "B1", fill))
	var src bytes.Buffer
	_, err = tmpl.WriteTo(&src)
	require.NoError(t, err)

	doc, err := New(Options{}).Create(backend.Buffered, &src)
	require.NoError(t, err)
	require.NoError(t, doc.BeginSheet("Student", nil))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: "Id"}, {Value: "Name"}}))
	require.NoError(t, doc.AppendRow([]backend.Cell{{Value: int64(1)}, {Value: "Ana"}}))

	f := save(t, doc)
	assert.Equal(t, []string{"Notes", "Student"}, f.GetSheetList())
	v, err := f.GetCellValue("Notes", "A1")
	require.NoError(t, err)
	assert.Equal(t, "keep me", v)

	id, err := f.GetCellStyle("Student", "A1")
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotEmpty(t, st.Fill.Color)
	assert.Contains(t, st.Fill.Color[0], "DDEBF7")
}

func TestWorkbook_RowsAndDump(t *testing.T) {
	// Create a temporary Excel file for testing
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "B2", "Header1")
	f.SetCellValue(sheetName, "C2", "Header2")
	f.SetCellValue(sheetName, "B3", 100)
	f.SetCellValue(sheetName, "C3", 200.5)
	f.SetCellValue(sheetName, "B5", "007")

	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	in, err := os.Open(tmpFile)
	require.NoError(t, err)
	defer in.Close()

	wb, err := New(Options{}).Open(in)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.Rows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].R)
	assert.Equal(t, "Header1", rows[0].Value(2))
	assert.Equal(t, "100", rows[1].Value(2))
	assert.Equal(t, "007", rows[2].Value(2))

	_, err = wb.Rows("Missing")
	assert.True(t, errors.Is(err, backend.ErrSheetNotFound))

	data, err := wb.(*Workbook).Dump("test.xlsx")
	require.NoError(t, err)
	sheet := data.Sheets[sheetName]
	assert.Equal(t, "B2:C5", sheet.UsedRange)
	if sheet.Rows[1].C["2"] != int64(100) {
		t.Errorf("Expected int64(100), got %v (type: %T)", sheet.Rows[1].C["2"], sheet.Rows[1].C["2"])
	}
	if sheet.Rows[1].C["3"] != 200.5 {
		t.Errorf("Expected 200.5, got %v", sheet.Rows[1].C["3"])
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := parseValue(tt.input); got != tt.expected {
			t.Errorf("parseValue(%q) = %v (%T), expected %v (%T)", tt.input, got, got, tt.expected, tt.expected)
		}
	}
}

func TestUsedRange(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{"empty", nil, ""},
		{"blank cells", [][]string{{"", ""}}, ""},
		{"single", [][]string{{"x"}}, "A1:A1"},
		{"offset", [][]string{{}, {"", "a", ""}, {"", "", "", "b"}}, "B2:D3"},
		{"ragged", [][]string{{"", "", "c"}, {"d"}}, "A1:C2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsedRange(tt.rows); got != tt.expected {
				t.Errorf("UsedRange() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, ".png", imageExtension([]byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, ".jpg", imageExtension([]byte("\xff\xd8\xff\xe0")))
	assert.Equal(t, ".gif", imageExtension([]byte("GIF89a")))
}
