package xlsx

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

// statusColors maps validation statuses to the left border color of a cell.
var statusColors = map[models.Status]string{
	models.StatusSuccess: "00B050",
	models.StatusInfo:    "0070C0",
	models.StatusWarning: "FFC000",
	models.StatusError:   "FF0000",
}

type styleKey struct {
	style  models.Style
	status models.Status
}

// styles caches excelize style ids per distinct presentation.
type styles struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyles(f *excelize.File) *styles {
	return &styles{f: f, ids: make(map[styleKey]int)}
}

// id returns the style id for a presentation, creating it on first use.
func (s *styles) id(st models.Style, status models.Status) (int, error) {
	key := styleKey{style: st, status: status}
	if id, ok := s.ids[key]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(toExcel(st, status))
	if err != nil {
		return 0, err
	}
	s.ids[key] = id
	return id, nil
}

func toExcel(st models.Style, status models.Status) *excelize.Style {
	es := &excelize.Style{}
	if st.Bold || st.Italic || st.FontSize > 0 || st.FontColor != "" {
		es.Font = &excelize.Font{
			Bold:   st.Bold,
			Italic: st.Italic,
			Size:   st.FontSize,
			Color:  hex(st.FontColor),
		}
	}
	if st.Background != "" {
		es.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex(st.Background)}}
	}
	if st.HAlign != "" || st.Wrap {
		es.Alignment = &excelize.Alignment{Horizontal: st.HAlign, WrapText: st.Wrap}
	}
	if st.NumFmt != "" {
		numFmt := st.NumFmt
		es.CustomNumFmt = &numFmt
	}
	if c, ok := statusColors[status]; ok {
		es.Border = []excelize.Border{{Type: "left", Color: c, Style: 5}}
	}
	return es
}

func hex(color string) string {
	return strings.TrimPrefix(color, "#")
}
