package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
)

// alignments accepted by the align= attribute.
var alignments = map[string]bool{
	"left":    true,
	"center":  true,
	"right":   true,
	"justify": true,
	"fill":    true,
}

// ParseStyle parses a space separated style declaration such as
//
//	color=#FF0000 bg=#FFF2CC bold italic size=12 align=center wrap
func ParseStyle(s string) (models.Style, error) {
	var st models.Style
	for _, tok := range strings.Fields(s) {
		key, val, hasVal := strings.Cut(tok, "=")
		switch key {
		case "bold":
			st.Bold = true
		case "italic":
			st.Italic = true
		case "wrap":
			st.Wrap = true
		case "color", "bg":
			if !hasVal {
				return models.Style{}, fmt.Errorf("style attribute %q needs a value", key)
			}
			c, err := NormalizeColor(val)
			if err != nil {
				return models.Style{}, err
			}
			if key == "color" {
				st.FontColor = c
			} else {
				st.Background = c
			}
		case "size":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return models.Style{}, fmt.Errorf("invalid font size %q", val)
			}
			st.FontSize = f
		case "align":
			if !alignments[val] {
				return models.Style{}, fmt.Errorf("invalid alignment %q", val)
			}
			st.HAlign = val
		default:
			return models.Style{}, fmt.Errorf("unknown style attribute %q", key)
		}
	}
	return st, nil
}

// NormalizeColor validates an RGB hex color and returns it as "#RRGGBB".
func NormalizeColor(c string) (string, error) {
	h := strings.TrimPrefix(c, "#")
	if len(h) != 6 {
		return "", fmt.Errorf("invalid color %q", c)
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return "", fmt.Errorf("invalid color %q", c)
	}
	return "#" + strings.ToUpper(h), nil
}
