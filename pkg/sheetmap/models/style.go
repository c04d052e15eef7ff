package models

import "fmt"

// Style is the backend-neutral presentation of a cell. Zero fields mean
// "unset" so that styles can be layered on top of each other.
type Style struct {
	FontColor  string  `json:"font_color,omitempty"`
	Background string  `json:"background,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	HAlign     string  `json:"h_align,omitempty"`
	Wrap       bool    `json:"wrap,omitempty"`
	NumFmt     string  `json:"num_fmt,omitempty"`
}

// IsZero reports whether no attribute of the style is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Merge returns s with every non-zero attribute of o applied on top.
func (s Style) Merge(o Style) Style {
	if o.FontColor != "" {
		s.FontColor = o.FontColor
	}
	if o.Background != "" {
		s.Background = o.Background
	}
	if o.Bold {
		s.Bold = true
	}
	if o.Italic {
		s.Italic = true
	}
	if o.FontSize > 0 {
		s.FontSize = o.FontSize
	}
	if o.HAlign != "" {
		s.HAlign = o.HAlign
	}
	if o.Wrap {
		s.Wrap = true
	}
	if o.NumFmt != "" {
		s.NumFmt = o.NumFmt
	}
	return s
}

// Status is a per-cell validation marker.
type Status int

const (
	StatusNone Status = iota
	StatusSuccess
	StatusInfo
	StatusWarning
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusSuccess:
		return "SUCCESS"
	case StatusInfo:
		return "INFO"
	case StatusWarning:
		return "WARNING"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus parses a status name as produced by String.
func ParseStatus(s string) (Status, bool) {
	for st := StatusNone; st <= StatusError; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StatusNone, false
}

// Presentation is the fully resolved presentation of one cell.
type Presentation struct {
	Style   Style  `json:"style"`
	Comment string `json:"comment,omitempty"`
	Status  Status `json:"status,omitempty"`
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	st, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status %q", b)
	}
	*s = st
	return nil
}
