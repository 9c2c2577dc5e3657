package xlexport

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellStyle is a comparable description of a cell format. Colours are RGB hex.
// The zero value is the workbook default style.
type CellStyle struct {
	Fill      string
	FontColor string
	Bold      bool
	Italic    bool
	Size      float64
	HAlign    string
	VAlign    string
	Wrap      bool
	Indent    int
	NumFmt    string
	Border    string // border colour on all four edges; empty for none
}

// With overlays the non-zero fields of o onto s.
func (s CellStyle) With(o CellStyle) CellStyle {
	if o.Fill != "" {
		s.Fill = o.Fill
	}
	if o.FontColor != "" {
		s.FontColor = o.FontColor
	}
	s.Bold = s.Bold || o.Bold
	s.Italic = s.Italic || o.Italic
	if o.Size != 0 {
		s.Size = o.Size
	}
	if o.HAlign != "" {
		s.HAlign = o.HAlign
	}
	if o.VAlign != "" {
		s.VAlign = o.VAlign
	}
	s.Wrap = s.Wrap || o.Wrap
	if o.Indent != 0 {
		s.Indent = o.Indent
	}
	if o.NumFmt != "" {
		s.NumFmt = o.NumFmt
	}
	if o.Border != "" {
		s.Border = o.Border
	}
	return s
}

// IsZero reports whether s is the default style.
func (s CellStyle) IsZero() bool {
	return s == CellStyle{}
}

func (s CellStyle) String() string {
	var parts []string
	if s.Fill != "" {
		parts = append(parts, "fill="+s.Fill)
	}
	if s.FontColor != "" {
		parts = append(parts, "font="+s.FontColor)
	}
	if s.Bold {
		parts = append(parts, "bold")
	}
	if s.Italic {
		parts = append(parts, "italic")
	}
	if s.Size != 0 {
		parts = append(parts, fmt.Sprintf("size=%g", s.Size))
	}
	if s.NumFmt != "" {
		parts = append(parts, "numfmt="+s.NumFmt)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func (s CellStyle) excelize() *excelize.Style {
	st := &excelize.Style{}
	if s.Fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.Fill}}
	}
	if s.FontColor != "" || s.Bold || s.Italic || s.Size != 0 {
		st.Font = &excelize.Font{Bold: s.Bold, Italic: s.Italic, Size: s.Size, Color: s.FontColor}
	}
	if s.HAlign != "" || s.VAlign != "" || s.Wrap || s.Indent != 0 {
		st.Alignment = &excelize.Alignment{
			Horizontal: s.HAlign,
			Vertical:   s.VAlign,
			WrapText:   s.Wrap,
			Indent:     s.Indent,
		}
	}
	if s.NumFmt != "" {
		code := s.NumFmt
		st.CustomNumFmt = &code
	}
	if s.Border != "" {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: s.Border, Style: 1})
		}
	}
	return st
}
