package xlexport

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxSheetNameLength is the longest sheet name Excel accepts.
const MaxSheetNameLength = 31

// CellRef is a single cell position. Row and Col are 0-based.
type CellRef struct {
	Sheet string
	Row   int
	Col   int
}

// ParseCellRef reads a reference such as "B5", "$B$5" or "'Sales Trends'!B5".
func ParseCellRef(s string) (CellRef, error) {
	ref := CellRef{}
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '!'); i >= 0 {
		ref.Sheet, s = unquoteSheet(s[:i]), s[i+1:]
	}
	name := strings.ReplaceAll(s, "$", "")
	digits := strings.IndexFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	if digits <= 0 {
		return CellRef{}, fmt.Errorf("cell reference %q: want column letters then a row number", s)
	}
	col, err := NameToCol(name[:digits])
	if err != nil {
		return CellRef{}, fmt.Errorf("cell reference %q: %w", s, err)
	}
	row, err := strconv.Atoi(name[digits:])
	if err != nil || row < 1 {
		return CellRef{}, fmt.Errorf("cell reference %q: bad row %q", s, name[digits:])
	}
	ref.Col, ref.Row = col, row-1
	return ref, nil
}

// String renders the reference with a quoted sheet prefix when one is set.
func (c CellRef) String() string {
	if c.Sheet == "" {
		return c.CellName()
	}
	return QuoteSheet(c.Sheet) + "!" + c.CellName()
}

// CellName drops the sheet: "B5".
func (c CellRef) CellName() string {
	return Cell(c.Col, c.Row+1)
}

// Cell returns the name of the cell at a 0-based column and 1-based row,
// the mix used by every worksheet writer in this package.
func Cell(col, row int) string {
	return ColToName(col) + strconv.Itoa(row)
}

// ColToName converts a 0-based column index to letters: 0 is "A", 26 is "AA".
func ColToName(col int) string {
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// NameToCol is the inverse of ColToName. Lower case is accepted; Excel stops
// at three letters.
func NameToCol(name string) (int, error) {
	letters := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case letters == "":
		return 0, fmt.Errorf("column name is empty")
	case len(letters) > 3:
		return 0, fmt.Errorf("column %q is longer than three letters", name)
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		ch := letters[i]
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("column %q has non-letter %q", name, ch)
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, nil
}

// AreaRef is a rectangular range between two cells.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// ParseAreaRef reads a range such as "'Price Changes'!$B$2:$B$13". The last
// cell takes the first cell's sheet when it names none.
func ParseAreaRef(s string) (AreaRef, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return AreaRef{}, fmt.Errorf("area %q has no ':'", s)
	}
	var area AreaRef
	var err error
	if area.First, err = ParseCellRef(from); err != nil {
		return AreaRef{}, fmt.Errorf("area %q: %w", s, err)
	}
	if area.Last, err = ParseCellRef(to); err != nil {
		return AreaRef{}, fmt.Errorf("area %q: %w", s, err)
	}
	if area.Last.Sheet == "" {
		area.Last.Sheet = area.First.Sheet
	}
	return area, nil
}

// String formats the area with absolute anchors, e.g. 'Sales Trends'!$A$6:$A$9.
func (a AreaRef) String() string {
	abs := func(c CellRef) string {
		return "$" + ColToName(c.Col) + "$" + strconv.Itoa(c.Row+1)
	}
	prefix := ""
	if a.First.Sheet != "" {
		prefix = QuoteSheet(a.First.Sheet) + "!"
	}
	return prefix + abs(a.First) + ":" + abs(a.Last)
}

// Rows returns the number of rows the area spans. An inverted area has zero rows.
func (a AreaRef) Rows() int {
	if a.Last.Row < a.First.Row {
		return 0
	}
	return a.Last.Row - a.First.Row + 1
}

// ColumnRange builds the single-column area used as a chart data range.
// Rows are 1-based; an end row before the start row is kept as written.
func ColumnRange(sheet string, col string, startRow, endRow int) (AreaRef, error) {
	c, err := NameToCol(col)
	if err != nil {
		return AreaRef{}, err
	}
	return AreaRef{
		First: CellRef{Sheet: sheet, Row: startRow - 1, Col: c},
		Last:  CellRef{Sheet: sheet, Row: endRow - 1, Col: c},
	}, nil
}

// QuoteSheet wraps a sheet name in single quotes, doubling embedded quotes.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func unquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

var forbiddenSheetRunes = []rune{'/', '\\', ':', '*', '?', '[', ']'}

// SafeSheetName sanitizes a string for use as an Excel sheet name.
// It replaces forbidden characters ([]*?/\:) with underscore and truncates to 31 chars.
func SafeSheetName(name string) string {
	runes := []rune(name)
	for i, r := range runes {
		for _, f := range forbiddenSheetRunes {
			if r == f {
				runes[i] = '_'
				break
			}
		}
	}
	if len(runes) > MaxSheetNameLength {
		runes = runes[:MaxSheetNameLength]
	}
	return string(runes)
}

// CheckSheetName reports why name cannot be used as a sheet name, or nil.
func CheckSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("sheet name is empty")
	}
	if n := len([]rune(name)); n > MaxSheetNameLength {
		return fmt.Errorf("sheet name %q is %d characters, limit is %d", name, n, MaxSheetNameLength)
	}
	if strings.ContainsAny(name, string(forbiddenSheetRunes)) {
		return fmt.Errorf("sheet name %q contains one of %q", name, string(forbiddenSheetRunes))
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("sheet name %q starts or ends with an apostrophe", name)
	}
	return nil
}
