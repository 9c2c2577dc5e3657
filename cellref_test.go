package xlexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRef_SimpleCell(t *testing.T) {
	ref, err := ParseCellRef("A1")
	require.NoError(t, err)
	assert.Equal(t, "", ref.Sheet)
	assert.Equal(t, 0, ref.Row)
	assert.Equal(t, 0, ref.Col)
}

func TestParseCellRef_QuotedSheet(t *testing.T) {
	ref, err := ParseCellRef("'Bob''s Sales'!$D$12")
	require.NoError(t, err)
	assert.Equal(t, "Bob's Sales", ref.Sheet)
	assert.Equal(t, 11, ref.Row)
	assert.Equal(t, 3, ref.Col)
}

func TestParseCellRef_Invalid(t *testing.T) {
	for _, in := range []string{"", "A", "1", "A0", "A1B"} {
		_, err := ParseCellRef(in)
		assert.Error(t, err, in)
	}
}

func TestColToName_RoundTrip(t *testing.T) {
	cases := map[int]string{0: "A", 25: "Z", 26: "AA", 51: "AZ", 702: "AAA"}
	for col, name := range cases {
		assert.Equal(t, name, ColToName(col))
		got, err := NameToCol(name)
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}
}

func TestNameToCol_Invalid(t *testing.T) {
	for _, in := range []string{"", "A1", "ABCD", "-"} {
		_, err := NameToCol(in)
		assert.Error(t, err, in)
	}
}

func TestCell(t *testing.T) {
	assert.Equal(t, "A1", Cell(0, 1))
	assert.Equal(t, "E24", Cell(4, 24))
}

func TestColumnRange_String(t *testing.T) {
	area, err := ColumnRange("Sales Trends", "D", 6, 29)
	require.NoError(t, err)
	assert.Equal(t, "'Sales Trends'!$D$6:$D$29", area.String())
	assert.Equal(t, 24, area.Rows())
}

func TestColumnRange_Inverted(t *testing.T) {
	area, err := ColumnRange("S", "A", 6, 5)
	require.NoError(t, err)
	assert.Equal(t, "'S'!$A$6:$A$5", area.String())
	assert.Equal(t, 0, area.Rows())
}

func TestParseAreaRef_InheritsSheet(t *testing.T) {
	area, err := ParseAreaRef("'Price Changes'!$B$2:$B$13")
	require.NoError(t, err)
	assert.Equal(t, "Price Changes", area.Last.Sheet)
	assert.Equal(t, 12, area.Rows())
}

func TestSafeSheetName(t *testing.T) {
	assert.Equal(t, "Q1_Q2 _ sales", SafeSheetName("Q1/Q2 * sales"))
	assert.Len(t, []rune(SafeSheetName("a very long sheet name that exceeds the limit")), MaxSheetNameLength)
	assert.NoError(t, CheckSheetName(SafeSheetName("x[1]:y?")))
}

func TestCheckSheetName(t *testing.T) {
	assert.NoError(t, CheckSheetName("Sales Trends"))
	assert.Error(t, CheckSheetName(""))
	assert.Error(t, CheckSheetName("a/b"))
	assert.Error(t, CheckSheetName("'quoted'"))
	assert.Error(t, CheckSheetName("abcdefghijklmnopqrstuvwxyzabcdef"))
}
