package xlexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChart_Valid(t *testing.T) {
	assert.Empty(t, ValidateChart(salesChart()))
}

func TestValidateChart_Errors(t *testing.T) {
	c := ChartSpec{Kind: ChartComposed, Sheet: "a/b", Category: "1", StartRow: 0, EndRow: 3,
		Series: []Series{{Name: "x", Column: "??", Color: "blue"}}}
	issues := ValidateChart(c)

	var errs, warns int
	for _, is := range issues {
		if is.Severity == SeverityError {
			errs++
		} else {
			warns++
		}
	}
	assert.Equal(t, 5, errs, issues)
	assert.Equal(t, 1, warns, issues)
}

func TestValidateChart_EmptyRangeWarns(t *testing.T) {
	c := salesChart()
	c.EndRow = c.StartRow - 1
	issues := ValidateChart(c)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, `[WARN] chart "Sales Trends - Red": data range is empty`, issues[0].String())
}

func TestValidateChart_UnknownKind(t *testing.T) {
	c := salesChart()
	c.Kind = "radar"
	issues := ValidateChart(c)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "unknown chart kind")
}

func TestValidateTable(t *testing.T) {
	spec := TableSpec{
		HeaderRow: 1,
		Columns: []Column{
			{Header: "A", Key: "a"},
			{Header: "B", Key: "a"},
			{Header: "C", Key: "c", Expr: "row.a +"},
			{Header: "D"},
		},
		Formatters: []Formatter{
			{When: "row.a <", Columns: []string{"a"}},
			{When: "true", Columns: []string{"zzz"}},
		},
	}
	issues := ValidateTable(spec)
	require.Len(t, issues, 5)
	assert.Equal(t, SeverityWarning, issues[0].Severity) // duplicate key
	assert.Equal(t, "column B (B)", issues[0].Where)
	assert.Equal(t, SeverityError, issues[1].Severity) // bad expr
	assert.Equal(t, SeverityError, issues[2].Severity) // missing key
	assert.Equal(t, SeverityError, issues[3].Severity) // bad when
	assert.Equal(t, SeverityWarning, issues[4].Severity)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Issues: []ValidationIssue{{Severity: SeverityError, Where: "chart \"x\"", Message: "no series"}}}
	assert.Equal(t, `validation failed: [ERROR] chart "x": no series`, err.Error())
}
