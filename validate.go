package xlexport

import (
	"fmt"
	"regexp"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // rendering would fail or produce a broken part
	SeverityWarning                 // output is valid but probably not what was meant
)

// ValidationIssue is a single problem found in a chart or table descriptor.
type ValidationIssue struct {
	Severity Severity
	Where    string
	Message  string
}

// String formats the issue as "[ERROR] chart "Sales": message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Where, v.Message)
}

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// ValidateChart checks a chart descriptor without rendering it.
func ValidateChart(c ChartSpec) []ValidationIssue {
	where := fmt.Sprintf("chart %q", c.Title)
	var issues []ValidationIssue
	add := func(sev Severity, format string, args ...any) {
		issues = append(issues, ValidationIssue{Severity: sev, Where: where, Message: fmt.Sprintf(format, args...)})
	}

	switch c.Kind {
	case ChartLine, ChartBar, ChartMultiLine, ChartMultiBar:
	case ChartComposed:
		if len(c.Series) != 2 {
			add(SeverityError, "composed chart has %d series, want a bar and a line", len(c.Series))
		}
	default:
		add(SeverityError, "unknown chart kind %q", c.Kind)
	}
	if len(c.Series) == 0 {
		add(SeverityError, "no series")
	}
	if err := CheckSheetName(c.Sheet); err != nil {
		add(SeverityError, "%v", err)
	}
	if _, err := NameToCol(c.Category); err != nil {
		add(SeverityError, "category column: %v", err)
	}
	if c.StartRow < 1 {
		add(SeverityError, "start row %d is before row 1", c.StartRow)
	}
	if c.EndRow < c.StartRow-1 {
		add(SeverityWarning, "end row %d is more than one row before start row %d", c.EndRow, c.StartRow)
	} else if c.EndRow < c.StartRow {
		add(SeverityWarning, "data range is empty")
	}

	for i, s := range c.Series {
		if _, err := NameToCol(s.Column); err != nil {
			add(SeverityError, "series %d (%s) column: %v", i, s.Name, err)
		}
		if s.Color != "" && !hexColor.MatchString(s.Color) {
			add(SeverityWarning, "series %d (%s) colour %q is not RGB hex", i, s.Name, s.Color)
		}
		if s.Column == c.Category {
			add(SeverityWarning, "series %d (%s) plots the category column", i, s.Name)
		}
	}
	return issues
}

// ValidateTable checks column and formatter expressions for syntax errors
// and flags duplicate column keys.
func ValidateTable(t TableSpec) []ValidationIssue {
	var issues []ValidationIssue
	if t.HeaderRow < 1 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Where:    "table",
			Message:  fmt.Sprintf("header row %d is before row 1", t.HeaderRow),
		})
	}

	seen := make(map[string]bool)
	for i, col := range t.Columns {
		where := fmt.Sprintf("column %s (%s)", ColToName(i), col.Header)
		if col.Key == "" {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Where: where, Message: "column has no key"})
		} else if seen[col.Key] {
			issues = append(issues, ValidationIssue{Severity: SeverityWarning, Where: where, Message: fmt.Sprintf("duplicate key %q", col.Key)})
		}
		seen[col.Key] = true
		if issue := compileCheck(where, "expr", col.Expr); issue != nil {
			issues = append(issues, *issue)
		}
	}
	for i, f := range t.Formatters {
		where := fmt.Sprintf("formatter %d", i)
		if issue := compileCheck(where, "when", f.When); issue != nil {
			issues = append(issues, *issue)
		}
		for _, key := range f.Columns {
			if !seen[key] {
				issues = append(issues, ValidationIssue{Severity: SeverityWarning, Where: where, Message: fmt.Sprintf("styles unknown column %q", key)})
			}
		}
	}
	return issues
}

// compileCheck compiles an expression for syntax checking and returns an issue if it fails.
func compileCheck(where, attr, expression string) *ValidationIssue {
	if expression == "" {
		return nil
	}
	if _, err := CompileExpression(expression); err != nil {
		return &ValidationIssue{
			Severity: SeverityError,
			Where:    where,
			Message:  fmt.Sprintf("invalid %s expression %q: %v", attr, expression, err),
		}
	}
	return nil
}
