package xlexport

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
)

// Axis identifiers shared by every generated chart. Bar and line groups in a
// composed chart reference the same pair so they plot on one set of axes.
const (
	CategoryAxisID = 84580096
	ValueAxisID    = 84582144
)

// DefaultCategoryAxisTitle labels the category axis when a chart does not set one.
const DefaultCategoryAxisTitle = "Month-Year"

// ChartKind selects the plot layout of a chart part.
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBar       ChartKind = "bar"
	ChartComposed  ChartKind = "composed"
	ChartMultiLine ChartKind = "multi-line"
	ChartMultiBar  ChartKind = "multi-bar"
)

// Series is one plotted data column.
type Series struct {
	Name   string
	Column string // value column letter, e.g. "D"
	Color  string // RGB hex, with or without '#'
}

// ChartSpec describes a chart over a contiguous block of worksheet rows.
// StartRow and EndRow are 1-based and inclusive.
type ChartSpec struct {
	Kind              ChartKind
	Sheet             string
	Category          string // category column letter
	StartRow          int
	EndRow            int
	Title             string
	CategoryAxisTitle string
	ValueAxisTitle    string
	ValueNumFmt       string
	Series            []Series
}

// LineChart describes a single-series line chart.
func LineChart(sheet, category string, startRow, endRow int, title string, s Series) ChartSpec {
	return ChartSpec{
		Kind:           ChartLine,
		Sheet:          sheet,
		Category:       category,
		StartRow:       startRow,
		EndRow:         endRow,
		Title:          title,
		ValueAxisTitle: "Amount ($)",
		Series:         []Series{s},
	}
}

// ComposedChart describes a bar series and a line series drawn on shared axes.
func ComposedChart(sheet, category string, startRow, endRow int, title string, bar, line Series) ChartSpec {
	return ChartSpec{
		Kind:           ChartComposed,
		Sheet:          sheet,
		Category:       category,
		StartRow:       startRow,
		EndRow:         endRow,
		Title:          title,
		ValueAxisTitle: "Change %",
		Series:         []Series{bar, line},
	}
}

// MultiLineChart describes one line per series.
func MultiLineChart(sheet, category string, startRow, endRow int, title, valueAxisTitle string, series ...Series) ChartSpec {
	return ChartSpec{
		Kind:           ChartMultiLine,
		Sheet:          sheet,
		Category:       category,
		StartRow:       startRow,
		EndRow:         endRow,
		Title:          title,
		ValueAxisTitle: valueAxisTitle,
		Series:         series,
	}
}

// MultiBarChart describes clustered columns, one per series.
func MultiBarChart(sheet, category string, startRow, endRow int, title, valueAxisTitle string, series ...Series) ChartSpec {
	return ChartSpec{
		Kind:           ChartMultiBar,
		Sheet:          sheet,
		Category:       category,
		StartRow:       startRow,
		EndRow:         endRow,
		Title:          title,
		ValueAxisTitle: valueAxisTitle,
		Series:         series,
	}
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var partTemplates = template.Must(template.New("parts").
	Funcs(template.FuncMap{"esc": escapeXML}).
	ParseFS(templateFS, "templates/*.tmpl"))

func escapeXML(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

type titleView struct {
	Text string
	Bold bool
}

type seriesView struct {
	Index      int
	Name       string
	Color      string
	Categories string
	Values     string
	MarkerFill bool
	Smooth     bool
}

type chartView struct {
	Title         titleView
	CategoryTitle titleView
	ValueTitle    titleView
	NumFmt        string
	SourceLinked  bool
	CatAxisID     int
	ValAxisID     int
	Bars          []seriesView
	Lines         []seriesView
}

// XML renders the chart as a complete chartSpace part.
func (c ChartSpec) XML() ([]byte, error) {
	view, err := c.view()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := partTemplates.ExecuteTemplate(&buf, "chart", view); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", c.Kind, err)
	}
	return buf.Bytes(), nil
}

// CategoryRef is the formula of the shared category range.
func (c ChartSpec) CategoryRef() string {
	return rangeFormula(c.Sheet, c.Category, c.StartRow, c.EndRow)
}

// ValueRef is the formula of a series' value range.
func (c ChartSpec) ValueRef(s Series) string {
	return rangeFormula(c.Sheet, s.Column, c.StartRow, c.EndRow)
}

func rangeFormula(sheet, col string, start, end int) string {
	area, err := ColumnRange(sheet, col, start, end)
	if err != nil {
		// Unparseable columns are reported by ValidateChart; keep the text verbatim.
		return QuoteSheet(sheet) + "!$" + col + fmt.Sprintf("$%d:$%s$%d", start, col, end)
	}
	return area.String()
}

func (c ChartSpec) view() (chartView, error) {
	if len(c.Series) == 0 {
		return chartView{}, fmt.Errorf("%s chart %q: %w", c.Kind, c.Title, ErrNoSeries)
	}

	v := chartView{
		Title:         titleView{Text: c.Title, Bold: true},
		CategoryTitle: titleView{Text: c.CategoryAxisTitle},
		ValueTitle:    titleView{Text: c.ValueAxisTitle},
		NumFmt:        c.ValueNumFmt,
		CatAxisID:     CategoryAxisID,
		ValAxisID:     ValueAxisID,
	}
	if v.CategoryTitle.Text == "" {
		v.CategoryTitle.Text = DefaultCategoryAxisTitle
	}

	cat := c.CategoryRef()
	series := make([]seriesView, len(c.Series))
	for i, s := range c.Series {
		series[i] = seriesView{
			Index:      i,
			Name:       s.Name,
			Color:      normalizeColor(s.Color),
			Categories: cat,
			Values:     c.ValueRef(s),
		}
	}

	switch c.Kind {
	case ChartLine:
		for i := range series {
			series[i].Smooth = true
		}
		v.Lines = series
		v.defaultNumFmt("General", true)
	case ChartBar, ChartMultiBar:
		v.Bars = series
		v.defaultNumFmt("0%", false)
	case ChartMultiLine:
		for i := range series {
			series[i].Smooth = true
			series[i].MarkerFill = true
		}
		v.Lines = series
		v.defaultNumFmt("0%", false)
	case ChartComposed:
		if len(series) != 2 {
			return chartView{}, fmt.Errorf("chart %q has %d series: %w", c.Title, len(series), ErrSeriesCount)
		}
		series[1].MarkerFill = true
		v.Bars = series[:1]
		v.Lines = series[1:]
		v.defaultNumFmt("0%", false)
	default:
		return chartView{}, fmt.Errorf("%w: %q", ErrUnknownChartKind, c.Kind)
	}
	return v, nil
}

func (v *chartView) defaultNumFmt(code string, linked bool) {
	if v.NumFmt == "" {
		v.NumFmt = code
		v.SourceLinked = linked
	}
}

// normalizeColor strips a leading '#' and upper-cases the hex digits.
// An empty colour renders black.
func normalizeColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if c == "" {
		return "000000"
	}
	return strings.ToUpper(c)
}
