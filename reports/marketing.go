package reports

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/javajack/xlexport"
)

// MarketingCreator replaces the default workbook creator for marketing exports.
const MarketingCreator = "Wine Analytics - Marketing Dashboard"

// MonthPerformance is the average behaviour of one calendar month.
type MonthPerformance struct {
	MonthName   string  `json:"monthName"`
	AvgSales    float64 `json:"avgSales"`
	AvgQty      float64 `json:"avgQty"`
	AvgPrice    float64 `json:"avgPrice"`
	Consistency float64 `json:"consistency"`
	DataPoints  int     `json:"dataPoints"`
}

// Recommendation is a suggested campaign for a month. Performance is the
// month's sales relative to the overall average (1 = on average).
type Recommendation struct {
	Month       string  `json:"month"`
	Type        string  `json:"type"`
	Priority    string  `json:"priority"`
	Performance float64 `json:"performance"`
	Strategy    string  `json:"strategy"`
	Reason      string  `json:"reason"`
}

// MarketingPayload is the body of the marketing export.
type MarketingPayload struct {
	MonthlyAnalysis []MonthPerformance `json:"monthlyAnalysis"`
	Recommendations []Recommendation   `json:"recommendations"`
	OverallAvg      float64            `json:"overallAvg"`
	BestMonth       *MonthPerformance  `json:"bestMonth"`
	WorstMonth      *MonthPerformance  `json:"worstMonth"`
}

var campaignGuide = [][2]string{
	{"🚀 Boost", "Demand Stimulation - Aggressive promotions for underperforming months"},
	{"📅 Preparation", "Peak Preparation - Build anticipation before high-sales periods"},
	{"🏷️ Clearance", "Post-Peak Optimization - Leverage momentum after peak seasons"},
	{"⭐ Premium", "Premium Testing - Test premium products during strong performance periods"},
}

// Marketing builds the monthly performance sheet with a sales/performance
// chart and the campaign recommendations sheet.
func Marketing(p MarketingPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	opts = append([]xlexport.Option{xlexport.WithCreator(MarketingCreator)}, opts...)
	doc := xlexport.NewDocument(string(KindMarketing), opts...)
	doc.Filename = filename("marketing-analytics", now)
	th := doc.Builder.Theme()

	const sheet = "Monthly Performance"
	monthly := doc.Builder.Sheet(sheet)
	table := monthlyPerformance(monthly, th, p)

	doc.AddChart(monthly.Index(), xlexport.ComposedChart(sheet, "A", table.FirstDataRow(), table.LastDataRow(),
		"Monthly Sales Performance",
		xlexport.Series{Name: "Average Sales", Column: "B", Color: th.SeriesColor(0)},
		xlexport.Series{Name: "Performance vs Average", Column: "E", Color: th.SeriesColor(1)}))

	campaignRecommendations(doc.Builder.Sheet("Campaign Recommendations"), th, p.Recommendations)
	return finish(doc)
}

func monthlyPerformance(sw *xlexport.SheetWriter, th xlexport.Theme, p MarketingPayload) xlexport.TableSpec {
	const wholeDollars = "$#,##0"
	sw.Title("Monthly Sales Performance Analysis", "G", th.Title(th.Blue), 35).
		Set("A3", "Overall Average Sales:", th.Label()).
		Set("B3", p.OverallAvg, xlexport.CellStyle{NumFmt: wholeDollars, Bold: true, FontColor: th.Blue})

	if m := p.BestMonth; m != nil {
		sw.Set("D3", "Best Month:", th.Label()).
			Set("E3", m.MonthName, xlexport.CellStyle{FontColor: th.Positive}).
			Set("F3", m.AvgSales, xlexport.CellStyle{NumFmt: wholeDollars, Bold: true, FontColor: th.Positive})
	}
	if m := p.WorstMonth; m != nil {
		sw.Set("A4", "Needs Attention:", th.Label()).
			Set("B4", m.MonthName, xlexport.CellStyle{FontColor: th.Negative}).
			Set("C4", m.AvgSales, xlexport.CellStyle{NumFmt: wholeDollars, Bold: true, FontColor: th.Negative})
	}

	rows := make([]map[string]any, len(p.MonthlyAnalysis))
	for i, m := range p.MonthlyAnalysis {
		rows[i] = map[string]any{
			"monthName":   m.MonthName,
			"avgSales":    m.AvgSales,
			"avgQty":      m.AvgQty,
			"avgPrice":    m.AvgPrice,
			"consistency": m.Consistency,
			"dataPoints":  m.DataPoints,
		}
	}
	table := xlexport.TableSpec{
		HeaderRow:    6,
		HeaderStyle:  th.Header(th.Slate),
		HeaderHeight: 25,
		Stripe:       th.StripeCool,
		Rows:         rows,
		Vars:         map[string]any{"overallAvg": p.OverallAvg},
		Columns: []xlexport.Column{
			{Header: "Month", Key: "monthName", Width: 12},
			{Header: "Avg Sales ($)", Key: "avgSales", Width: 15, Style: xlexport.CellStyle{NumFmt: wholeDollars}},
			{Header: "Avg Quantity", Key: "avgQty", Width: 15, Style: xlexport.CellStyle{NumFmt: "#,##0"}},
			{Header: "Avg Price ($)", Key: "avgPrice", Width: 15, Style: xlexport.CellStyle{NumFmt: currencyFmt}},
			{
				Header: "Performance vs Avg (%)",
				Key:    "performance",
				Width:  22,
				Expr:   "overallAvg != 0 ? row.avgSales / overallAvg - 1 : 0",
				Style:  xlexport.CellStyle{NumFmt: "0.0%"},
			},
			{Header: "Consistency Score", Key: "consistency", Width: 18, Style: xlexport.CellStyle{NumFmt: "0.00"}},
			{Header: "Data Points", Key: "dataPoints", Width: 13},
		},
		Formatters: []xlexport.Formatter{
			{When: "row.performance < 0", Columns: []string{"performance"}, Style: th.Signed(-1)},
			{When: "row.performance >= 0", Columns: []string{"performance"}, Style: th.Signed(1)},
		},
	}
	sw.Table(table)
	return table
}

func campaignRecommendations(sw *xlexport.SheetWriter, th xlexport.Theme, recs []Recommendation) {
	sw.Title("Promotional Campaign Recommendations", "F", th.Title(th.Orange), 35).
		Merge("A2", "F2").
		Set("A2", "Strategic periods identified for launching promotional campaigns",
			xlexport.CellStyle{Italic: true, Size: 11, HAlign: "center"})

	rows := make([]map[string]any, len(recs))
	for i, r := range recs {
		rows[i] = map[string]any{
			"month":    r.Month,
			"type":     capitalize(r.Type),
			"kind":     r.Type,
			"priority": strings.ToUpper(r.Priority),
			"level":    r.Priority,
			"ratio":    r.Performance,
			"strategy": r.Strategy,
			"reason":   r.Reason,
		}
	}
	wrap := xlexport.CellStyle{Wrap: true}
	badge := xlexport.CellStyle{Bold: true, FontColor: th.OnPrimary}
	table := xlexport.TableSpec{
		HeaderRow:    4,
		HeaderStyle:  th.Header(th.Slate),
		HeaderHeight: 30,
		RowHeight:    50,
		Rows:         rows,
		Columns: []xlexport.Column{
			{Header: "Month", Key: "month", Width: 12},
			{Header: "Campaign Type", Key: "type", Width: 15},
			{Header: "Priority", Key: "priority", Width: 12, Style: badge.With(xlexport.CellStyle{Fill: th.Positive})},
			{Header: "Performance vs Avg", Key: "performance", Width: 18, Expr: "row.ratio - 1", Style: xlexport.CellStyle{NumFmt: "0.0%"}},
			{Header: "Strategy", Key: "strategy", Width: 50, Style: wrap},
			{Header: "Reason", Key: "reason", Width: 40, Style: wrap},
		},
		Formatters: []xlexport.Formatter{
			{When: `row.level == "high"`, Columns: []string{"priority"}, Style: xlexport.CellStyle{Fill: th.Negative}},
			{When: `row.level == "medium"`, Columns: []string{"priority"}, Style: xlexport.CellStyle{Fill: th.Orange}},
			{When: `row.kind == "boost"`, Columns: []string{"type"}, Style: xlexport.CellStyle{Fill: th.Rose}},
			{When: `row.kind == "preparation"`, Columns: []string{"type"}, Style: xlexport.CellStyle{Fill: th.Cream}},
			{When: `row.kind == "clearance"`, Columns: []string{"type"}, Style: xlexport.CellStyle{Fill: th.Sky}},
			{When: `row.kind == "premium"`, Columns: []string{"type"}, Style: xlexport.CellStyle{Fill: th.Leaf}},
			{When: "row.ratio < 1", Columns: []string{"performance"}, Style: th.Signed(-1)},
			{When: "row.ratio >= 1", Columns: []string{"performance"}, Style: th.Signed(1)},
		},
	}
	sw.Table(table)

	legend := table.LastDataRow() + 3
	sw.Merge(xlexport.Cell(0, legend), xlexport.Cell(5, legend)).
		Set(xlexport.Cell(0, legend), "Campaign Type Guide", th.Section(th.Neutral))
	for i, g := range campaignGuide {
		r := legend + 1 + i
		sw.Set(xlexport.Cell(0, r), g[0], th.Label()).
			Set(xlexport.Cell(1, r), g[1]).
			Merge(xlexport.Cell(1, r), xlexport.Cell(5, r)).
			RowHeight(r, 25)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
