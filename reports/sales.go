package reports

import (
	"fmt"
	"time"

	"github.com/javajack/xlexport"
)

// summaryGap separates a chart sheet's table from its summary block so the
// chart anchored at rows 25-40 stays clear of it for short tables.
const summaryGap = 18

const (
	currencyFmt = "$#,##0.00"
	percentFmt  = `0.0"%"`
)

// MonthlySales is one month of the sales trend.
type MonthlySales struct {
	MonthYear   string  `json:"monthYear"`
	Year        int     `json:"year"`
	Month       string  `json:"month"`
	TotalAmount float64 `json:"totalAmount"`
}

// SalesTrendPayload is the body of the sales trend export.
type SalesTrendPayload struct {
	DisplayedData    []MonthlySales `json:"displayedData"`
	SelectedCategory string         `json:"selectedCategory"`
	DateRange        string         `json:"dateRange"`
	SeasonalAnalysis string         `json:"seasonalAnalysis"`
	MaxMinInfo       string         `json:"maxMinInfo"`
	LineColor        string         `json:"lineColor"`
}

// SalesTrend builds the single-sheet monthly sales export with a line chart.
func SalesTrend(p SalesTrendPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindSalesTrend), opts...)
	doc.Filename = filename("sales-trends-"+slug(p.SelectedCategory), now)
	th := doc.Builder.Theme()

	const sheet = "Sales Trends"
	sw := doc.Builder.Sheet(sheet).
		Title("Sales Trends by Category", "D", th.Title(""), 30).
		Set("A2", "Category:", th.Label()).
		Set("B2", p.SelectedCategory).
		Set("A3", "Date Range:", th.Label()).
		Set("B3", p.DateRange)

	rows := make([]map[string]any, len(p.DisplayedData))
	for i, m := range p.DisplayedData {
		rows[i] = map[string]any{
			"monthYear":   m.MonthYear,
			"year":        m.Year,
			"month":       m.Month,
			"totalAmount": m.TotalAmount,
		}
	}
	table := xlexport.TableSpec{
		HeaderRow:    5,
		HeaderHeight: 25,
		Stripe:       th.Stripe,
		Rows:         rows,
		Columns: []xlexport.Column{
			{Header: "Month-Year", Key: "monthYear", Width: 15},
			{Header: "Year", Key: "year", Width: 10},
			{Header: "Month", Key: "month", Width: 10},
			{Header: "Total Amount ($)", Key: "totalAmount", Width: 18, Style: xlexport.CellStyle{NumFmt: currencyFmt}},
		},
	}
	sw.Table(table)

	sw.Summary(table.LastDataRow()+summaryGap, "Summary & Analysis", th.Section(""), []xlexport.SummaryItem{
		{Label: "Seasonal Analysis:", Value: p.SeasonalAnalysis},
		{Label: "Min/Max Values:", Value: p.MaxMinInfo},
	})
	sw.ColWidth("B", 60).Freeze(table.HeaderRow)

	title, err := xlexport.NewContext(map[string]any{"category": p.SelectedCategory}, opts...).
		EvaluateText("Sales Trends - ${category}")
	if err != nil {
		_ = doc.Close()
		return nil, err
	}
	doc.AddChart(sw.Index(), xlexport.LineChart(sheet, "A", table.FirstDataRow(), table.LastDataRow(),
		fmt.Sprint(title),
		xlexport.Series{Name: "Total Amount", Column: "D", Color: or(p.LineColor, th.LineColor)}))
	return finish(doc)
}

// PriceChange is one month of price and sales movement.
type PriceChange struct {
	YearMonth          string  `json:"yearMonth"`
	AvgPrice           float64 `json:"avgPrice"`
	TotalAmount        float64 `json:"totalAmount"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	SalesChangePercent float64 `json:"salesChangePercent"`
	PriceChange        float64 `json:"priceChange"`
	SalesChange        float64 `json:"salesChange"`
}

// PriceStatsPayload is the body of the price vs sales export.
type PriceStatsPayload struct {
	DisplayedData      []PriceChange `json:"displayedData"`
	DateRange          string        `json:"dateRange"`
	CorrelationInsight string        `json:"correlationInsight"`
}

// PriceStats builds the price vs sales export with a bar+line chart of the
// two percentage changes.
func PriceStats(p PriceStatsPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindPriceStats), opts...)
	doc.Filename = filename("price-vs-sales", now)
	th := doc.Builder.Theme()

	const sheet = "Price vs Sales"
	const title = "Price Changes vs Sales Evolution"
	sw := doc.Builder.Sheet(sheet).
		Title(title, "F", th.Title(""), 30).
		Set("A2", "Date Range:", th.Label()).
		Set("B2", p.DateRange)

	rows := make([]map[string]any, len(p.DisplayedData))
	for i, d := range p.DisplayedData {
		rows[i] = map[string]any{
			"yearMonth":          d.YearMonth,
			"avgPrice":           d.AvgPrice,
			"totalAmount":        d.TotalAmount,
			"priceChangePercent": d.PriceChangePercent,
			"salesChangePercent": d.SalesChangePercent,
			"priceChange":        d.PriceChange,
			"salesChange":        d.SalesChange,
		}
	}
	money := xlexport.CellStyle{NumFmt: currencyFmt}
	pct := xlexport.CellStyle{NumFmt: percentFmt}
	table := xlexport.TableSpec{
		HeaderRow:    4,
		HeaderHeight: 25,
		Stripe:       th.Stripe,
		Rows:         rows,
		Columns: []xlexport.Column{
			{Header: "Month-Year", Key: "yearMonth", Width: 15},
			{Header: "Avg Price ($)", Key: "avgPrice", Width: 14, Style: money},
			{Header: "Total Sales ($)", Key: "totalAmount", Width: 16, Style: money},
			{Header: "Price Change %", Key: "priceChangePercent", Width: 15, Style: pct},
			{Header: "Sales Change %", Key: "salesChangePercent", Width: 15, Style: pct},
			{Header: "Price Change $", Key: "priceChange", Width: 15, Style: money},
			{Header: "Sales Change $", Key: "salesChange", Width: 16, Style: money},
		},
	}
	sw.Table(table)

	sw.Summary(table.LastDataRow()+summaryGap, "Correlation Analysis", th.Section(""), []xlexport.SummaryItem{
		{Label: "Insight:", Value: p.CorrelationInsight},
	})
	sw.ColWidth("B", 60).Freeze(table.HeaderRow)

	doc.AddChart(sw.Index(), xlexport.ComposedChart(sheet, "A", table.FirstDataRow(), table.LastDataRow(), title,
		xlexport.Series{Name: "Price Change %", Column: "D", Color: th.BarColor},
		xlexport.Series{Name: "Sales Change %", Column: "E", Color: th.LineColor}))
	return finish(doc)
}

// CategoryColor is the dashboard colour assigned to a category.
type CategoryColor struct {
	Color string `json:"color"`
}

// CategoryInsight is one line of the category analysis block.
type CategoryInsight struct {
	Category           string `json:"category"`
	InverseCorrelation any    `json:"inverseCorrelation"`
}

// PriceCategoryPayload is the body of the price/sales by category export.
// Each DisplayedData entry carries yearMonth plus "<category>_price" and
// "<category>_sales" values for every selected category.
type PriceCategoryPayload struct {
	DisplayedData      []map[string]any         `json:"displayedData"`
	DateRange          string                   `json:"dateRange"`
	SelectedCategories []string                 `json:"selectedCategories"`
	Insights           []CategoryInsight        `json:"insights"`
	CategoryColors     map[string]CategoryColor `json:"categoryColors"`
}

// PriceCategory builds two sheets, price changes with a clustered column
// chart and sales changes with a multi-line chart, one series per category.
func PriceCategory(p PriceCategoryPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindPriceCategory), opts...)
	doc.Filename = filename("price-sales-by-category", now)
	th := doc.Builder.Theme()

	series := make([]xlexport.Series, len(p.SelectedCategories))
	for i, cat := range p.SelectedCategories {
		series[i] = xlexport.Series{
			Name:   cat,
			Column: xlexport.ColToName(i + 1),
			Color:  p.CategoryColors[cat].Color,
		}
	}

	byCategory := func(sheet, title, suffix, header string) (*xlexport.SheetWriter, xlexport.TableSpec) {
		sw := doc.Builder.Sheet(sheet).
			Title(title, "G", th.Title(""), 30).
			Set("A2", "Date Range:", th.Label()).
			Set("B2", p.DateRange)

		cols := []xlexport.Column{{Header: "Month-Year", Key: "yearMonth", Width: 15}}
		for _, cat := range p.SelectedCategories {
			cols = append(cols, xlexport.Column{
				Header: cat + header,
				Key:    cat + suffix,
				Width:  15,
				Style:  xlexport.CellStyle{NumFmt: percentFmt},
			})
		}
		rows := make([]map[string]any, len(p.DisplayedData))
		for i, item := range p.DisplayedData {
			rec := map[string]any{"yearMonth": item["yearMonth"]}
			for _, cat := range p.SelectedCategories {
				v, ok := item[cat+suffix]
				if !ok || v == nil {
					v = 0
				}
				rec[cat+suffix] = v
			}
			rows[i] = rec
		}
		table := xlexport.TableSpec{
			HeaderRow:    4,
			HeaderHeight: 25,
			Stripe:       th.Stripe,
			Rows:         rows,
			Columns:      cols,
		}
		return sw.Table(table), table
	}

	priceSheet, priceTable := byCategory("Price Changes", "Price Changes by Category", "_price", " Price %")
	salesSheet, salesTable := byCategory("Sales Changes", "Sales Changes by Category", "_sales", " Sales %")

	insights := make([]xlexport.SummaryItem, len(p.Insights))
	for i, in := range p.Insights {
		insights[i] = xlexport.SummaryItem{
			Label: in.Category,
			Value: fmt.Sprintf("Inverse Correlation: %v%%", in.InverseCorrelation),
		}
	}
	salesSheet.Summary(salesTable.LastDataRow()+summaryGap, "Category Analysis", th.Section(""), insights)

	if len(series) == 0 {
		return finish(doc)
	}
	doc.AddChart(priceSheet.Index(), xlexport.MultiBarChart("Price Changes", "A",
		priceTable.FirstDataRow(), priceTable.LastDataRow(),
		"Price Changes by Category", "Price Change %", series...))
	doc.AddChart(salesSheet.Index(), xlexport.MultiLineChart("Sales Changes", "A",
		salesTable.FirstDataRow(), salesTable.LastDataRow(),
		"Sales Evolution by Category", "Sales Change %", series...))
	return finish(doc)
}
