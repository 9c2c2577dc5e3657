package reports

import (
	"fmt"
	"time"

	"github.com/javajack/xlexport"
)

// Association is a wine bought together with the base wine. Confidence is a
// percentage.
type Association struct {
	AssociatedWine     string  `json:"associatedWine"`
	AssociatedCategory string  `json:"associatedCategory"`
	AssociatedCountry  string  `json:"associatedCountry"`
	Count              int     `json:"count"`
	Confidence         float64 `json:"confidence"`
}

// WineAssociation lists the co-purchases of one wine.
type WineAssociation struct {
	Wine           string        `json:"wine"`
	WineCategory   string        `json:"wineCategory"`
	WineCountry    string        `json:"wineCountry"`
	TotalCustomers int           `json:"totalCustomers"`
	Associations   []Association `json:"associations"`
}

// CategoryCount is a co-purchased category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryAssociation lists the categories bought together with a category.
type CategoryAssociation struct {
	Category     string          `json:"category"`
	Associations []CategoryCount `json:"associations"`
}

// WinePerformance is the sales record of one wine.
type WinePerformance struct {
	Wine            string  `json:"wine"`
	Category        string  `json:"category"`
	Country         string  `json:"country"`
	TotalSales      int     `json:"totalSales"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalQuantity   int     `json:"totalQuantity"`
	UniqueCustomers int     `json:"uniqueCustomers"`
	AvgSaleAmount   float64 `json:"avgSaleAmount"`
}

// ProductPerformancePayload is the body of the product performance export.
// WinePerformance is expected in rank order.
type ProductPerformancePayload struct {
	WineAssociations     []WineAssociation     `json:"wineAssociations"`
	CategoryAssociations []CategoryAssociation `json:"categoryAssociations"`
	WinePerformance      []WinePerformance     `json:"winePerformance"`
}

// ProductPerformance builds the overview, wine associations, category
// patterns and top wine performance sheets.
func ProductPerformance(p ProductPerformancePayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindProductPerformance), opts...)
	doc.Filename = filename("product-performance", now)
	th := doc.Builder.Theme()

	productOverview(doc.Builder.Sheet("Overview"), th, p, now)
	wineAssociations(doc.Builder.Sheet("Wine Associations"), th, p.WineAssociations)
	categoryPatterns(doc.Builder.Sheet("Category Patterns"), th, p.CategoryAssociations)
	topWines(doc.Builder.Sheet("Top Wine Performance"), th, p.WinePerformance)
	return finish(doc)
}

func productOverview(sw *xlexport.SheetWriter, th xlexport.Theme, p ProductPerformancePayload, now time.Time) {
	sw.Freeze(3).
		Title("🍷 Product Performance & Associations Analysis", "F", th.Title(th.Violet).With(xlexport.CellStyle{Size: 18}), 35).
		Merge("A2", "F2").
		Set("A2", generated(now), xlexport.CellStyle{Size: 10, Italic: true, HAlign: "center"}).
		RowHeight(4, 25).
		Set("A4", "KEY METRICS", xlexport.CellStyle{Size: 14, Bold: true, FontColor: th.Violet})

	assocs := 0
	for _, w := range p.WineAssociations {
		assocs += len(w.Associations)
	}
	avgAssocs := 0.0
	if n := len(p.WineAssociations); n > 0 {
		avgAssocs = float64(assocs) / float64(n)
	}
	revenue := 0.0
	for _, w := range p.WinePerformance {
		revenue += w.TotalRevenue
	}
	topWine, topRevenue := notAvailable, 0.0
	if len(p.WinePerformance) > 0 {
		topWine = or(p.WinePerformance[0].Wine, notAvailable)
		topRevenue = p.WinePerformance[0].TotalRevenue
	}

	money := xlexport.CellStyle{Size: 12, NumFmt: currencyFmt}
	plain := xlexport.CellStyle{Size: 12}
	metrics := []xlexport.SummaryItem{
		{Label: "Total Wines Analyzed", Value: len(p.WineAssociations), Style: plain},
		{Label: "Avg Associations per Wine", Value: fmt.Sprintf("%.1f", avgAssocs), Style: plain},
		{Label: "Total Wine Performance Records", Value: len(p.WinePerformance), Style: plain},
		{Label: "Total Revenue from Top Wines", Value: revenue, Style: money},
		{Label: "Top Performing Wine", Value: topWine, Style: plain},
		{Label: "Top Wine Revenue", Value: topRevenue, Style: money},
	}
	for i, m := range metrics {
		r := 5 + i
		sw.Set(xlexport.Cell(0, r), m.Label, th.Label()).
			Set(xlexport.Cell(1, r), m.Value, m.Style).
			RowHeight(r, 20)
	}
	sw.ColWidth("A", 30).ColWidth("B", 30)
}

func productHeader(th xlexport.Theme, fill string) xlexport.CellStyle {
	return th.Title(fill).With(xlexport.CellStyle{Size: 11, Border: "000000"})
}

// wineAssociations writes one row per co-purchase with the base wine on the
// first row of its group and a blank row between groups.
func wineAssociations(sw *xlexport.SheetWriter, th xlexport.Theme, wines []WineAssociation) {
	var rows []map[string]any
	for _, w := range wines {
		base := map[string]any{
			"wine":           w.Wine,
			"category":       w.WineCategory,
			"country":        w.WineCountry,
			"totalCustomers": w.TotalCustomers,
			"first":          true,
		}
		if len(w.Associations) == 0 {
			base["associatedWine"] = "No associations found"
			base["none"] = true
			rows = append(rows, base)
		}
		for i, a := range w.Associations {
			rec := map[string]any{}
			if i == 0 {
				rec = base
			}
			rec["associatedWine"] = a.AssociatedWine
			rec["associatedCategory"] = a.AssociatedCategory
			rec["associatedCountry"] = a.AssociatedCountry
			rec["count"] = a.Count
			rec["pct"] = a.Confidence
			rows = append(rows, rec)
		}
		rows = append(rows, map[string]any{})
	}

	right := xlexport.CellStyle{HAlign: "right"}
	sw.Freeze(1).Table(xlexport.TableSpec{
		HeaderRow:    1,
		HeaderStyle:  productHeader(th, th.Violet),
		HeaderHeight: 25,
		Rows:         rows,
		Columns: []xlexport.Column{
			{Header: "Wine", Key: "wine", Width: 35},
			{Header: "Category", Key: "category", Width: 15},
			{Header: "Country", Key: "country", Width: 15},
			{Header: "Total Customers", Key: "totalCustomers", Width: 15, Style: right},
			{Header: "Associated Wine", Key: "associatedWine", Width: 35},
			{Header: "Associated Category", Key: "associatedCategory", Width: 18},
			{Header: "Associated Country", Key: "associatedCountry", Width: 15},
			{Header: "Co-Purchases", Key: "count", Width: 15, Style: right},
			{
				Header: "Confidence %",
				Key:    "confidence",
				Width:  15,
				Expr:   "row.pct != nil ? row.pct / 100 : nil",
				Style:  right.With(xlexport.CellStyle{NumFmt: "0.0%"}),
			},
		},
		Formatters: []xlexport.Formatter{
			{When: "row.first == true && row.none != true", Columns: []string{"wine", "category"}, Style: th.Label()},
			{When: "row.none == true", Columns: []string{"associatedWine"}, Style: xlexport.CellStyle{Italic: true}},
			{When: "row.pct != nil && row.pct >= 70", Columns: []string{"confidence"}, Style: xlexport.CellStyle{Fill: th.Mint, Bold: true}},
			{When: "row.pct != nil && row.pct >= 50 && row.pct < 70", Columns: []string{"confidence"}, Style: xlexport.CellStyle{Fill: th.Sand}},
		},
	})
}

func categoryPatterns(sw *xlexport.SheetWriter, th xlexport.Theme, cats []CategoryAssociation) {
	var rows []map[string]any
	for _, c := range cats {
		for i, a := range c.Associations {
			rec := map[string]any{"associated": a.Category, "count": a.Count}
			if i == 0 {
				rec["base"] = c.Category
			}
			rows = append(rows, rec)
		}
		rows = append(rows, map[string]any{})
	}
	sw.Freeze(1).Table(xlexport.TableSpec{
		HeaderRow:    1,
		HeaderStyle:  productHeader(th, th.Pink),
		HeaderHeight: 25,
		Rows:         rows,
		Columns: []xlexport.Column{
			{Header: "Base Category", Key: "base", Width: 25},
			{Header: "Associated Category", Key: "associated", Width: 25},
			{Header: "Co-Purchase Count", Key: "count", Width: 20, Style: xlexport.CellStyle{HAlign: "right"}},
		},
		Formatters: []xlexport.Formatter{
			{When: "row.base != nil", Columns: []string{"base"}, Style: xlexport.CellStyle{Bold: true, FontColor: th.Pink}},
		},
	})
}

func topWines(sw *xlexport.SheetWriter, th xlexport.Theme, wines []WinePerformance) {
	var sales, quantity int
	var revenue float64
	rows := make([]map[string]any, len(wines))
	for i, w := range wines {
		sales += w.TotalSales
		quantity += w.TotalQuantity
		revenue += w.TotalRevenue
		rows[i] = map[string]any{
			"wine":            w.Wine,
			"category":        w.Category,
			"country":         w.Country,
			"totalSales":      w.TotalSales,
			"totalRevenue":    w.TotalRevenue,
			"totalQuantity":   w.TotalQuantity,
			"uniqueCustomers": w.UniqueCustomers,
			"avgSaleAmount":   w.AvgSaleAmount,
		}
	}

	formatters := append([]xlexport.Formatter{
		{When: "index < 3", Columns: []string{"rank", "wine"}, Style: th.Label()},
		{When: "index == 0", Columns: []string{"rank"}, Style: xlexport.CellStyle{Size: 12}},
	}, medals(th, "rank")...)

	right := xlexport.CellStyle{HAlign: "right"}
	money := right.With(xlexport.CellStyle{NumFmt: currencyFmt})
	table := xlexport.TableSpec{
		HeaderRow:    1,
		HeaderStyle:  productHeader(th, th.Amber),
		HeaderHeight: 25,
		RowHeight:    20,
		Rows:         rows,
		Formatters:   formatters,
		Columns: []xlexport.Column{
			{Header: "Rank", Key: "rank", Width: 8, Expr: "index + 1", Style: xlexport.CellStyle{HAlign: "center"}},
			{Header: "Wine", Key: "wine", Width: 35},
			{Header: "Category", Key: "category", Width: 15},
			{Header: "Country", Key: "country", Width: 15},
			{Header: "Total Sales", Key: "totalSales", Width: 12, Style: right},
			{Header: "Total Revenue", Key: "totalRevenue", Width: 15, Style: money.With(th.Signed(0))},
			{Header: "Total Quantity", Key: "totalQuantity", Width: 15, Style: right},
			{Header: "Unique Customers", Key: "uniqueCustomers", Width: 15, Style: right},
			{Header: "Avg Sale Amount", Key: "avgSaleAmount", Width: 15, Style: money},
		},
	}
	sw.Freeze(1).Table(table)

	r := table.LastDataRow() + 2
	totals := xlexport.CellStyle{Fill: th.Cream, Bold: true}
	sw.StyleRange(xlexport.Cell(0, r), xlexport.Cell(8, r), totals).
		Set(xlexport.Cell(0, r), "TOTAL", totals).
		Set(xlexport.Cell(4, r), sales, totals.With(right)).
		Set(xlexport.Cell(5, r), revenue, totals.With(money).With(th.Signed(0))).
		Set(xlexport.Cell(6, r), quantity, totals.With(right)).
		RowHeight(r, 25)
}
