package reports

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javajack/xlexport"
)

// TopItem is a ranked preference with its purchase count.
type TopItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GenderProfile summarizes the customers of one gender.
type GenderProfile struct {
	Gender         string    `json:"gender"`
	CustomerCount  int       `json:"customerCount"`
	TopCategories  []TopItem `json:"topCategories"`
	TopVarieties   []TopItem `json:"topVarieties"`
	TopCountries   []TopItem `json:"topCountries"`
	TopPriceRanges []TopItem `json:"topPriceRanges"`
}

// AgeProfile summarizes the customers of one age group.
type AgeProfile struct {
	AgeGroup      string    `json:"ageGroup"`
	CustomerCount int       `json:"customerCount"`
	AvgAge        float64   `json:"avgAge"`
	TopCategories []TopItem `json:"topCategories"`
	TopVarieties  []TopItem `json:"topVarieties"`
}

// CombinedProfile summarizes a gender and age group pair.
type CombinedProfile struct {
	Segment       string    `json:"segment"`
	CustomerCount int       `json:"customerCount"`
	TopCategories []TopItem `json:"topCategories"`
	TopVarieties  []TopItem `json:"topVarieties"`
}

// CustomerSegmentationPayload is the body of the customer segmentation export.
type CustomerSegmentationPayload struct {
	GenderSegments   []GenderProfile   `json:"genderSegments"`
	AgeSegments      []AgeProfile      `json:"ageSegments"`
	CombinedSegments []CombinedProfile `json:"combinedSegments"`
}

const notAvailable = "N/A"

func top(items []TopItem) (string, int) {
	if len(items) == 0 {
		return notAvailable, 0
	}
	return items[0].Name, items[0].Count
}

// shareExpr is the market share of a row's customers within the table total.
const shareExpr = "ratio(row.customerCount, total)"

// CustomerSegmentation builds the four-sheet segmentation workbook: executive
// summary, gender, age and combined analyses.
func CustomerSegmentation(p CustomerSegmentationPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindCustomerSegmentation), opts...)
	doc.Filename = filename("customer-segmentation-analysis", now)
	th := doc.Builder.Theme()

	executiveSummary(doc.Builder.Sheet("Executive Summary"), th, p, now)
	genderAnalysis(doc.Builder.Sheet("Gender Analysis"), th, p.GenderSegments)
	ageAnalysis(doc.Builder.Sheet("Age Analysis"), th, p.AgeSegments)
	combinedAnalysis(doc.Builder.Sheet("Combined Analysis"), th, p.CombinedSegments)
	return finish(doc)
}

func executiveSummary(sw *xlexport.SheetWriter, th xlexport.Theme, p CustomerSegmentationPayload, now time.Time) {
	sw.Freeze(4).
		Title("👥 Customer Segmentation Analysis", "G", th.Title(th.Purple).With(xlexport.CellStyle{Size: 20}), 40).
		Merge("A2", "G2").
		Set("A2", "Wine Preferences Across Demographics",
			xlexport.CellStyle{Size: 12, Italic: true, FontColor: th.Muted, HAlign: "center"}).
		RowHeight(2, 20).
		Merge("A3", "G3").
		Set("A3", generated(now), xlexport.CellStyle{Size: 10, Italic: true, HAlign: "center"})

	sw.Merge("A5", "G5").
		Set("A5", "📊 KEY METRICS", xlexport.CellStyle{
			Size: 16, Bold: true, FontColor: th.Purple, Fill: th.LightPurple, HAlign: "center", VAlign: "center",
		}).
		RowHeight(5, 30)

	total := 0
	for _, g := range p.GenderSegments {
		total += g.CustomerCount
	}
	largestName := notAvailable
	if g, ok := largestGender(p.GenderSegments); ok && g.Gender != "" {
		largestName = g.Gender
	}
	metrics := []struct {
		label string
		value any
		color string
	}{
		{"Total Customers Analyzed", total, th.Purple},
		{"Gender Segments", len(p.GenderSegments), th.Pink},
		{"Age Groups", len(p.AgeSegments), th.Amber},
		{"Combined Segments", len(p.CombinedSegments), th.Green},
		{"Most Popular Category", mostPopularCategory(p.GenderSegments), th.LineColor},
		{"Largest Segment", largestName, th.BarColor},
	}
	label := xlexport.CellStyle{Bold: true, Size: 12, Fill: th.StripeCool, Border: th.Border, VAlign: "center", Indent: 1}
	value := xlexport.CellStyle{Bold: true, Size: 14, HAlign: "center", VAlign: "center", Fill: th.OnPrimary, Border: th.Border, NumFmt: "#,##0"}
	row := 6
	for _, m := range metrics {
		sw.RowHeight(row, 25).
			Merge(xlexport.Cell(0, row), xlexport.Cell(3, row)).
			Set(xlexport.Cell(0, row), m.label, label).
			Merge(xlexport.Cell(4, row), xlexport.Cell(6, row)).
			Set(xlexport.Cell(4, row), m.value, value.With(xlexport.CellStyle{FontColor: m.color}))
		row++
	}
	sw.ColWidth("A", 30).ColWidth("E", 25)

	row += 2
	sw.RowHeight(row, 30).
		Merge(xlexport.Cell(0, row), xlexport.Cell(6, row)).
		Set(xlexport.Cell(0, row), "💡 KEY INSIGHTS", th.Title(th.Green))
	note := xlexport.CellStyle{Size: 11, VAlign: "center", Wrap: true, Indent: 1, Fill: th.LightGreen, Border: th.Border}
	for _, in := range segmentInsights(p.GenderSegments, p.AgeSegments) {
		row++
		sw.RowHeight(row, 30).
			Merge(xlexport.Cell(0, row), xlexport.Cell(6, row)).
			Set(xlexport.Cell(0, row), "• "+in, note)
	}
}

// headerStyle is the bordered header of the analysis sheets.
func headerStyle(th xlexport.Theme, fill string) xlexport.CellStyle {
	return th.Header(fill).With(xlexport.CellStyle{Size: 11, Border: "000000"})
}

func genderAnalysis(sw *xlexport.SheetWriter, th xlexport.Theme, segs []GenderProfile) {
	total := 0
	rows := make([]map[string]any, len(segs))
	for i, s := range segs {
		total += s.CustomerCount
		cat, catN := top(s.TopCategories)
		variety, varietyN := top(s.TopVarieties)
		price, priceN := top(s.TopPriceRanges)
		rows[i] = map[string]any{
			"gender":        s.Gender,
			"customerCount": s.CustomerCount,
			"topCategory":   cat,
			"categoryCount": catN,
			"topVariety":    variety,
			"varietyCount":  varietyN,
			"topPriceRange": price,
			"priceCount":    priceN,
		}
	}
	centred := xlexport.CellStyle{HAlign: "center", VAlign: "center"}
	middle := xlexport.CellStyle{VAlign: "center"}
	table := xlexport.TableSpec{
		HeaderRow:    1,
		HeaderStyle:  headerStyle(th, th.Purple),
		HeaderHeight: 35,
		RowHeight:    25,
		Stripe:       th.StripeCool,
		Rows:         rows,
		Vars:         map[string]any{"total": total},
		Columns: []xlexport.Column{
			{Header: "Gender", Key: "gender", Width: 15, Style: xlexport.CellStyle{Bold: true, Size: 12, VAlign: "center"}},
			{Header: "Customer Count", Key: "customerCount", Width: 15, Style: centred.With(xlexport.CellStyle{Bold: true})},
			{Header: "Market Share %", Key: "share", Width: 15, Expr: shareExpr, Style: centred.With(xlexport.CellStyle{NumFmt: "0.0%"})},
			{Header: "Top Category", Key: "topCategory", Width: 20, Style: xlexport.CellStyle{Bold: true, FontColor: th.Green, VAlign: "center"}},
			{Header: "Category Purchases", Key: "categoryCount", Width: 18, Style: centred},
			{Header: "Top Variety", Key: "topVariety", Width: 25, Style: middle},
			{Header: "Variety Count", Key: "varietyCount", Width: 15, Style: centred},
			{Header: "Top Price Range", Key: "topPriceRange", Width: 18, Style: middle},
			{Header: "Price Range Count", Key: "priceCount", Width: 18, Style: centred},
		},
		Formatters: []xlexport.Formatter{
			{When: "index == 0", Columns: []string{"gender"}, Style: xlexport.CellStyle{FontColor: th.LineColor}},
			{When: "index > 0", Columns: []string{"gender"}, Style: xlexport.CellStyle{FontColor: th.Pink}},
		},
	}
	sw.Freeze(1).Table(table)

	row := len(segs) + 4
	sw.Merge(xlexport.Cell(0, row), xlexport.Cell(8, row)).
		Set(xlexport.Cell(0, row), "📋 Detailed Preferences by Gender", th.Title(th.Pink).With(xlexport.CellStyle{Size: 14})).
		RowHeight(row, 30)
	row++
	heading := xlexport.CellStyle{Bold: true, Size: 12, FontColor: th.Purple, Fill: th.LightPurple, VAlign: "center", Indent: 1}
	for _, s := range segs {
		sw.Merge(xlexport.Cell(0, row), xlexport.Cell(8, row)).
			Set(xlexport.Cell(0, row), s.Gender+" - Top 5 Categories", heading).
			RowHeight(row, 25)
		row++
		for i, c := range s.TopCategories[:min(5, len(s.TopCategories))] {
			rank := xlexport.CellStyle{Bold: true, HAlign: "center", VAlign: "center"}
			if fill, ok := th.Medal(i + 1); ok {
				rank.Fill = fill
			}
			sw.RowHeight(row, 20).
				Set(xlexport.Cell(0, row), fmt.Sprintf("#%d", i+1), rank).
				Set(xlexport.Cell(1, row), c.Name, middle).
				Set(xlexport.Cell(2, row), c.Count, centred)
			row++
		}
		row++
	}
}

func ageAnalysis(sw *xlexport.SheetWriter, th xlexport.Theme, segs []AgeProfile) {
	total := 0
	rows := make([]map[string]any, len(segs))
	for i, s := range segs {
		total += s.CustomerCount
		cat, catN := top(s.TopCategories)
		variety, varietyN := top(s.TopVarieties)
		rows[i] = map[string]any{
			"ageGroup":      s.AgeGroup,
			"customerCount": s.CustomerCount,
			"avgAge":        s.AvgAge,
			"topCategory":   cat,
			"categoryCount": catN,
			"topVariety":    variety,
			"varietyCount":  varietyN,
		}
	}
	centred := xlexport.CellStyle{HAlign: "center", VAlign: "center"}
	sw.Freeze(1).Table(xlexport.TableSpec{
		HeaderRow:    1,
		HeaderStyle:  headerStyle(th, th.Amber),
		HeaderHeight: 35,
		RowHeight:    25,
		Stripe:       th.LightAmber,
		Rows:         rows,
		Vars:         map[string]any{"total": total},
		Columns: []xlexport.Column{
			{Header: "Age Group", Key: "ageGroup", Width: 15, Style: xlexport.CellStyle{Bold: true, Size: 12, VAlign: "center"}},
			{Header: "Customer Count", Key: "customerCount", Width: 15, Style: centred.With(xlexport.CellStyle{Bold: true})},
			{Header: "Market Share %", Key: "share", Width: 15, Expr: shareExpr, Style: centred.With(xlexport.CellStyle{NumFmt: "0.0%"})},
			{Header: "Avg Age", Key: "avgAge", Width: 12, Style: centred.With(xlexport.CellStyle{NumFmt: "0.0"})},
			{Header: "Top Category", Key: "topCategory", Width: 20, Style: xlexport.CellStyle{Bold: true, FontColor: th.Green, VAlign: "center"}},
			{Header: "Category Purchases", Key: "categoryCount", Width: 18, Style: centred},
			{Header: "Top Variety", Key: "topVariety", Width: 25, Style: xlexport.CellStyle{VAlign: "center"}},
			{Header: "Variety Count", Key: "varietyCount", Width: 15, Style: centred},
		},
	})
}

// medals fills the key column of the first three ranks, read from row.rank.
func medals(th xlexport.Theme, key string) []xlexport.Formatter {
	var out []xlexport.Formatter
	for rank := 1; ; rank++ {
		fill, ok := th.Medal(rank)
		if !ok {
			return out
		}
		out = append(out, xlexport.Formatter{
			When:    fmt.Sprintf("row.rank == %d", rank),
			Columns: []string{key},
			Style:   xlexport.CellStyle{Fill: fill},
		})
	}
}

// rankedCombined orders segments by customer count, largest first. Ties keep
// their payload order.
func rankedCombined(segs []CombinedProfile) []CombinedProfile {
	out := slices.Clone(segs)
	slices.SortStableFunc(out, func(a, b CombinedProfile) int {
		return cmp.Compare(b.CustomerCount, a.CustomerCount)
	})
	return out
}

func combinedAnalysis(sw *xlexport.SheetWriter, th xlexport.Theme, segs []CombinedProfile) {
	total := 0
	ranked := rankedCombined(segs)
	rows := make([]map[string]any, len(ranked))
	for i, s := range ranked {
		total += s.CustomerCount
		cat, catN := top(s.TopCategories)
		variety, varietyN := top(s.TopVarieties)
		rows[i] = map[string]any{
			"segment":       s.Segment,
			"customerCount": s.CustomerCount,
			"topCategory":   cat,
			"categoryCount": catN,
			"topVariety":    variety,
			"varietyCount":  varietyN,
		}
	}
	centred := xlexport.CellStyle{HAlign: "center", VAlign: "center"}
	sw.Freeze(1).Table(xlexport.TableSpec{
		HeaderRow:    1,
		HeaderStyle:  headerStyle(th, th.Green),
		HeaderHeight: 35,
		RowHeight:    25,
		Stripe:       th.LightGreen,
		Rows:         rows,
		Vars:         map[string]any{"total": total},
		Formatters:   medals(th, "rank"),
		Columns: []xlexport.Column{
			{Header: "Segment (Gender + Age)", Key: "segment", Width: 30, Style: xlexport.CellStyle{Bold: true, Size: 11, VAlign: "center"}},
			{Header: "Customer Count", Key: "customerCount", Width: 15, Style: centred.With(xlexport.CellStyle{Bold: true})},
			{Header: "Market Share %", Key: "share", Width: 15, Expr: shareExpr, Style: centred.With(xlexport.CellStyle{NumFmt: "0.0%"})},
			{Header: "Rank", Key: "rank", Width: 10, Expr: "index + 1", Style: centred.With(xlexport.CellStyle{Bold: true})},
			{Header: "Top Category", Key: "topCategory", Width: 20, Style: xlexport.CellStyle{FontColor: th.Green, VAlign: "center"}},
			{Header: "Category Purchases", Key: "categoryCount", Width: 18, Style: centred},
			{Header: "Top Variety", Key: "topVariety", Width: 25, Style: xlexport.CellStyle{VAlign: "center"}},
			{Header: "Variety Count", Key: "varietyCount", Width: 15, Style: centred},
		},
	})
}

// mostPopularCategory sums category purchases across genders. Ties go to the
// category seen first.
func mostPopularCategory(segs []GenderProfile) string {
	counts := make(map[string]int)
	var order []string
	for _, s := range segs {
		for _, c := range s.TopCategories {
			if _, ok := counts[c.Name]; !ok {
				order = append(order, c.Name)
			}
			counts[c.Name] += c.Count
		}
	}
	best, bestN := "", 0
	for _, name := range order {
		if counts[name] > bestN {
			best, bestN = name, counts[name]
		}
	}
	return or(best, notAvailable)
}

func largestGender(segs []GenderProfile) (GenderProfile, bool) {
	if len(segs) == 0 {
		return GenderProfile{}, false
	}
	largest := segs[0]
	for _, s := range segs[1:] {
		if s.CustomerCount > largest.CustomerCount {
			largest = s
		}
	}
	return largest, true
}

func segmentInsights(genders []GenderProfile, ages []AgeProfile) []string {
	var out []string
	total := 0
	for _, g := range genders {
		total += g.CustomerCount
		if len(g.TopCategories) > 0 {
			c := g.TopCategories[0]
			out = append(out, fmt.Sprintf("%s customers show strong preference for %s wines (%d purchases)", g.Gender, c.Name, c.Count))
		}
	}

	find := func(marks ...string) (AgeProfile, bool) {
		for _, a := range ages {
			for _, m := range marks {
				if strings.Contains(a.AgeGroup, m) {
					return a, true
				}
			}
		}
		return AgeProfile{}, false
	}
	if a, ok := find("55", "65"); ok && len(a.TopCategories) > 0 {
		out = append(out, fmt.Sprintf("Older customers (%s) prefer %s wines", a.AgeGroup, a.TopCategories[0].Name))
	}
	if a, ok := find("18", "25"); ok && len(a.TopCategories) > 0 {
		out = append(out, fmt.Sprintf("Younger customers (%s) favor %s wines", a.AgeGroup, a.TopCategories[0].Name))
	}

	if largest, ok := largestGender(genders); ok && total > 0 {
		share := float64(largest.CustomerCount) / float64(total) * 100
		out = append(out, fmt.Sprintf("%s customers represent %.1f%% of total customer base", largest.Gender, share))
	}
	return out
}
