package reports

import (
	"testing"

	"github.com/javajack/xlexport"
	"github.com/stretchr/testify/assert"
)

func productPayload() ProductPerformancePayload {
	return ProductPerformancePayload{
		WineAssociations: []WineAssociation{
			{
				Wine: "Malbec Reserva", WineCategory: "Red", WineCountry: "Argentina", TotalCustomers: 42,
				Associations: []Association{
					{AssociatedWine: "Cabernet Franc", AssociatedCategory: "Red", AssociatedCountry: "Chile", Count: 18, Confidence: 75},
					{AssociatedWine: "Torrontes", AssociatedCategory: "White", AssociatedCountry: "Argentina", Count: 9, Confidence: 55},
					{AssociatedWine: "Prosecco", AssociatedCategory: "Sparkling", AssociatedCountry: "Italy", Count: 3, Confidence: 12},
				},
			},
			{Wine: "Retsina", WineCategory: "White", WineCountry: "Greece", TotalCustomers: 4},
		},
		CategoryAssociations: []CategoryAssociation{
			{Category: "Red", Associations: []CategoryCount{{"White", 40}, {"Rose", 12}}},
		},
		WinePerformance: []WinePerformance{
			{Wine: "Malbec Reserva", TotalSales: 120, TotalRevenue: 4800, TotalQuantity: 150},
			{Wine: "Chianti", TotalSales: 80, TotalRevenue: 2400.5, TotalQuantity: 90},
			{Wine: "Rioja", TotalSales: 60, TotalRevenue: 1800, TotalQuantity: 70},
			{Wine: "Retsina", TotalSales: 5, TotalRevenue: 99.5, TotalQuantity: 6},
		},
	}
}

func TestProductPerformance_Associations(t *testing.T) {
	doc, err := ProductPerformance(productPayload(), testNow)
	r := render(t, doc, err)
	th := xlexport.DefaultTheme()
	const sheet = "Wine Associations"

	assert.Equal(t, "product-performance-2024-03-05.xlsx", doc.Filename)
	assert.Equal(t, "Malbec Reserva", r.cell(t, sheet, "A2"))
	assert.Equal(t, "", r.cell(t, sheet, "A3"))
	assert.Equal(t, "0.75", r.cell(t, sheet, "I2"))
	assert.Equal(t, th.Mint, r.fill(t, sheet, "I2"))
	assert.Equal(t, th.Sand, r.fill(t, sheet, "I3"))
	assert.Equal(t, "", r.fill(t, sheet, "I4"))
	assert.True(t, r.style(t, sheet, "A2").Font.Bold)

	// separator row, then the wine without associations
	assert.Equal(t, "", r.cell(t, sheet, "A5"))
	assert.Equal(t, "Retsina", r.cell(t, sheet, "A6"))
	assert.Equal(t, "No associations found", r.cell(t, sheet, "E6"))
	assert.True(t, r.style(t, sheet, "E6").Font.Italic)
	assert.Equal(t, "", r.cell(t, sheet, "I6"))
}

func TestProductPerformance_TopWines(t *testing.T) {
	doc, err := ProductPerformance(productPayload(), testNow)
	r := render(t, doc, err)
	th := xlexport.DefaultTheme()
	const sheet = "Top Wine Performance"

	assert.Equal(t, "1", r.cell(t, sheet, "A2"))
	assert.Equal(t, th.Gold, r.fill(t, sheet, "A2"))
	assert.Equal(t, th.Bronze, r.fill(t, sheet, "A4"))
	assert.Equal(t, "", r.fill(t, sheet, "A5"))
	assert.True(t, r.style(t, sheet, "B4").Font.Bold)

	assert.Equal(t, "TOTAL", r.cell(t, sheet, "A7"))
	assert.Equal(t, "265", r.cell(t, sheet, "E7"))
	assert.Equal(t, "9100", r.cell(t, sheet, "F7"))
	assert.Equal(t, "316", r.cell(t, sheet, "G7"))
	assert.Equal(t, th.Cream, r.fill(t, sheet, "I7"))
}

func TestProductPerformance_Overview(t *testing.T) {
	doc, err := ProductPerformance(productPayload(), testNow)
	r := render(t, doc, err)

	assert.Equal(t, "KEY METRICS", r.cell(t, "Overview", "A4"))
	assert.Equal(t, "2", r.cell(t, "Overview", "B5"))
	assert.Equal(t, "1.5", r.cell(t, "Overview", "B6"))
	assert.Equal(t, "Malbec Reserva", r.cell(t, "Overview", "B9"))
	assert.Equal(t, "Red", r.cell(t, "Category Patterns", "A2"))
	assert.Equal(t, "", r.cell(t, "Category Patterns", "A3"))
	assert.Equal(t, "Rose", r.cell(t, "Category Patterns", "B3"))
}
