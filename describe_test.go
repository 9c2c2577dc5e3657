package xlexport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_NoCharts(t *testing.T) {
	pkg := openWorkbook(t, "Gender Segmentation", "Insights")
	info, err := Inspect(pkg)
	require.NoError(t, err)
	assert.Equal(t, 0, info.ChartCount())
	require.Len(t, info.Sheets, 2)
	assert.Equal(t, "Insights", info.Sheets[1].Name)
	assert.Empty(t, info.Sheets[1].Drawing)
}

func TestInspect_ChartDetails(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	_, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)

	info, err := Inspect(pkg)
	require.NoError(t, err)
	want := []ChartInfo{{
		Part:  "xl/charts/chart1.xml",
		Kind:  ChartLine,
		Title: "Sales Trends - Red",
		Series: []SeriesInfo{{
			Name:       "Total Amount",
			Categories: "'Sales Trends'!$A$6:$A$9",
			Values:     "'Sales Trends'!$D$6:$D$9",
		}},
	}}
	if diff := cmp.Diff(want, info.Sheets[0].Charts); diff != "" {
		t.Errorf("charts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "xl/drawings/drawing1.xml", info.Sheets[0].Drawing)
}

func TestDescribe(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends", "Notes")
	_, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)

	out, err := Describe(pkg)
	require.NoError(t, err)
	assert.Contains(t, out, "2 sheets, 1 charts")
	assert.Contains(t, out, `Sheet 1 "Sales Trends" (xl/worksheets/sheet1.xml)`)
	assert.Contains(t, out, `line chart "Sales Trends - Red" (xl/charts/chart1.xml)`)
	assert.Contains(t, out, `series "Total Amount": 'Sales Trends'!$A$6:$A$9 -> 'Sales Trends'!$D$6:$D$9 [4 points]`)
	assert.Contains(t, out, `Sheet 2 "Notes"`)
}
