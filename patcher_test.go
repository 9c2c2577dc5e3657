package xlexport

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func salesChart() ChartSpec {
	return LineChart("Sales Trends", "A", 6, 9, "Sales Trends - Red", Series{Name: "Total Amount", Column: "D", Color: "3B82F6"})
}

func openWorkbook(t *testing.T, sheets ...string) *Package {
	t.Helper()
	pkg, err := OpenPackage(newWorkbook(t, sheets...))
	require.NoError(t, err)
	return pkg
}

func partString(t *testing.T, pkg *Package, name string) string {
	t.Helper()
	data, ok := pkg.Part(name)
	require.True(t, ok, "missing part %s", name)
	return string(data)
}

func TestAttach_SingleChart(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	report, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Requested)
	assert.Equal(t, 1, report.Attached)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, []string{"xl/charts/chart1.xml", "xl/drawings/drawing1.xml", "xl/drawings/_rels/drawing1.xml.rels"}, report.Parts)

	ws := partString(t, pkg, "xl/worksheets/sheet1.xml")
	assert.Contains(t, ws, `<drawing r:id="rId1"/>`)
	wsRels := partString(t, pkg, "xl/worksheets/_rels/sheet1.xml.rels")
	assert.Contains(t, wsRels, `Target="../drawings/drawing1.xml"`)
	assert.Contains(t, wsRels, RelTypeDrawing)
	assert.Contains(t, partString(t, pkg, "xl/drawings/_rels/drawing1.xml.rels"), `Target="../charts/chart1.xml"`)

	ct := partString(t, pkg, ContentTypesPart)
	assert.Equal(t, 1, strings.Count(ct, `PartName="/xl/charts/chart1.xml"`))
	assert.Equal(t, 1, strings.Count(ct, `PartName="/xl/drawings/drawing1.xml"`))
	assert.Contains(t, ct, ContentTypeChart)
	assert.Contains(t, ct, ContentTypeDrawing)

	out, err := pkg.Bytes()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sales Trends"}, f.GetSheetList())
	v, err := f.GetCellValue("Sales Trends", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Sales Trends", v)
}

func TestAttach_MissingSheetSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pkg := openWorkbook(t, "Only")
	before := pkg.Clone()

	report, err := NewPatcher(WithLogger(zap.New(core))).Attach(pkg, ChartPlacement{SheetIndex: 3, Chart: salesChart()})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Requested)
	assert.Equal(t, 0, report.Attached)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 3, report.Skipped[0].SheetIndex)

	assert.Equal(t, before.Names(), pkg.Names())
	for _, n := range before.Names() {
		a, _ := before.Part(n)
		b, _ := pkg.Part(n)
		assert.Equal(t, a, b, n)
	}
	assert.Equal(t, 1, logs.FilterMessage("chart skipped").Len())
}

func TestAttach_RelIDAfterExisting(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	rels := newRelationships()
	rels.Add(Relationship{ID: "rId1", Type: nsRelationships + "/hyperlink", Target: "https://example.com", TargetMode: "External"})
	rels.Add(Relationship{ID: "rId3", Type: nsRelationships + "/hyperlink", Target: "https://example.org", TargetMode: "External"})
	data, err := rels.Bytes()
	require.NoError(t, err)
	pkg.SetPart("xl/worksheets/_rels/sheet1.xml.rels", data)

	_, err = NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)

	assert.Contains(t, partString(t, pkg, "xl/worksheets/sheet1.xml"), `<drawing r:id="rId4"/>`)
	got, err := parseRelationships([]byte(partString(t, pkg, "xl/worksheets/_rels/sheet1.xml.rels")))
	require.NoError(t, err)
	assert.Len(t, got.All(), 3)
	rel, ok := got.ByID("rId4")
	require.True(t, ok)
	assert.Equal(t, RelTypeDrawing, rel.Type)
}

func TestAttach_DrawingPrecedesTableParts(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	ws := partString(t, pkg, "xl/worksheets/sheet1.xml")
	pkg.SetPart("xl/worksheets/sheet1.xml", []byte(strings.Replace(ws, "</worksheet>", `<tableParts count="0"/><extLst/></worksheet>`, 1)))

	_, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)

	patched := partString(t, pkg, "xl/worksheets/sheet1.xml")
	d := strings.Index(patched, "<drawing ")
	tp := strings.Index(patched, "<tableParts")
	require.Greater(t, d, 0)
	assert.Less(t, d, tp)
	assert.Greater(t, d, strings.Index(patched, "</sheetData>"))
}

func TestAttach_SecondChartOnSameSheet(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	second := salesChart()
	second.Title = "Second"

	report, err := NewPatcher().Attach(pkg,
		ChartPlacement{SheetIndex: 1, Chart: salesChart()},
		ChartPlacement{SheetIndex: 1, Chart: second},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Attached)
	assert.False(t, pkg.Has("xl/drawings/drawing2.xml"))
	assert.True(t, pkg.Has("xl/charts/chart2.xml"))

	ws := partString(t, pkg, "xl/worksheets/sheet1.xml")
	assert.Equal(t, 1, strings.Count(ws, "<drawing "))

	drawing := partString(t, pkg, "xl/drawings/drawing1.xml")
	assert.Equal(t, 2, strings.Count(drawing, "<xdr:twoCellAnchor"))
	assert.Contains(t, drawing, `r:id="rId2"`)
	assert.Contains(t, drawing, `<xdr:row>41</xdr:row>`)
	assert.Contains(t, drawing, `id="3" name="Chart 2"`)

	info, err := Inspect(pkg)
	require.NoError(t, err)
	require.Len(t, info.Sheets, 1)
	require.Len(t, info.Sheets[0].Charts, 2)
	assert.Equal(t, "Second", info.Sheets[0].Charts[1].Title)
	assert.Equal(t, "xl/charts/chart2.xml", info.Sheets[0].Charts[1].Part)
}

func TestAttach_ExistingPictureDrawing(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Sales Trends"))
	require.NoError(t, f.AddPictureFromBytes("Sales Trends", "B2", &excelize.Picture{
		Extension: ".png",
		File:      onePixelPNG(t),
		Format:    &excelize.GraphicOptions{},
	}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	pkg, err := OpenPackage(buf.Bytes())
	require.NoError(t, err)
	require.True(t, pkg.Has("xl/drawings/drawing1.xml"))

	report, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)
	assert.Equal(t, []string{"xl/charts/chart1.xml"}, report.Parts)

	drawing := partString(t, pkg, "xl/drawings/drawing1.xml")
	assert.Contains(t, drawing, "<xdr:pic>")
	assert.Contains(t, drawing, "graphicData")

	out, err := pkg.Bytes()
	require.NoError(t, err)
	g, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer g.Close()
	pics, err := g.GetPictures("Sales Trends", "B2")
	require.NoError(t, err)
	assert.Len(t, pics, 1)
}

func TestAttach_ChartNumberTaken(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	pkg.SetPart("xl/charts/chart1.xml", []byte(`<c:chartSpace xmlns:c="`+nsChart+`"/>`))

	report, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 1, Chart: salesChart()})
	require.NoError(t, err)
	assert.Equal(t, "xl/charts/chart2.xml", report.Parts[0])
	assert.Contains(t, partString(t, pkg, "xl/drawings/_rels/drawing1.xml.rels"), `Target="../charts/chart2.xml"`)
}

func TestAttach_ErrorLeavesPackageUnchanged(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends", "Other")
	before := pkg.Names()

	bad := salesChart()
	bad.Kind = "pie"
	_, err := NewPatcher().Attach(pkg,
		ChartPlacement{SheetIndex: 1, Chart: salesChart()},
		ChartPlacement{SheetIndex: 2, Chart: bad},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownChartKind))
	assert.Equal(t, before, pkg.Names())
	assert.False(t, pkg.Has("xl/charts/chart1.xml"))
}

func TestAttach_SeveralSheets(t *testing.T) {
	pkg := openWorkbook(t, "Price Changes", "Sales Changes")
	report, err := NewPatcher().Attach(pkg,
		ChartPlacement{SheetIndex: 1, Chart: MultiBarChart("Price Changes", "A", 2, 3, "Price", "Price Change %",
			Series{Name: "Red", Column: "B"}, Series{Name: "White", Column: "C"})},
		ChartPlacement{SheetIndex: 2, Chart: MultiLineChart("Sales Changes", "A", 2, 3, "Sales", "Sales Change %", Series{Name: "Red", Column: "B"})},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Attached)
	assert.Contains(t, partString(t, pkg, "xl/worksheets/_rels/sheet2.xml.rels"), "../drawings/drawing2.xml")
	assert.Contains(t, partString(t, pkg, "xl/drawings/_rels/drawing2.xml.rels"), "../charts/chart2.xml")

	info, err := Inspect(pkg)
	require.NoError(t, err)
	assert.Equal(t, 2, info.ChartCount())
	assert.Equal(t, ChartMultiBar, info.Sheets[0].Charts[0].Kind)
	assert.Equal(t, ChartMultiLine, info.Sheets[1].Charts[0].Kind)
}

func TestAttach_PartsNamedAfterSheet(t *testing.T) {
	pkg := openWorkbook(t, "Price Changes", "Sales Changes")
	report, err := NewPatcher().Attach(pkg, ChartPlacement{SheetIndex: 2, Chart: salesChart()})
	require.NoError(t, err)
	assert.Equal(t, []string{"xl/charts/chart2.xml", "xl/drawings/drawing2.xml", "xl/drawings/_rels/drawing2.xml.rels"}, report.Parts)
	assert.False(t, pkg.Has("xl/charts/chart1.xml"))
	assert.False(t, pkg.Has("xl/drawings/drawing1.xml"))
	assert.Contains(t, partString(t, pkg, "xl/worksheets/_rels/sheet2.xml.rels"), "../drawings/drawing2.xml")

	info, err := Inspect(pkg)
	require.NoError(t, err)
	assert.Empty(t, info.Sheets[0].Charts)
	require.Len(t, info.Sheets[1].Charts, 1)
	assert.Equal(t, "xl/charts/chart2.xml", info.Sheets[1].Charts[0].Part)
}

func TestAttach_SkippedPlacementKeepsNumbering(t *testing.T) {
	pkg := openWorkbook(t, "Sales Trends")
	report, err := NewPatcher().Attach(pkg,
		ChartPlacement{SheetIndex: 5, Chart: salesChart()},
		ChartPlacement{SheetIndex: 1, Chart: salesChart()},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Attached)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, []string{"xl/charts/chart1.xml", "xl/drawings/drawing1.xml", "xl/drawings/_rels/drawing1.xml.rels"}, report.Parts)
	assert.False(t, pkg.Has("xl/charts/chart2.xml"))
}

func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}
