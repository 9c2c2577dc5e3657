package xlexport

import (
	"strings"

	"github.com/beevik/etree"
)

// PackageInfo lists the sheets of a package and the charts drawn on each.
type PackageInfo struct {
	Parts  int
	Sheets []SheetInfo
}

// SheetInfo describes one worksheet.
type SheetInfo struct {
	SheetEntry
	Drawing string
	Charts  []ChartInfo
}

// ChartInfo describes a chart part found through a worksheet's drawing.
type ChartInfo struct {
	Part   string
	Kind   ChartKind
	Title  string
	Series []SeriesInfo
}

// SeriesInfo holds a series name and its range formulas.
type SeriesInfo struct {
	Name       string
	Categories string
	Values     string
}

// ChartCount totals the charts across all sheets.
func (p PackageInfo) ChartCount() int {
	n := 0
	for _, s := range p.Sheets {
		n += len(s.Charts)
	}
	return n
}

// Inspect follows workbook, worksheet and drawing relationships to list every chart.
func Inspect(pkg *Package) (PackageInfo, error) {
	info := PackageInfo{Parts: len(pkg.names)}
	sheets, err := pkg.Sheets()
	if err != nil {
		return info, err
	}
	for _, entry := range sheets {
		si := SheetInfo{SheetEntry: entry}
		if entry.Part != "" {
			if err := inspectSheet(pkg, &si); err != nil {
				return info, err
			}
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info, nil
}

func inspectSheet(pkg *Package, si *SheetInfo) error {
	data, ok := pkg.Part(si.Part)
	if !ok {
		return nil
	}
	doc, err := readXML(data)
	if err != nil {
		return &PatchError{Part: si.Part, Err: err}
	}
	drawingEl := doc.Root().SelectElement("drawing")
	if drawingEl == nil {
		return nil
	}
	relsData, _ := pkg.Part(RelsPartName(si.Part))
	rels, err := parseRelationships(relsData)
	if err != nil {
		return &PatchError{Part: RelsPartName(si.Part), Err: err}
	}
	rel, ok := rels.ByID(relIDAttr(drawingEl))
	if !ok {
		return nil
	}
	si.Drawing = ResolveTarget(si.Part, rel.Target)

	drawingData, ok := pkg.Part(si.Drawing)
	if !ok {
		return nil
	}
	drawing, err := readXML(drawingData)
	if err != nil {
		return &PatchError{Part: si.Drawing, Err: err}
	}
	dRelsData, _ := pkg.Part(RelsPartName(si.Drawing))
	dRels, err := parseRelationships(dRelsData)
	if err != nil {
		return &PatchError{Part: RelsPartName(si.Drawing), Err: err}
	}

	for _, frame := range drawing.Root().FindElements(".//graphicData/chart") {
		chartRel, ok := dRels.ByID(relIDAttr(frame))
		if !ok {
			continue
		}
		part := ResolveTarget(si.Drawing, chartRel.Target)
		chartData, ok := pkg.Part(part)
		if !ok {
			continue
		}
		ci, err := ParseChart(chartData)
		if err != nil {
			return &PatchError{Part: part, Err: err}
		}
		ci.Part = part
		si.Charts = append(si.Charts, ci)
	}
	return nil
}

// ParseChart reads the kind, title and series of a chartSpace part.
func ParseChart(data []byte) (ChartInfo, error) {
	doc, err := readXML(data)
	if err != nil {
		return ChartInfo{}, err
	}
	var ci ChartInfo
	root := doc.Root()
	if title := root.FindElement("./chart/title"); title != nil {
		ci.Title = joinText(title)
	}
	plot := root.FindElement("./chart/plotArea")
	if plot == nil {
		return ci, nil
	}

	bars := plot.SelectElements("barChart")
	lines := plot.SelectElements("lineChart")
	for _, group := range append(bars, lines...) {
		for _, ser := range group.SelectElements("ser") {
			si := SeriesInfo{}
			if tx := ser.SelectElement("tx"); tx != nil {
				si.Name = joinText(tx)
			}
			if f := ser.FindElement("./cat//f"); f != nil {
				si.Categories = f.Text()
			}
			if f := ser.FindElement("./val//f"); f != nil {
				si.Values = f.Text()
			}
			ci.Series = append(ci.Series, si)
		}
	}

	// Multi-line series fill their markers; a clustered bar part carries no
	// such mark, so a single-series multi-bar reads back as bar.
	switch {
	case len(bars) > 0 && len(lines) > 0:
		ci.Kind = ChartComposed
	case len(lines) > 0 && filledMarkers(lines):
		ci.Kind = ChartMultiLine
	case len(lines) > 0:
		ci.Kind = ChartLine
	case len(bars) > 0 && len(ci.Series) > 1:
		ci.Kind = ChartMultiBar
	case len(bars) > 0:
		ci.Kind = ChartBar
	}
	return ci, nil
}

func filledMarkers(groups []*etree.Element) bool {
	for _, g := range groups {
		if g.FindElement("./ser/marker/spPr") != nil {
			return true
		}
	}
	return false
}

func joinText(el *etree.Element) string {
	var parts []string
	for _, t := range el.FindElements(".//t") {
		parts = append(parts, t.Text())
	}
	if len(parts) == 0 {
		for _, v := range el.FindElements(".//v") {
			parts = append(parts, v.Text())
		}
	}
	return strings.Join(parts, "")
}
