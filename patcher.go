package xlexport

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// worksheetDrawingSuccessors are the CT_Worksheet children that must follow <drawing>.
var worksheetDrawingSuccessors = map[string]bool{
	"legacyDrawing":   true,
	"legacyDrawingHF": true,
	"drawingHF":       true,
	"picture":         true,
	"oleObjects":      true,
	"controls":        true,
	"webPublishItems": true,
	"tableParts":      true,
	"extLst":          true,
}

// ChartPlacement asks for a chart on the worksheet at a 1-based sheet index.
type ChartPlacement struct {
	SheetIndex int
	Chart      ChartSpec
}

// SkippedChart records a placement that was not attached.
type SkippedChart struct {
	SheetIndex int
	Title      string
	Reason     string
}

// AttachReport summarizes a patching run.
type AttachReport struct {
	Requested int
	Attached  int
	Skipped   []SkippedChart
	Parts     []string // parts added to the package
}

// Patcher injects chart parts into an existing xlsx package.
type Patcher struct {
	opts *Options
}

// NewPatcher creates a Patcher.
func NewPatcher(opts ...Option) *Patcher {
	return &Patcher{opts: newOptions(opts)}
}

// Attach adds each placement's chart to its worksheet. A placement whose sheet
// does not exist is skipped and listed in the report. On error pkg is left untouched.
func (p *Patcher) Attach(pkg *Package, placements ...ChartPlacement) (AttachReport, error) {
	report := AttachReport{Requested: len(placements)}
	work := pkg.Clone()
	log := p.opts.logger

	for _, pl := range placements {
		wsPart, ok := work.WorksheetPart(pl.SheetIndex)
		if !ok {
			skip := SkippedChart{SheetIndex: pl.SheetIndex, Title: pl.Chart.Title, Reason: ErrSheetNotFound.Error()}
			report.Skipped = append(report.Skipped, skip)
			log.Warn("chart skipped",
				zap.Int("sheet_index", pl.SheetIndex),
				zap.String("title", pl.Chart.Title),
				zap.String("reason", skip.Reason))
			continue
		}

		added, err := attachOne(work, wsPart, pl.SheetIndex, pl.Chart)
		if err != nil {
			return AttachReport{Requested: len(placements)}, err
		}
		report.Attached++
		report.Parts = append(report.Parts, added...)
		log.Debug("chart attached",
			zap.String("worksheet", wsPart),
			zap.String("kind", string(pl.Chart.Kind)),
			zap.Strings("parts", added))
	}

	*pkg = *work
	return report, nil
}

// attachOne wires one chart into the worksheet part and returns the new part
// names. New parts are numbered after the sheet index n unless that name is taken.
func attachOne(pkg *Package, wsPart string, n int, spec ChartSpec) ([]string, error) {
	chartXML, err := spec.XML()
	if err != nil {
		return nil, err
	}
	chartPart := freePartName(pkg, "xl/charts/chart", n)

	wsData, _ := pkg.Part(wsPart)
	wsDoc, err := readXML(wsData)
	if err != nil {
		return nil, &PatchError{Part: wsPart, Err: err}
	}
	wsRelsPart := RelsPartName(wsPart)
	wsRelsData, _ := pkg.Part(wsRelsPart)
	wsRels, err := parseRelationships(wsRelsData)
	if err != nil {
		return nil, &PatchError{Part: wsRelsPart, Err: err}
	}

	var drawingPart string
	var created bool
	if existing := wsDoc.Root().SelectElement("drawing"); existing != nil {
		drawingPart, err = appendToDrawing(pkg, wsPart, wsRels, relIDAttr(existing), chartPart)
		if err != nil {
			return nil, err
		}
	} else {
		drawingPart = freePartName(pkg, "xl/drawings/drawing", n)
		if err := newDrawing(pkg, drawingPart, chartPart); err != nil {
			return nil, err
		}
		rid := wsRels.NextID()
		wsRels.Add(Relationship{ID: rid, Type: RelTypeDrawing, Target: RelativeTarget(wsPart, drawingPart)})
		if err := insertDrawingElement(wsDoc.Root(), rid); err != nil {
			return nil, &PatchError{Part: wsPart, Err: err}
		}
		wsOut, err := wsDoc.WriteToBytes()
		if err != nil {
			return nil, &PatchError{Part: wsPart, Err: err}
		}
		relsOut, err := wsRels.Bytes()
		if err != nil {
			return nil, &PatchError{Part: wsRelsPart, Err: err}
		}
		pkg.SetPart(wsPart, wsOut)
		pkg.SetPart(wsRelsPart, relsOut)
		created = true
	}
	pkg.SetPart(chartPart, chartXML)

	ctData, _ := pkg.Part(ContentTypesPart)
	ct, err := parseContentTypes(ctData)
	if err != nil {
		return nil, &PatchError{Part: ContentTypesPart, Err: err}
	}
	ct.AddOverride(chartPart, ContentTypeChart)
	ct.AddOverride(drawingPart, ContentTypeDrawing)
	ctOut, err := ct.Bytes()
	if err != nil {
		return nil, &PatchError{Part: ContentTypesPart, Err: err}
	}
	pkg.SetPart(ContentTypesPart, ctOut)

	added := []string{chartPart}
	if created {
		added = append(added, drawingPart, RelsPartName(drawingPart))
	}
	return added, nil
}

// freePartName returns prefix<n>.xml, or the next unused number after n.
func freePartName(pkg *Package, prefix string, n int) string {
	for {
		name := prefix + strconv.Itoa(n) + ".xml"
		if !pkg.Has(name) {
			return name
		}
		n++
	}
}

func newDrawing(pkg *Package, drawingPart, chartPart string) error {
	drawing, err := DrawingXML(DefaultChartRelID)
	if err != nil {
		return &PatchError{Part: drawingPart, Err: err}
	}
	rels, err := DrawingRelsXML(DefaultChartRelID, RelativeTarget(drawingPart, chartPart))
	if err != nil {
		return &PatchError{Part: RelsPartName(drawingPart), Err: err}
	}
	pkg.SetPart(drawingPart, drawing)
	pkg.SetPart(RelsPartName(drawingPart), rels)
	return nil
}

// insertDrawingElement adds <drawing r:id="rid"/> at its schema position.
func insertDrawingElement(root *etree.Element, rid string) error {
	prefix, err := nsPrefix(root, nsRelationships, "r")
	if err != nil {
		return err
	}
	el := etree.NewElement("drawing")
	el.Space = root.Space
	el.CreateAttr(prefix+":id", rid)

	for _, child := range root.ChildElements() {
		if worksheetDrawingSuccessors[child.Tag] {
			root.InsertChildAt(child.Index(), el)
			return nil
		}
	}
	root.AddChild(el)
	return nil
}

// appendToDrawing adds a chart frame to the drawing a worksheet already references.
func appendToDrawing(pkg *Package, wsPart string, wsRels *relationships, rid, chartPart string) (string, error) {
	rel, ok := wsRels.ByID(rid)
	if !ok {
		return "", &PatchError{Part: RelsPartName(wsPart), Err: fmt.Errorf("drawing relationship %q not found", rid)}
	}
	drawingPart := ResolveTarget(wsPart, rel.Target)
	data, ok := pkg.Part(drawingPart)
	if !ok {
		return "", &PatchError{Part: drawingPart, Err: fmt.Errorf("referenced drawing part missing")}
	}
	doc, err := readXML(data)
	if err != nil {
		return "", &PatchError{Part: drawingPart, Err: err}
	}

	relsPart := RelsPartName(drawingPart)
	relsData, _ := pkg.Part(relsPart)
	rels, err := parseRelationships(relsData)
	if err != nil {
		return "", &PatchError{Part: relsPart, Err: err}
	}
	chartRID := rels.NextID()
	rels.Add(Relationship{ID: chartRID, Type: RelTypeChart, Target: RelativeTarget(drawingPart, chartPart)})

	root := doc.Root()
	anchor, shapeID := nextAnchor(root)
	frag, err := anchorXML(anchor, shapeID, chartRID)
	if err != nil {
		return "", &PatchError{Part: drawingPart, Err: err}
	}
	fragDoc, err := readXML(frag)
	if err != nil {
		return "", &PatchError{Part: drawingPart, Err: err}
	}
	el := fragDoc.Root().SelectElement("twoCellAnchor")

	xdr, err := nsPrefix(root, nsSpreadsheetDrawing, "xdr")
	if err != nil {
		return "", &PatchError{Part: drawingPart, Err: err}
	}
	a, err := nsPrefix(root, nsDrawingMain, "a")
	if err != nil {
		return "", &PatchError{Part: drawingPart, Err: err}
	}
	respace(el, map[string]string{"xdr": xdr, "a": a})
	root.AddChild(el)

	out, err := doc.WriteToBytes()
	if err != nil {
		return "", &PatchError{Part: drawingPart, Err: err}
	}
	relsOut, err := rels.Bytes()
	if err != nil {
		return "", &PatchError{Part: relsPart, Err: err}
	}
	pkg.SetPart(drawingPart, out)
	pkg.SetPart(relsPart, relsOut)
	return drawingPart, nil
}

// nextAnchor places a new frame under the lowest existing anchor and picks an unused shape id.
func nextAnchor(root *etree.Element) (Anchor, int) {
	lowest := -1
	maxID := 1
	for _, anchor := range root.ChildElements() {
		for _, corner := range []string{"from", "to"} {
			if row := anchor.FindElement("./" + corner + "/row"); row != nil {
				if v, err := strconv.Atoi(row.Text()); err == nil && v > lowest {
					lowest = v
				}
			}
		}
		for _, nv := range anchor.FindElements(".//cNvPr") {
			if v, err := strconv.Atoi(nv.SelectAttrValue("id", "")); err == nil && v > maxID {
				maxID = v
			}
		}
	}
	if lowest < 0 {
		return DefaultAnchor, maxID + 1
	}
	from := AnchorPoint{Col: DefaultAnchor.From.Col, Row: lowest + 1}
	return Anchor{From: from, To: AnchorPoint{Col: DefaultAnchor.To.Col, Row: from.Row + DefaultAnchor.Height()}}, maxID + 1
}

func respace(el *etree.Element, prefixes map[string]string) {
	if to, ok := prefixes[el.Space]; ok {
		el.Space = to
	}
	for _, child := range el.ChildElements() {
		respace(child, prefixes)
	}
}
