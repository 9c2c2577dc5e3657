package xlexport

import (
	"bytes"
	"fmt"
)

// DefaultChartRelID is the relationship a fresh drawing uses for its chart.
const DefaultChartRelID = "rId1"

// AnchorPoint is a 0-based column/row corner of a drawing anchor.
type AnchorPoint struct {
	Col int
	Row int
}

// Anchor places a chart frame between two cell corners.
type Anchor struct {
	From AnchorPoint
	To   AnchorPoint
}

// DefaultAnchor spans columns A..G below the data, rows 26..40.
var DefaultAnchor = Anchor{
	From: AnchorPoint{Col: 0, Row: 25},
	To:   AnchorPoint{Col: 7, Row: 40},
}

// Height is the number of rows the anchor covers.
func (a Anchor) Height() int { return a.To.Row - a.From.Row }

type anchorView struct {
	Anchor
	ShapeID int
	Name    string
	RelID   string
}

// DrawingXML renders a drawing part holding one chart frame at DefaultAnchor.
func DrawingXML(relID string) ([]byte, error) {
	return renderDrawing("drawing", anchorView{Anchor: DefaultAnchor, ShapeID: 2, Name: "Chart 1", RelID: relID})
}

// anchorXML renders a standalone twoCellAnchor for appending to an existing drawing.
func anchorXML(a Anchor, shapeID int, relID string) ([]byte, error) {
	// Wrapped so the fragment parses with its prefixes bound.
	body, err := renderDrawing("anchor", anchorView{Anchor: a, ShapeID: shapeID, Name: fmt.Sprintf("Chart %d", shapeID-1), RelID: relID})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`<xdr:wsDr xmlns:xdr="` + nsSpreadsheetDrawing + `" xmlns:a="` + nsDrawingMain + `" xmlns:r="` + nsRelationships + `">`)
	buf.Write(body)
	buf.WriteString(`</xdr:wsDr>`)
	return buf.Bytes(), nil
}

func renderDrawing(name string, v anchorView) ([]byte, error) {
	var buf bytes.Buffer
	if err := partTemplates.ExecuteTemplate(&buf, name, v); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// DrawingRelsXML renders the relationships part that links a drawing to its chart.
func DrawingRelsXML(relID, chartTarget string) ([]byte, error) {
	rels := newRelationships()
	rels.Add(Relationship{ID: relID, Type: RelTypeChart, Target: chartTarget})
	return rels.Bytes()
}
