package xlexport

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	nsRelationships      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels        = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes       = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsSpreadsheetDrawing = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsDrawingMain        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsChart              = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

// Relationship types used when wiring charts into a workbook.
const (
	RelTypeChart     = nsRelationships + "/chart"
	RelTypeDrawing   = nsRelationships + "/drawing"
	RelTypeWorksheet = nsRelationships + "/worksheet"
)

// Relationship is one entry of a _rels part.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// relationships is a parsed _rels part. Unknown attributes and entries survive a round trip.
type relationships struct {
	doc  *etree.Document
	root *etree.Element
}

func newRelationships() *relationships {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsPackageRels)
	return &relationships{doc: doc, root: root}
}

// parseRelationships reads a _rels part; empty input yields an empty set.
func parseRelationships(data []byte) (*relationships, error) {
	if len(data) == 0 {
		return newRelationships(), nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse relationships: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Relationships" {
		return nil, fmt.Errorf("parse relationships: root element is not Relationships")
	}
	return &relationships{doc: doc, root: root}, nil
}

func (r *relationships) elements() []*etree.Element {
	return r.root.SelectElements("Relationship")
}

// All returns every relationship in document order.
func (r *relationships) All() []Relationship {
	els := r.elements()
	out := make([]Relationship, 0, len(els))
	for _, el := range els {
		out = append(out, Relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		})
	}
	return out
}

// ByID finds the relationship with the given Id.
func (r *relationships) ByID(id string) (Relationship, bool) {
	for _, rel := range r.All() {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// ByType returns the relationships of one type in document order.
func (r *relationships) ByType(typ string) []Relationship {
	var out []Relationship
	for _, rel := range r.All() {
		if rel.Type == typ {
			out = append(out, rel)
		}
	}
	return out
}

// NextID returns "rId" followed by one more than the largest numeric suffix in use.
// Ids without a numeric rId suffix are ignored.
func (r *relationships) NextID() string {
	highest := 0
	for _, rel := range r.All() {
		if n, ok := relIDNumber(rel.ID); ok && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

func relIDNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, "rId") {
		return 0, false
	}
	n, err := strconv.Atoi(id[len("rId"):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Add appends a relationship entry.
func (r *relationships) Add(rel Relationship) {
	el := r.root.CreateElement("Relationship")
	if r.root.Space != "" {
		el.Space = r.root.Space
	}
	el.CreateAttr("Id", rel.ID)
	el.CreateAttr("Type", rel.Type)
	el.CreateAttr("Target", rel.Target)
	if rel.TargetMode != "" {
		el.CreateAttr("TargetMode", rel.TargetMode)
	}
}

func (r *relationships) Bytes() ([]byte, error) {
	return r.doc.WriteToBytes()
}

// RelsPartName returns the _rels part that holds the relationships of part.
// "xl/worksheets/sheet1.xml" → "xl/worksheets/_rels/sheet1.xml.rels"
func RelsPartName(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget resolves a relationship target against the part that owns it.
// Absolute targets are package-rooted.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// RelativeTarget expresses part relative to the directory of source,
// the form excel writes into _rels parts.
func RelativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for range from[i:] {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}
