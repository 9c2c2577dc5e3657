package xlexport

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

const relTypeOfficeDocument = nsRelationships + "/officeDocument"

// SheetEntry locates a worksheet inside a package. Index is 1-based.
type SheetEntry struct {
	Index int
	Name  string
	Part  string
}

// Sheets lists the worksheets in workbook order.
func (p *Package) Sheets() ([]SheetEntry, error) {
	wbPart := p.workbookPart()
	data, ok := p.Part(wbPart)
	if !ok {
		return nil, &PatchError{Part: wbPart, Err: fmt.Errorf("workbook part missing")}
	}
	doc, err := readXML(data)
	if err != nil {
		return nil, &PatchError{Part: wbPart, Err: err}
	}
	relsData, _ := p.Part(RelsPartName(wbPart))
	rels, err := parseRelationships(relsData)
	if err != nil {
		return nil, &PatchError{Part: RelsPartName(wbPart), Err: err}
	}

	var out []SheetEntry
	sheets := doc.Root().SelectElement("sheets")
	if sheets == nil {
		return nil, nil
	}
	for _, el := range sheets.SelectElements("sheet") {
		entry := SheetEntry{Index: len(out) + 1, Name: el.SelectAttrValue("name", "")}
		if rel, ok := rels.ByID(relIDAttr(el)); ok && rel.Type == RelTypeWorksheet {
			entry.Part = ResolveTarget(wbPart, rel.Target)
		}
		out = append(out, entry)
	}
	return out, nil
}

// WorksheetPart resolves the part of the 1-based sheet index. Packages whose
// workbook cannot be read fall back to the xl/worksheets/sheet<n>.xml convention.
func (p *Package) WorksheetPart(index int) (string, bool) {
	if index < 1 {
		return "", false
	}
	if sheets, err := p.Sheets(); err == nil && len(sheets) > 0 {
		if index > len(sheets) || sheets[index-1].Part == "" || !p.Has(sheets[index-1].Part) {
			return "", false
		}
		return sheets[index-1].Part, true
	}
	conventional := "xl/worksheets/sheet" + strconv.Itoa(index) + ".xml"
	return conventional, p.Has(conventional)
}

func (p *Package) workbookPart() string {
	if data, ok := p.Part("_rels/.rels"); ok {
		if rels, err := parseRelationships(data); err == nil {
			if found := rels.ByType(relTypeOfficeDocument); len(found) > 0 {
				return ResolveTarget("", found[0].Target)
			}
		}
	}
	return "xl/workbook.xml"
}

func readXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return doc, nil
}

// relIDAttr returns the value of the prefixed relationship id attribute (r:id).
func relIDAttr(el *etree.Element) string {
	for _, a := range el.Attr {
		if a.Key == "id" && a.Space != "" && a.Space != "xmlns" {
			return a.Value
		}
	}
	return ""
}

// nsPrefix returns the prefix root binds to uri, declaring want when none is bound.
func nsPrefix(root *etree.Element, uri, want string) (string, error) {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == uri {
			return a.Key, nil
		}
	}
	if existing := root.SelectAttr("xmlns:" + want); existing != nil {
		return "", fmt.Errorf("prefix %q is bound to %s", want, existing.Value)
	}
	root.CreateAttr("xmlns:"+want, uri)
	return want, nil
}
