package xlexport

import (
	"fmt"

	"github.com/beevik/etree"
)

// ContentTypesPart is the package-level content types registry.
const ContentTypesPart = "[Content_Types].xml"

// Content types registered for injected parts.
const (
	ContentTypeChart   = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ContentTypeDrawing = "application/vnd.openxmlformats-officedocument.drawing+xml"
)

type contentTypes struct {
	doc  *etree.Document
	root *etree.Element
}

func parseContentTypes(data []byte) (*contentTypes, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse content types: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Types" {
		return nil, fmt.Errorf("parse content types: root element is not Types")
	}
	return &contentTypes{doc: doc, root: root}, nil
}

// Override returns the content type registered for the exact part name.
// partName is package-rooted without the leading slash.
func (c *contentTypes) Override(partName string) (string, bool) {
	want := "/" + partName
	for _, el := range c.root.SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == want {
			return el.SelectAttrValue("ContentType", ""), true
		}
	}
	return "", false
}

// AddOverride registers partName unless an Override for that exact name exists.
// It reports whether an entry was added.
func (c *contentTypes) AddOverride(partName, contentType string) bool {
	if _, ok := c.Override(partName); ok {
		return false
	}
	el := c.root.CreateElement("Override")
	if c.root.Space != "" {
		el.Space = c.root.Space
	}
	el.CreateAttr("PartName", "/"+partName)
	el.CreateAttr("ContentType", contentType)
	return true
}

func (c *contentTypes) Bytes() ([]byte, error) {
	return c.doc.WriteToBytes()
}
