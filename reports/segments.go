package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/javajack/xlexport"
)

// Segment is a labelled share of visits.
type Segment struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// GenderSegmentationPayload is the body of the gender segmentation export.
type GenderSegmentationPayload struct {
	Segments []Segment `json:"segments"`
	Insights []string  `json:"insights"`
}

// GenderSegmentation builds the gender share table and an insights sheet.
func GenderSegmentation(p GenderSegmentationPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindGenderSegmentation), opts...)
	doc.Filename = filename("gender-segmentation", now)

	rows := make([]map[string]any, len(p.Segments))
	for i, s := range p.Segments {
		rows[i] = map[string]any{"label": s.Label, "value": s.Value}
	}
	doc.Builder.Sheet("Gender Segments").Table(xlexport.TableSpec{
		HeaderRow: 1,
		Rows:      rows,
		Columns: []xlexport.Column{
			{Header: "Gender", Key: "label", Width: 20},
			{Header: "Visits (%)", Key: "value", Width: 15},
		},
	})
	insightSheet(doc.Builder, p.Insights)
	return finish(doc)
}

// Shares maps a label to a value, keeping the order of the JSON object.
type Shares []Share

// Share is one entry of Shares.
type Share struct {
	Label string
	Value any
}

// UnmarshalJSON decodes an object, preserving key order.
func (s *Shares) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("shares: expected object, got %v", tok)
	}
	var out Shares
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("shares %q: %w", key, err)
		}
		out = append(out, Share{Label: key, Value: v})
	}
	*s = out
	return nil
}

// AgeSegment splits an age range into per-gender visit shares.
type AgeSegment struct {
	Label  string `json:"label"`
	Values Shares `json:"values"`
}

// CombinedSegmentationPayload is the body of the combined segmentation export.
type CombinedSegmentationPayload struct {
	Segments []AgeSegment `json:"segments"`
	Insights []string     `json:"insights"`
}

// CombinedSegmentation builds one row per (age range, gender) pair and an
// insights sheet.
func CombinedSegmentation(p CombinedSegmentationPayload, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	doc := xlexport.NewDocument(string(KindCombinedSegmentation), opts...)
	doc.Filename = filename("combined-segmentation", now)

	var rows []map[string]any
	for _, seg := range p.Segments {
		for _, v := range seg.Values {
			rows = append(rows, map[string]any{
				"ageLabel":    seg.Label,
				"genderLabel": v.Label,
				"value":       v.Value,
			})
		}
	}
	doc.Builder.Sheet("Combined Segments").Table(xlexport.TableSpec{
		HeaderRow: 1,
		Rows:      rows,
		Columns: []xlexport.Column{
			{Header: "Age Range", Key: "ageLabel", Width: 20},
			{Header: "Gender", Key: "genderLabel", Width: 15},
			{Header: "Visit %", Key: "value", Width: 12},
		},
	})
	insightSheet(doc.Builder, p.Insights)
	return finish(doc)
}

func insightSheet(b *xlexport.Builder, insights []string) {
	sw := b.Sheet("Insights").
		Set("A1", "Key Insights", b.Theme().Section("")).
		ColWidth("A", 80)
	for i, in := range insights {
		sw.Set(xlexport.Cell(0, i+2), in)
	}
}
