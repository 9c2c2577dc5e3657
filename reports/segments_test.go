package reports

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenderSegmentation(t *testing.T) {
	doc, err := Build(KindGenderSegmentation, []byte(`{
		"segments": [{"label": "Female", "value": 58.5}, {"label": "Male", "value": 41.5}],
		"insights": ["Women visit more often on weekends"]
	}`), testNow)
	r := render(t, doc, err)

	assert.Equal(t, "gender-segmentation-2024-03-05.xlsx", doc.Filename)
	assert.Equal(t, []string{"Gender Segments", "Insights"}, doc.Builder.SheetNames())
	assert.Equal(t, "Visits (%)", r.cell(t, "Gender Segments", "B1"))
	assert.Equal(t, "Female", r.cell(t, "Gender Segments", "A2"))
	assert.Equal(t, "41.5", r.cell(t, "Gender Segments", "B3"))

	assert.Equal(t, "Key Insights", r.cell(t, "Insights", "A1"))
	assert.True(t, r.style(t, "Insights", "A1").Font.Bold)
	assert.Equal(t, "Women visit more often on weekends", r.cell(t, "Insights", "A2"))
	assert.Zero(t, r.info.ChartCount())
}

func TestCombinedSegmentation_KeepsGenderOrder(t *testing.T) {
	doc, err := Build(KindCombinedSegmentation, []byte(`{
		"segments": [
			{"label": "18-24", "values": {"Male": 12, "Female": 18, "Other": 1}},
			{"label": "25-54", "values": {"Female": 30, "Male": 39}}
		]
	}`), testNow)
	r := render(t, doc, err)
	const sheet = "Combined Segments"

	var got [][2]string
	for _, row := range []string{"2", "3", "4", "5", "6"} {
		got = append(got, [2]string{r.cell(t, sheet, "A"+row), r.cell(t, sheet, "B"+row)})
	}
	want := [][2]string{
		{"18-24", "Male"}, {"18-24", "Female"}, {"18-24", "Other"},
		{"25-54", "Female"}, {"25-54", "Male"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "39", r.cell(t, sheet, "C6"))
	assert.Equal(t, "Key Insights", r.cell(t, "Insights", "A1"))
	assert.Equal(t, "", r.cell(t, "Insights", "A2"))
}

func TestShares_UnmarshalJSON(t *testing.T) {
	var seg AgeSegment
	require.NoError(t, json.Unmarshal([]byte(`{"label": "55+", "values": {"Female": 9.5, "Male": null}}`), &seg))
	assert.Equal(t, Shares{{Label: "Female", Value: 9.5}, {Label: "Male", Value: nil}}, seg.Values)

	require.NoError(t, json.Unmarshal([]byte(`{"label": "55+", "values": null}`), &seg))
	assert.Nil(t, seg.Values)

	assert.Error(t, json.Unmarshal([]byte(`{"values": [1, 2]}`), &seg))
}
