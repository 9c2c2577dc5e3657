package reports

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/javajack/xlexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

// rendered is a document serialized and reopened for assertions.
type rendered struct {
	doc    *xlexport.Document
	report xlexport.AttachReport
	info   xlexport.PackageInfo
	file   *excelize.File
}

func render(t *testing.T, doc *xlexport.Document, err error) rendered {
	t.Helper()
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })

	out, report, err := doc.Render(context.Background(), nil)
	require.NoError(t, err)
	pkg, err := xlexport.OpenPackage(out)
	require.NoError(t, err)
	info, err := xlexport.Inspect(pkg)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return rendered{doc: doc, report: report, info: info, file: f}
}

func (r rendered) cell(t *testing.T, sheet, cell string) string {
	t.Helper()
	v, err := r.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func (r rendered) style(t *testing.T, sheet, cell string) *excelize.Style {
	t.Helper()
	id, err := r.file.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	st, err := r.file.GetStyle(id)
	require.NoError(t, err)
	return st
}

func (r rendered) fill(t *testing.T, sheet, cell string) string {
	t.Helper()
	st := r.style(t, sheet, cell)
	if len(st.Fill.Color) == 0 {
		return ""
	}
	return st.Fill.Color[0]
}

func (r rendered) charts(sheet string) []xlexport.ChartInfo {
	for _, s := range r.info.Sheets {
		if s.Name == sheet {
			return s.Charts
		}
	}
	return nil
}

func TestRegistry_KindsAndRoutes(t *testing.T) {
	specs := Specs()
	require.Len(t, specs, 8)
	assert.Len(t, Kinds(), 8)

	routes := make(map[string]bool)
	for _, s := range specs {
		assert.True(t, strings.HasPrefix(s.Route, "/api/export-"), s.Route)
		assert.False(t, routes[s.Route], "duplicate route %s", s.Route)
		routes[s.Route] = true
		assert.NotEmpty(t, s.FailureMessage)

		got, err := Lookup(s.Kind)
		require.NoError(t, err)
		assert.Equal(t, s.Route, got.Route)
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	_, err := Lookup("pie-chart")
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = Build("pie-chart", []byte(`{}`), testNow)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestRegistry_BadPayload(t *testing.T) {
	for _, kind := range Kinds() {
		_, err := Build(kind, []byte(`{"displayedData": 7`), testNow)
		assert.Error(t, err, kind)
	}
}

func TestRegistry_EmptyPayloadBuildsEveryKind(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			doc, err := Build(kind, []byte(`{}`), testNow)
			r := render(t, doc, err)
			assert.NotEmpty(t, r.info.Sheets)
			assert.True(t, strings.HasSuffix(doc.Filename, "-2024-03-05.xlsx"), doc.Filename)
			assert.Equal(t, r.report.Requested, r.report.Attached)
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "Red-Wine", slug("Red Wine"))
	assert.Equal(t, "-Sparkling-Rose", slug(" Sparkling \t Rose"))
	assert.Equal(t, "ab", slug(`a"/b`))
}
