package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javajack/xlexport/internal/config"
	"github.com/javajack/xlexport/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceStatsPayload = `{
	"displayedData": [
		{"yearMonth": "2024-01", "avgPrice": 21.5, "totalAmount": 5000, "priceChangePercent": 2.5, "salesChangePercent": -1.2},
		{"yearMonth": "2024-02", "avgPrice": 22, "totalAmount": 5100, "priceChangePercent": 2.3, "salesChangePercent": 2}
	],
	"dateRange": "Q1 2024"
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XLEXPORT_ADDR", "")
	t.Setenv("XLEXPORT_LOG_LEVEL", "")
	t.Setenv("XLEXPORT_CREATOR", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writePayload(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRender_ParallelPayloads(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	q1 := writePayload(t, in, "q1.json", priceStatsPayload)
	q2 := writePayload(t, in, "q2.json", `{}`)

	stdout, err := execute(t, "render", "--kind", string(reports.KindPriceStats), "-o", out, q1, q2)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], q1), lines[0])
	assert.Contains(t, lines[0], "(charts 1/1)")
	assert.True(t, strings.HasPrefix(lines[1], q2), lines[1])

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Len(t, names, 2)
	assert.True(t, strings.HasPrefix(names[0], "q1-price-vs-sales-"), names[0])
	assert.True(t, strings.HasPrefix(names[1], "q2-price-vs-sales-"), names[1])

	described, err := execute(t, "inspect", filepath.Join(out, names[0]))
	require.NoError(t, err)
	assert.Contains(t, described, `Sheet 1 "Price vs Sales"`)
	assert.Contains(t, described, "composed chart")
	assert.Contains(t, described, "'Price vs Sales'!$D$5:$D$6")
	assert.Contains(t, described, "[2 points]")
}

func TestRender_SingleKeepsDownloadName(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	p := writePayload(t, in, "segments.json", `{"segments": [{"label": "Female", "value": 60}]}`)

	_, err := execute(t, "render", "-k", string(reports.KindGenderSegmentation), "-o", out, p)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(out, "gender-segmentation-*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRender_Errors(t *testing.T) {
	in := t.TempDir()
	good := writePayload(t, in, "good.json", `{}`)
	bad := writePayload(t, in, "bad.json", `{"displayedData": `)

	_, err := execute(t, "render", "--kind", "pie", good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: sales-trend")

	_, err = execute(t, "render", "--kind", string(reports.KindSalesTrend), "-o", t.TempDir(), good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")

	_, err = execute(t, "render", "--kind", string(reports.KindSalesTrend), filepath.Join(in, "missing.json"))
	assert.Error(t, err)
}

func TestInspect_NotAWorkbook(t *testing.T) {
	path := writePayload(t, t.TempDir(), "notes.xlsx", "plain text")
	_, err := execute(t, "inspect", path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(config.LoggingConfig{Level: "info", Format: "console"}, false)
	assert.NoError(t, err)
	_, err = newLogger(config.LoggingConfig{Level: "loud", Format: "json"}, false)
	assert.Error(t, err)
}
