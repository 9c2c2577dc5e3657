package xlexport

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DefaultColumnWidth applies to table columns that leave Width unset.
const DefaultColumnWidth = 15

// Builder assembles a workbook with excelize. Worksheet parts are numbered in
// the order sheets are created, so the n-th Sheet call maps to sheet index n.
type Builder struct {
	file   *excelize.File
	opts   *Options
	sheets []string
	styles map[CellStyle]int
	err    error

	mu sync.Mutex // protects styles and err
}

// NewBuilder creates an empty workbook.
func NewBuilder(opts ...Option) *Builder {
	o := newOptions(opts)
	b := &Builder{
		file:   excelize.NewFile(),
		opts:   o,
		styles: make(map[CellStyle]int),
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := b.file.SetDocProps(&excelize.DocProperties{
		Creator:        o.creator,
		LastModifiedBy: o.creator,
		Created:        now,
		Modified:       now,
	}); err != nil {
		b.fail(fmt.Errorf("set document properties: %w", err))
	}
	return b
}

// Theme returns the colour table the builder was configured with.
func (b *Builder) Theme() Theme { return b.opts.theme }

// File exposes the underlying workbook.
func (b *Builder) File() *excelize.File { return b.file }

// SheetNames lists sheets in creation order.
func (b *Builder) SheetNames() []string { return slices.Clone(b.sheets) }

// SheetIndex returns the 1-based position of a sheet, or 0 when absent.
func (b *Builder) SheetIndex(name string) int {
	return slices.Index(b.sheets, name) + 1
}

// Sheet returns a writer for the named sheet, creating it on first use.
// The first sheet created takes over the workbook's default sheet.
func (b *Builder) Sheet(name string) *SheetWriter {
	sw := &SheetWriter{b: b, name: name}
	if err := CheckSheetName(name); err != nil {
		sw.fail(err)
		return sw
	}
	if slices.Contains(b.sheets, name) {
		return sw
	}

	var err error
	if len(b.sheets) == 0 {
		err = b.file.SetSheetName(b.file.GetSheetName(0), name)
	} else {
		_, err = b.file.NewSheet(name)
	}
	if err != nil {
		sw.fail(fmt.Errorf("create sheet: %w", err))
		return sw
	}
	b.sheets = append(b.sheets, name)
	b.opts.logger.Debug("sheet created", zap.String("sheet", name), zap.Int("index", len(b.sheets)))
	return sw
}

// Err returns the first error recorded by any writer.
func (b *Builder) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Builder) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

// Bytes serializes the workbook.
func (b *Builder) Bytes() ([]byte, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	if len(b.sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	b.file.SetActiveSheet(0)
	buf, err := b.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook.
func (b *Builder) Close() error {
	return b.file.Close()
}

// style returns the excelize style id for st, creating it once per distinct style.
func (b *Builder) style(st CellStyle) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.styles[st]; ok {
		return id, nil
	}
	id, err := b.file.NewStyle(st.excelize())
	if err != nil {
		return 0, fmt.Errorf("create style %s: %w", st, err)
	}
	b.styles[st] = id
	return id, nil
}

// StyleCount returns the number of distinct styles registered so far.
func (b *Builder) StyleCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.styles)
}

// SheetWriter writes one worksheet. Methods chain; the first failure is kept
// and later calls become no-ops, so callers check Err once at the end.
type SheetWriter struct {
	b    *Builder
	name string
	err  error
}

// Name returns the sheet name.
func (sw *SheetWriter) Name() string { return sw.name }

// Index returns the 1-based sheet index.
func (sw *SheetWriter) Index() int { return sw.b.SheetIndex(sw.name) }

// Err returns the first error this writer hit.
func (sw *SheetWriter) Err() error { return sw.err }

func (sw *SheetWriter) fail(err error) {
	if sw.err == nil {
		sw.err = fmt.Errorf("sheet %q: %w", sw.name, err)
		sw.b.fail(sw.err)
	}
}

func (sw *SheetWriter) ok() bool { return sw.err == nil }

// Set writes a value and, optionally, a style built from the given layers.
func (sw *SheetWriter) Set(cell string, value any, styles ...CellStyle) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	if value != nil {
		if err := sw.b.file.SetCellValue(sw.name, cell, value); err != nil {
			sw.fail(err)
			return sw
		}
	}
	if len(styles) > 0 {
		sw.Style(cell, merged(styles))
	}
	return sw
}

// Text writes s with ${...} segments evaluated against vars.
func (sw *SheetWriter) Text(cell, s string, vars map[string]any, styles ...CellStyle) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	v, err := newContext(vars, sw.b.opts).EvaluateText(s)
	if err != nil {
		sw.fail(fmt.Errorf("cell %s: %w", cell, err))
		return sw
	}
	return sw.Set(cell, v, styles...)
}

// Style applies st to one cell.
func (sw *SheetWriter) Style(cell string, st CellStyle) *SheetWriter {
	return sw.StyleRange(cell, cell, st)
}

// StyleRange applies st to every cell between two corners.
func (sw *SheetWriter) StyleRange(from, to string, st CellStyle) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	id, err := sw.b.style(st)
	if err != nil {
		sw.fail(err)
		return sw
	}
	if err := sw.b.file.SetCellStyle(sw.name, from, to, id); err != nil {
		sw.fail(err)
	}
	return sw
}

// Row writes values into consecutive columns starting at A.
func (sw *SheetWriter) Row(row int, values []any, styles ...CellStyle) *SheetWriter {
	for i, v := range values {
		sw.Set(Cell(i, row), v, styles...)
	}
	return sw
}

// Merge merges a rectangular range.
func (sw *SheetWriter) Merge(from, to string) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	if err := sw.b.file.MergeCell(sw.name, from, to); err != nil {
		sw.fail(err)
	}
	return sw
}

// ColWidth sets the width of one column by letter.
func (sw *SheetWriter) ColWidth(col string, width float64) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	if err := sw.b.file.SetColWidth(sw.name, col, col, width); err != nil {
		sw.fail(err)
	}
	return sw
}

// ColWidths sets widths of consecutive columns starting at A.
func (sw *SheetWriter) ColWidths(widths ...float64) *SheetWriter {
	for i, w := range widths {
		sw.ColWidth(ColToName(i), w)
	}
	return sw
}

// RowHeight sets the height of a 1-based row.
func (sw *SheetWriter) RowHeight(row int, height float64) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	if err := sw.b.file.SetRowHeight(sw.name, row, height); err != nil {
		sw.fail(err)
	}
	return sw
}

// Freeze keeps the first rows visible while scrolling.
func (sw *SheetWriter) Freeze(rows int) *SheetWriter {
	if !sw.ok() || rows <= 0 {
		return sw
	}
	err := sw.b.file.SetPanes(sw.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      rows,
		TopLeftCell: Cell(0, rows+1),
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		sw.fail(err)
	}
	return sw
}

// Title writes a merged banner across A1..lastCol1.
func (sw *SheetWriter) Title(text, lastCol string, st CellStyle, height float64) *SheetWriter {
	sw.Merge("A1", lastCol+"1").Set("A1", text, st)
	if height > 0 {
		sw.RowHeight(1, height)
	}
	return sw
}

// SummaryItem is one label/value line of a summary block.
type SummaryItem struct {
	Label string
	Value any
	Style CellStyle
}

// Summary writes a heading at column A of row followed by one item per row.
// It returns the row after the block.
func (sw *SheetWriter) Summary(row int, title string, heading CellStyle, items []SummaryItem) int {
	sw.Set(Cell(0, row), title, heading)
	for i, it := range items {
		r := row + 1 + i
		sw.Set(Cell(0, r), it.Label, CellStyle{Bold: true})
		if it.Style.IsZero() {
			sw.Set(Cell(1, r), it.Value)
		} else {
			sw.Set(Cell(1, r), it.Value, it.Style)
		}
	}
	return row + 1 + len(items)
}

func merged(styles []CellStyle) CellStyle {
	var st CellStyle
	for _, s := range styles {
		st = st.With(s)
	}
	return st
}

// Column describes one table column. A non-empty Expr computes the value
// from the row (bound as `row`, with `index`) and the table variables; the
// result is stored under Key so later columns and formatters can read it.
type Column struct {
	Header string
	Key    string
	Width  float64
	Expr   string
	Style  CellStyle
}

// Formatter layers Style onto the cells of rows where When is true.
// An empty Columns list styles the whole row.
type Formatter struct {
	When    string
	Columns []string
	Style   CellStyle
}

// TableSpec is a header row followed by one row per record.
type TableSpec struct {
	HeaderRow    int // 1-based
	Columns      []Column
	Rows         []map[string]any
	HeaderStyle  CellStyle // zero uses the theme header
	HeaderHeight float64
	RowHeight    float64 // applied to every record row when positive
	Stripe       string  // fill of even-indexed rows; empty disables striping
	Formatters   []Formatter
	Vars         map[string]any
	SkipWidths   bool
}

// FirstDataRow is the 1-based row of the first record.
func (t TableSpec) FirstDataRow() int { return t.HeaderRow + 1 }

// LastDataRow is the 1-based row of the last record. With no records it is HeaderRow.
func (t TableSpec) LastDataRow() int { return t.HeaderRow + len(t.Rows) }

// Table writes a header and records. Computed values are written back into a
// copy of each record; the caller's maps are not modified.
func (sw *SheetWriter) Table(t TableSpec) *SheetWriter {
	if !sw.ok() {
		return sw
	}
	for _, is := range ValidateTable(t) {
		if is.Severity == SeverityError {
			sw.fail(fmt.Errorf("table: %s", is))
			return sw
		}
		sw.b.opts.logger.Warn("table validation", zap.String("sheet", sw.name), zap.String("issue", is.String()))
	}

	header := t.HeaderStyle
	if header.IsZero() {
		header = sw.b.opts.theme.Header("")
	}
	for i, col := range t.Columns {
		sw.Set(Cell(i, t.HeaderRow), col.Header, header)
		if !t.SkipWidths {
			w := col.Width
			if w == 0 {
				w = DefaultColumnWidth
			}
			sw.ColWidth(ColToName(i), w)
		}
	}
	if t.HeaderHeight > 0 {
		sw.RowHeight(t.HeaderRow, t.HeaderHeight)
	}

	ctx := newContext(t.Vars, sw.b.opts)
	defer ctx.Unbind()

	for idx, src := range t.Rows {
		rec := maps.Clone(src)
		if rec == nil {
			rec = map[string]any{}
		}
		ctx.BindRow(rec, idx)
		for _, col := range t.Columns {
			if col.Expr == "" {
				continue
			}
			v, err := ctx.Evaluate(col.Expr)
			if err != nil {
				sw.fail(fmt.Errorf("row %d column %q: %w", idx, col.Header, err))
				return sw
			}
			rec[col.Key] = v
		}

		extra := make(map[string]CellStyle)
		var rowStyle CellStyle
		for _, f := range t.Formatters {
			hit, err := ctx.IsConditionTrue(f.When)
			if err != nil {
				sw.fail(fmt.Errorf("row %d formatter %q: %w", idx, f.When, err))
				return sw
			}
			if !hit {
				continue
			}
			if len(f.Columns) == 0 {
				rowStyle = rowStyle.With(f.Style)
				continue
			}
			for _, key := range f.Columns {
				extra[key] = extra[key].With(f.Style)
			}
		}

		r := t.FirstDataRow() + idx
		if t.RowHeight > 0 {
			sw.RowHeight(r, t.RowHeight)
		}
		for i, col := range t.Columns {
			st := col.Style
			if t.Stripe != "" && idx%2 == 0 {
				st = st.With(CellStyle{Fill: t.Stripe})
			}
			st = st.With(rowStyle).With(extra[col.Key])
			cell := Cell(i, r)
			sw.Set(cell, rec[col.Key])
			if !st.IsZero() {
				sw.Style(cell, st)
			}
		}
	}
	return sw
}
