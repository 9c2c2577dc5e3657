package xlexport

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Document is a workbook plus the charts to inject once it is serialized.
type Document struct {
	Kind     string
	Filename string
	Builder  *Builder
	Charts   []ChartPlacement

	opts *Options
}

// NewDocument starts an empty document whose workbook uses opts.
func NewDocument(kind string, opts ...Option) *Document {
	return &Document{
		Kind:    kind,
		Builder: NewBuilder(opts...),
		opts:    newOptions(opts),
	}
}

// AddChart queues a chart for the sheet at the 1-based index.
func (d *Document) AddChart(sheetIndex int, spec ChartSpec) {
	d.Charts = append(d.Charts, ChartPlacement{SheetIndex: sheetIndex, Chart: spec})
}

// Validate checks every queued chart.
func (d *Document) Validate() []ValidationIssue {
	var issues []ValidationIssue
	for _, pl := range d.Charts {
		issues = append(issues, ValidateChart(pl.Chart)...)
	}
	return issues
}

// Render serializes the workbook and, when charts are queued, patches them in.
// Warnings are logged; error-severity issues abort with a *ValidationError.
func (d *Document) Render(ctx context.Context, p *Patcher) ([]byte, AttachReport, error) {
	log := d.opts.logger.With(zap.String("kind", d.Kind))

	var errs []ValidationIssue
	for _, is := range d.Validate() {
		if is.Severity == SeverityError {
			errs = append(errs, is)
			continue
		}
		log.Warn("chart validation", zap.String("issue", is.String()))
	}
	if len(errs) > 0 {
		return nil, AttachReport{}, &ValidationError{Issues: errs}
	}

	data, err := d.Builder.Bytes()
	if err != nil {
		return nil, AttachReport{}, fmt.Errorf("build %s workbook: %w", d.Kind, err)
	}
	if len(d.Charts) == 0 {
		return data, AttachReport{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, AttachReport{}, err
	}

	if p == nil {
		p = NewPatcher(WithLogger(d.opts.logger), WithCompressionLevel(d.opts.compressionLevel))
	}
	pkg, err := OpenPackage(data)
	if err != nil {
		return nil, AttachReport{}, err
	}
	report, err := p.Attach(pkg, d.Charts...)
	if err != nil {
		return nil, report, fmt.Errorf("attach charts to %s workbook: %w", d.Kind, err)
	}
	out, err := pkg.BytesLevel(p.opts.compressionLevel)
	if err != nil {
		return nil, report, fmt.Errorf("write %s workbook: %w", d.Kind, err)
	}
	log.Info("workbook rendered",
		zap.Int("bytes", len(out)),
		zap.Int("charts_requested", report.Requested),
		zap.Int("charts_attached", report.Attached))
	return out, report, nil
}

// Close releases the workbook.
func (d *Document) Close() error {
	return d.Builder.Close()
}
