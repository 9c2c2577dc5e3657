package xlexport

import (
	"compress/flate"

	"go.uber.org/zap"
)

// DefaultCreator is written to the document properties of every workbook.
const DefaultCreator = "Wine Analytics Dashboard"

// Options holds configuration shared by Builder, Patcher and Document.
type Options struct {
	theme            Theme
	logger           *zap.Logger
	creator          string
	compressionLevel int
	evaluator        ExpressionEvaluator
	notationBegin    string
	notationEnd      string
}

func defaultOptions() *Options {
	return &Options{
		theme:            DefaultTheme(),
		logger:           zap.NewNop(),
		creator:          DefaultCreator,
		compressionLevel: flate.BestCompression,
		notationBegin:    "${",
		notationEnd:      "}",
	}
}

func newOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.evaluator == nil {
		o.evaluator = NewExpressionEvaluator()
	}
	return o
}

// Option configures builders and patchers.
type Option func(*Options)

// WithTheme sets the colour table used for cell styles and chart series.
func WithTheme(t Theme) Option {
	return func(o *Options) { o.theme = t }
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

// WithCreator sets the workbook author property (default: "Wine Analytics Dashboard").
func WithCreator(name string) Option {
	return func(o *Options) { o.creator = name }
}

// WithCompressionLevel sets the flate level used when a patched archive is written.
func WithCompressionLevel(level int) Option {
	return func(o *Options) { o.compressionLevel = level }
}

// WithEvaluator replaces the expression evaluator used by computed columns.
func WithEvaluator(ev ExpressionEvaluator) Option {
	return func(o *Options) { o.evaluator = ev }
}

// WithExpressionNotation sets the text interpolation delimiters (default: "${", "}").
func WithExpressionNotation(begin, end string) Option {
	return func(o *Options) {
		o.notationBegin = begin
		o.notationEnd = end
	}
}
