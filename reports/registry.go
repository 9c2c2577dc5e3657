// Package reports turns dashboard payloads into xlsx documents, one builder
// per export kind.
package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/javajack/xlexport"
)

// ErrUnknownKind indicates an export kind with no registered builder.
var ErrUnknownKind = errors.New("unknown export kind")

// Kind names an export.
type Kind string

const (
	KindSalesTrend           Kind = "sales-trend"
	KindPriceStats           Kind = "price-stats"
	KindPriceCategory        Kind = "price-category"
	KindMarketing            Kind = "marketing"
	KindGenderSegmentation   Kind = "gender-segmentation"
	KindCombinedSegmentation Kind = "combined-segmentation"
	KindCustomerSegmentation Kind = "customer-segmentation"
	KindProductPerformance   Kind = "product-performance"
)

// DefaultFailureMessage is the error field of a failed export response.
const DefaultFailureMessage = "Export failed"

type buildFunc func(data []byte, now time.Time, opts []xlexport.Option) (*xlexport.Document, error)

// Spec registers an export kind with its HTTP route.
type Spec struct {
	Kind           Kind
	Route          string
	FailureMessage string

	build buildFunc
}

// Build decodes payload and builds the document.
func (s Spec) Build(payload []byte, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	return s.build(payload, now, opts)
}

var registry = []Spec{
	{KindSalesTrend, "/api/export-sales-chart", DefaultFailureMessage, decoded(SalesTrend)},
	{KindPriceStats, "/api/export-price-stats", DefaultFailureMessage, decoded(PriceStats)},
	{KindPriceCategory, "/api/export-price-cat", DefaultFailureMessage, decoded(PriceCategory)},
	{KindMarketing, "/api/export-marketing", DefaultFailureMessage, decoded(Marketing)},
	{KindGenderSegmentation, "/api/export-gender-segmentation", "Failed to export gender segmentation", decoded(GenderSegmentation)},
	{KindCombinedSegmentation, "/api/export-combined-segmentation", "Failed to export combined segmentation", decoded(CombinedSegmentation)},
	{KindCustomerSegmentation, "/api/export-customer-segmentation", DefaultFailureMessage, decoded(CustomerSegmentation)},
	{KindProductPerformance, "/api/export-product-performance", DefaultFailureMessage, decoded(ProductPerformance)},
}

// Specs lists every registered export in route order.
func Specs() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}

// Kinds lists the registered kind names.
func Kinds() []Kind {
	out := make([]Kind, len(registry))
	for i, s := range registry {
		out[i] = s.Kind
	}
	return out
}

// Lookup returns the registered Spec for kind.
func Lookup(kind Kind) (Spec, error) {
	for _, s := range registry {
		if s.Kind == kind {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Build decodes payload as the given kind and builds its document.
func Build(kind Kind, payload []byte, now time.Time, opts ...xlexport.Option) (*xlexport.Document, error) {
	s, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	return s.Build(payload, now, opts...)
}

func decoded[P any](fn func(P, time.Time, ...xlexport.Option) (*xlexport.Document, error)) buildFunc {
	return func(data []byte, now time.Time, opts []xlexport.Option) (*xlexport.Document, error) {
		var p P
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return fn(p, now, opts...)
	}
}

// finish returns doc when every sheet writer succeeded, closing it otherwise.
func finish(doc *xlexport.Document) (*xlexport.Document, error) {
	if err := doc.Builder.Err(); err != nil {
		_ = doc.Close()
		return nil, fmt.Errorf("build %s: %w", doc.Kind, err)
	}
	return doc, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// filename stamps base with the UTC date of now.
func filename(base string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", base, now.UTC().Format(time.DateOnly))
}

// slug replaces whitespace runs with '-' and drops characters that would
// break a quoted Content-Disposition filename.
func slug(s string) string {
	s = whitespace.ReplaceAllString(s, "-")
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/':
			return -1
		}
		return r
	}, s)
}

// generated is the timestamp line written under report titles.
func generated(now time.Time) string {
	return "Generated: " + now.Format(time.DateTime)
}

// or returns v unless it is empty.
func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
