package xlexport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSeries indicates a chart descriptor without any data series.
var ErrNoSeries = errors.New("chart has no series")

// ErrUnknownChartKind indicates a chart kind outside the supported set.
var ErrUnknownChartKind = errors.New("unknown chart kind")

// ErrSeriesCount indicates a composed chart without exactly one bar and one line series.
var ErrSeriesCount = errors.New("composed chart needs exactly two series")

// ErrInvalidPackage indicates bytes that are not a readable xlsx archive.
var ErrInvalidPackage = errors.New("invalid xlsx package")

// ErrSheetNotFound indicates a sheet index with no worksheet part.
var ErrSheetNotFound = errors.New("worksheet not found")

// PatchError reports a part of the archive that could not be patched.
type PatchError struct {
	Part string
	Err  error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch %s: %v", e.Part, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// ValidationError carries the error-severity issues that stopped a render.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
