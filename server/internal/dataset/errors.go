package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned when a source holds no data rows.
	ErrEmpty = errors.New("dataset has no records")

	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidValue is returned when a cell cannot be parsed or violates a
	// record invariant (negative payload, class other than 0/1).
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownSite is returned for a launch site outside types.KnownSites.
	ErrUnknownSite = errors.New("unknown launch site")
)

// DataLoadError describes why a source could not be turned into a Dataset.
// It is fatal at startup.
type DataLoadError struct {
	Source string // file path, table name or "records"
	Row    int    // 1-based data row; 0 when the error is not row specific
	Column string // offending column, if any
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dataset: load %s", e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func loadErr(source string, row int, column string, err error) *DataLoadError {
	return &DataLoadError{Source: source, Row: row, Column: column, Err: err}
}
