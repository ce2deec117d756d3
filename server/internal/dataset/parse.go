package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/launchdash/launchdash/pkg/types"
)

// Column names used by the SpaceX launch CSV.
const (
	colFlightNumber    = "Flight Number"
	colSite            = "Launch Site"
	colClass           = "class"
	colPayload         = "Payload Mass (kg)"
	colBoosterVersion  = "Booster Version"
	colBoosterCategory = "Booster Version Category"
)

var requiredColumns = []string{colSite, colClass, colPayload, colBoosterCategory}

// Options controls how raw rows are validated.
type Options struct {
	// AllowUnknownSites accepts sites outside types.KnownSites.
	AllowUnknownSites bool

	// Sheet selects the XLSX worksheet. Empty means the first sheet.
	Sheet string
}

// parseRows converts a header row plus data rows into a Dataset.
// Cells are matched to columns by trimmed header name; extra columns are ignored.
func parseRows(source string, header []string, rows [][]string, opts Options) (*Dataset, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, loadErr(source, 0, c, ErrMissingColumn)
		}
	}

	records := make([]types.LaunchRecord, 0, len(rows))
	for n, row := range rows {
		if blank(row) {
			continue
		}
		rec, err := parseRecord(row, idx, opts)
		if err != nil {
			err.Source = source
			err.Row = n + 1
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, loadErr(source, 0, "", ErrEmpty)
	}
	return New(source, records)
}

func parseRecord(row []string, idx map[string]int, opts Options) (types.LaunchRecord, *DataLoadError) {
	cell := func(col string) (string, bool) {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	var rec types.LaunchRecord

	site, _ := cell(colSite)
	if site == "" {
		return rec, &DataLoadError{Column: colSite, Err: fmt.Errorf("%w: empty site", ErrInvalidValue)}
	}
	rec.Site = types.SiteID(site)
	if !opts.AllowUnknownSites && !rec.Site.IsKnown() {
		return rec, &DataLoadError{Column: colSite, Err: fmt.Errorf("%w: %q", ErrUnknownSite, site)}
	}

	raw, _ := cell(colPayload)
	kg, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(kg) || math.IsInf(kg, 0) {
		return rec, &DataLoadError{Column: colPayload, Err: fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)}
	}
	if kg < 0 {
		return rec, &DataLoadError{Column: colPayload, Err: fmt.Errorf("%w: %g is negative", ErrInvalidValue, kg)}
	}
	rec.PayloadMassKg = kg

	raw, _ = cell(colClass)
	class, err := strconv.ParseFloat(raw, 64)
	if err != nil || (class != 0 && class != 1) {
		return rec, &DataLoadError{Column: colClass, Err: fmt.Errorf("%w: class %q must be 0 or 1", ErrInvalidValue, raw)}
	}
	rec.Outcome = class == 1

	rec.BoosterCategory, _ = cell(colBoosterCategory)
	rec.BoosterVersion, _ = cell(colBoosterVersion)

	if raw, ok := cell(colFlightNumber); ok && raw != "" {
		fn, err := strconv.ParseFloat(raw, 64)
		if err != nil || fn != math.Trunc(fn) {
			return rec, &DataLoadError{Column: colFlightNumber, Err: fmt.Errorf("%w: flight number %q", ErrInvalidValue, raw)}
		}
		rec.FlightNumber = int(fn)
	}

	return rec, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
