package compute

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/launchdash/launchdash/pkg/types"
)

// InvalidFilterError reports a filter that cannot be evaluated.
type InvalidFilterError struct {
	Field  string // "site", "low" or "high"
	Value  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("compute: invalid filter: %s %q: %s", e.Field, e.Value, e.Reason)
}

// ValidateSite rejects an empty site selection.
func ValidateSite(site types.SiteSelection) error {
	if strings.TrimSpace(string(site)) == "" {
		return &InvalidFilterError{Field: "site", Value: string(site), Reason: "empty selection"}
	}
	return nil
}

// ValidatePayload rejects NaN bounds. Infinite bounds leave that side of the
// range open; inverted ranges are valid and simply match nothing.
func ValidatePayload(r types.PayloadRange) error {
	bounds := []struct {
		field string
		v     float64
	}{{"low", r.Low}, {"high", r.High}}
	for _, b := range bounds {
		if math.IsNaN(b.v) {
			return &InvalidFilterError{Field: b.field, Value: "NaN", Reason: "not a number"}
		}
	}
	return nil
}

// Validate checks both parts of f.
func Validate(f types.FilterState) error {
	if err := ValidateSite(f.Site); err != nil {
		return err
	}
	return ValidatePayload(f.Payload)
}

// ParseSite resolves a raw site value. Surrounding whitespace is ignored, a
// blank value falls back to def and "all" in any case selects every site.
func ParseSite(raw string, def types.SiteSelection) types.SiteSelection {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return def
	case strings.EqualFold(s, string(types.All)):
		return types.All
	}
	return types.SiteSelection(s)
}

// ParseFilter builds a FilterState from raw request values. Empty values
// fall back to def. Bounds are parsed as float64 ("inf" opens a side of the
// range) and never formatted into a query.
func ParseFilter(site, low, high string, def types.FilterState) (types.FilterState, error) {
	f := def
	f.Site = ParseSite(site, def.Site)

	var err error
	if f.Payload.Low, err = parseBound("low", low, def.Payload.Low); err != nil {
		return def, err
	}
	if f.Payload.High, err = parseBound("high", high, def.Payload.High); err != nil {
		return def, err
	}

	if err := Validate(f); err != nil {
		return def, err
	}
	return f, nil
}

func parseBound(field, raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &InvalidFilterError{Field: field, Value: raw, Reason: "not a number"}
	}
	return v, nil
}
