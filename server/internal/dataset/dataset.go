package dataset

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/launchdash/launchdash/pkg/types"
)

// Dataset is an ordered, non-empty, read-only table of launch records.
// All methods are safe for concurrent use.
type Dataset struct {
	source     string
	records    []types.LaunchRecord
	bySite     map[types.SiteID][]int // record indexes per site, dataset order
	sites      []types.SiteID         // first-seen order
	minPayload float64
	maxPayload float64
	profile    Profile
}

// New validates records and returns a Dataset holding its own copy of them.
// source names the origin for error messages and logs.
func New(source string, records []types.LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, loadErr(source, 0, "", ErrEmpty)
	}

	d := &Dataset{
		source:     source,
		records:    slices.Clone(records),
		bySite:     make(map[types.SiteID][]int),
		minPayload: math.Inf(1),
		maxPayload: math.Inf(-1),
	}

	for i, r := range d.records {
		if r.Site == "" {
			return nil, loadErr(source, i+1, colSite, fmt.Errorf("%w: empty site", ErrInvalidValue))
		}
		if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) || r.PayloadMassKg < 0 {
			return nil, loadErr(source, i+1, colPayload,
				fmt.Errorf("%w: payload %v must be a non-negative number", ErrInvalidValue, r.PayloadMassKg))
		}
		if _, seen := d.bySite[r.Site]; !seen {
			d.sites = append(d.sites, r.Site)
		}
		d.bySite[r.Site] = append(d.bySite[r.Site], i)
		d.minPayload = math.Min(d.minPayload, r.PayloadMassKg)
		d.maxPayload = math.Max(d.maxPayload, r.PayloadMassKg)
	}

	p, err := buildProfile(d)
	if err != nil {
		return nil, loadErr(source, 0, "", err)
	}
	d.profile = p
	return d, nil
}

// Source returns the name the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// MinPayload returns the smallest payload mass in the dataset.
func (d *Dataset) MinPayload() float64 { return d.minPayload }

// MaxPayload returns the largest payload mass in the dataset.
func (d *Dataset) MaxPayload() float64 { return d.maxPayload }

// Bounds returns [MinPayload, MaxPayload].
func (d *Dataset) Bounds() types.PayloadRange {
	return types.PayloadRange{Low: d.minPayload, High: d.maxPayload}
}

// Sites returns the distinct sites in the order they first appear.
func (d *Dataset) Sites() []types.SiteID { return slices.Clone(d.sites) }

// HasSite reports whether any record was launched from site.
func (d *Dataset) HasSite(site types.SiteID) bool {
	_, ok := d.bySite[site]
	return ok
}

// Records returns a copy of every record in dataset order.
func (d *Dataset) Records() []types.LaunchRecord { return slices.Clone(d.records) }

// Select yields the records matching sel in dataset order. A site that is
// not present yields nothing.
func (d *Dataset) Select(sel types.SiteSelection) iter.Seq[types.LaunchRecord] {
	return func(yield func(types.LaunchRecord) bool) {
		if sel.IsAll() {
			for _, r := range d.records {
				if !yield(r) {
					return
				}
			}
			return
		}
		for _, i := range d.bySite[sel.Site()] {
			if !yield(d.records[i]) {
				return
			}
		}
	}
}

// Mark is one labelled tick on the payload range slider.
type Mark struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// SliderMarks returns a mark every interval kilograms from int(min) up to,
// but excluding, int(max), followed by a final mark at int(max) labelled with
// the exact maximum, always carrying a decimal ("9600.0"). A non-positive
// interval yields only the end marks.
func (d *Dataset) SliderMarks(interval int) []Mark {
	lo, hi := int(d.minPayload), int(d.maxPayload)
	var marks []Mark
	if interval > 0 {
		for v := lo; v < hi; v += interval {
			marks = append(marks, Mark{Value: v, Label: strconv.Itoa(v)})
		}
	} else if lo < hi {
		marks = append(marks, Mark{Value: lo, Label: strconv.Itoa(lo)})
	}
	return append(marks, Mark{Value: hi, Label: decimalLabel(d.maxPayload)})
}

func decimalLabel(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Profile returns the payload distribution and per-site outcome profile
// computed at construction.
func (d *Dataset) Profile() Profile {
	p := d.profile
	p.Sites = slices.Clone(p.Sites)
	return p
}
