package compute

import (
	"slices"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// Bucket labels of a single-site summary.
const (
	LabelFailure = "Failure"
	LabelSuccess = "Success"
)

// SummaryKind tells which shape a Summary has.
type SummaryKind string

const (
	// KindBySite holds one bucket per site with its success count.
	KindBySite SummaryKind = "by_site"

	// KindOutcomeSplit holds Failure and/or Success counts for one site.
	KindOutcomeSplit SummaryKind = "outcome_split"
)

// Bucket is one labelled count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the success-ratio view.
type Summary struct {
	Site    types.SiteSelection `json:"site"`
	Kind    SummaryKind         `json:"kind"`
	Buckets []Bucket            `json:"buckets"`
}

// Count returns the count for label and whether that bucket is present.
func (s Summary) Count(label string) (int, bool) {
	for _, b := range s.Buckets {
		if b.Label == label {
			return b.Count, true
		}
	}
	return 0, false
}

// Total returns the sum of all bucket counts.
func (s Summary) Total() int {
	var n int
	for _, b := range s.Buckets {
		n += b.Count
	}
	return n
}

// SuccessSummary derives the success-ratio view for site.
//
// For types.All it returns one bucket per site present in ds, ordered by site
// name, holding that site's success count (failures are not reported in this
// shape). For a single site it returns the Failure and Success counts of that
// site, in that order, omitting a bucket whose count is zero. A site absent
// from ds yields an empty summary.
func SuccessSummary(ds *dataset.Dataset, site types.SiteSelection) (Summary, error) {
	if err := ValidateSite(site); err != nil {
		return Summary{}, err
	}

	if site.IsAll() {
		out := Summary{Site: site, Kind: KindBySite}
		counts := make(map[types.SiteID]int)
		for r := range ds.Select(types.All) {
			if _, ok := counts[r.Site]; !ok {
				counts[r.Site] = 0
			}
			if r.Outcome {
				counts[r.Site]++
			}
		}
		sites := make([]types.SiteID, 0, len(counts))
		for s := range counts {
			sites = append(sites, s)
		}
		slices.Sort(sites)
		out.Buckets = make([]Bucket, 0, len(sites))
		for _, s := range sites {
			out.Buckets = append(out.Buckets, Bucket{Label: string(s), Count: counts[s]})
		}
		return out, nil
	}

	var failures, successes int
	for r := range ds.Select(site) {
		if r.Outcome {
			successes++
		} else {
			failures++
		}
	}
	out := Summary{Site: site, Kind: KindOutcomeSplit, Buckets: make([]Bucket, 0, 2)}
	if failures > 0 {
		out.Buckets = append(out.Buckets, Bucket{Label: LabelFailure, Count: failures})
	}
	if successes > 0 {
		out.Buckets = append(out.Buckets, Bucket{Label: LabelSuccess, Count: successes})
	}
	return out, nil
}
