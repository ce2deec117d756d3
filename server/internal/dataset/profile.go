package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/launchdash/launchdash/pkg/types"
)

// wilsonConfidence is the two-sided confidence level of SiteProfile intervals.
const wilsonConfidence = 0.95

// Profile summarizes the dataset for the dashboard header and the inspect command.
type Profile struct {
	Records     int           `json:"records"`
	Successes   int           `json:"successes"`
	SuccessRate float64       `json:"success_rate"`
	Payload     PayloadStats  `json:"payload"`
	Sites       []SiteProfile `json:"sites"`
}

// PayloadStats is the payload-mass distribution in kilograms.
type PayloadStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	StdDev float64 `json:"stddev"`
}

// SiteProfile is the launch count and success rate of one site, with a
// Wilson score interval around the rate.
type SiteProfile struct {
	Site        types.SiteID `json:"site"`
	Launches    int          `json:"launches"`
	Successes   int          `json:"successes"`
	SuccessRate float64      `json:"success_rate"`
	WilsonLow   float64      `json:"wilson_low"`
	WilsonHigh  float64      `json:"wilson_high"`
}

func buildProfile(d *Dataset) (Profile, error) {
	payloads := make(stats.Float64Data, len(d.records))
	var successes int
	for i, r := range d.records {
		payloads[i] = r.PayloadMassKg
		if r.Outcome {
			successes++
		}
	}

	p := Profile{
		Records:     len(d.records),
		Successes:   successes,
		SuccessRate: float64(successes) / float64(len(d.records)),
	}

	var err error
	ps := &p.Payload
	ps.Min, ps.Max = d.minPayload, d.maxPayload
	if ps.Mean, err = stats.Mean(payloads); err != nil {
		return p, fmt.Errorf("payload mean: %w", err)
	}
	if ps.Median, err = stats.Median(payloads); err != nil {
		return p, fmt.Errorf("payload median: %w", err)
	}
	if ps.P25, err = stats.PercentileNearestRank(payloads, 25); err != nil {
		return p, fmt.Errorf("payload p25: %w", err)
	}
	if ps.P75, err = stats.PercentileNearestRank(payloads, 75); err != nil {
		return p, fmt.Errorf("payload p75: %w", err)
	}
	if ps.StdDev, err = stats.StandardDeviation(payloads); err != nil {
		return p, fmt.Errorf("payload stddev: %w", err)
	}

	sites := slices.Clone(d.sites)
	slices.Sort(sites)
	z := distuv.UnitNormal.Quantile(1 - (1-wilsonConfidence)/2)
	for _, s := range sites {
		idx := d.bySite[s]
		sp := SiteProfile{Site: s, Launches: len(idx)}
		for _, i := range idx {
			if d.records[i].Outcome {
				sp.Successes++
			}
		}
		sp.SuccessRate = float64(sp.Successes) / float64(sp.Launches)
		sp.WilsonLow, sp.WilsonHigh = wilson(sp.Successes, sp.Launches, z)
		p.Sites = append(p.Sites, sp)
	}
	return p, nil
}

// wilson returns the Wilson score interval for k successes out of n trials.
func wilson(k, n int, z float64) (lo, hi float64) {
	if n == 0 {
		return 0, 0
	}
	fn := float64(n)
	phat := float64(k) / fn
	z2 := z * z
	denom := 1 + z2/fn
	center := (phat + z2/(2*fn)) / denom
	half := z * math.Sqrt(phat*(1-phat)/fn+z2/(4*fn*fn)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
