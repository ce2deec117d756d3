package compute

import (
	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// ColorBy names the record attribute scatter points are colored by.
type ColorBy string

const (
	ColorBySite            ColorBy = "site"
	ColorByBoosterCategory ColorBy = "booster_category"
)

// Point is one scatter point.
type Point struct {
	PayloadMassKg  float64      `json:"payload_mass_kg"`
	Outcome        bool         `json:"outcome"`
	ColorKey       string       `json:"color_key"`
	Site           types.SiteID `json:"site"`
	FlightNumber   int          `json:"flight_number,omitempty"`
	BoosterVersion string       `json:"booster_version,omitempty"`
}

// Projection is the payload-vs-outcome scatter view.
type Projection struct {
	Filter  types.FilterState `json:"filter"`
	ColorBy ColorBy           `json:"color_by"`
	Points  []Point           `json:"points"`
}

// Scatter selects the records of ds matching site whose payload lies in the
// inclusive range, in dataset order. Points are colored by site under
// types.All and by booster category otherwise. An empty result is valid.
func Scatter(ds *dataset.Dataset, site types.SiteSelection, payload types.PayloadRange) (Projection, error) {
	f := types.FilterState{Site: site, Payload: payload}
	if err := Validate(f); err != nil {
		return Projection{}, err
	}

	out := Projection{Filter: f, ColorBy: ColorByBoosterCategory, Points: []Point{}}
	if site.IsAll() {
		out.ColorBy = ColorBySite
	}

	for r := range ds.Select(site) {
		if !payload.Contains(r.PayloadMassKg) {
			continue
		}
		key := r.BoosterCategory
		if out.ColorBy == ColorBySite {
			key = string(r.Site)
		}
		out.Points = append(out.Points, Point{
			PayloadMassKg:  r.PayloadMassKg,
			Outcome:        r.Outcome,
			ColorKey:       key,
			Site:           r.Site,
			FlightNumber:   r.FlightNumber,
			BoosterVersion: r.BoosterVersion,
		})
	}
	return out, nil
}

// ColorKeys returns the distinct color keys of p in first-seen order.
func (p Projection) ColorKeys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, pt := range p.Points {
		if _, ok := seen[pt.ColorKey]; !ok {
			seen[pt.ColorKey] = struct{}{}
			keys = append(keys, pt.ColorKey)
		}
	}
	return keys
}
