package api

import (
	"time"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Records       int     `json:"records"`
	Sites         int     `json:"sites"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// SiteOption is one entry of the site dropdown.
type SiteOption struct {
	Label string              `json:"label"`
	Value types.SiteSelection `json:"value"`
}

// SliderResponse describes the payload range slider.
type SliderResponse struct {
	Min   float64        `json:"min"`
	Max   float64        `json:"max"`
	Step  int            `json:"step"`
	Value [2]float64     `json:"value"`
	Marks []dataset.Mark `json:"marks"`
}

// DatasetResponse is the payload for GET /api/v1/dataset and the first
// WebSocket event. It carries everything needed to build the controls.
type DatasetResponse struct {
	Title       string              `json:"title"`
	Source      string              `json:"source"`
	Records     int                 `json:"records"`
	Bounds      types.PayloadRange  `json:"bounds"`
	Sites       []types.SiteID      `json:"sites"`
	Options     []SiteOption        `json:"options"`
	DefaultSite types.SiteSelection `json:"default_site"`
	Slider      SliderResponse      `json:"slider"`
	Profile     dataset.Profile     `json:"profile"`
}

// BuildDatasetResponse describes ds under the dashboard settings d.
func BuildDatasetResponse(ds *dataset.Dataset, d config.Dashboard) DatasetResponse {
	opts := make([]SiteOption, 0, len(types.KnownSites)+1)
	opts = append(opts, SiteOption{Label: "All Sites", Value: types.All})
	for _, s := range types.KnownSites {
		opts = append(opts, SiteOption{Label: string(s), Value: types.Select(s)})
	}
	for _, s := range ds.Sites() {
		if !s.IsKnown() {
			opts = append(opts, SiteOption{Label: string(s), Value: types.Select(s)})
		}
	}

	b := ds.Bounds()
	return DatasetResponse{
		Title:       d.Title,
		Source:      ds.Source(),
		Records:     ds.Len(),
		Bounds:      b,
		Sites:       ds.Sites(),
		Options:     opts,
		DefaultSite: d.DefaultSite,
		Slider: SliderResponse{
			Min:   b.Low,
			Max:   b.High,
			Step:  d.SliderStep,
			Value: [2]float64{b.Low, b.High},
			Marks: ds.SliderMarks(d.MarkInterval),
		},
		Profile: ds.Profile(),
	}
}

// SettingsResponse is the payload for GET /api/v1/settings.
type SettingsResponse struct {
	config.Dashboard
	GeneratedAt string `json:"generated_at"` // RFC3339
}

func newSettingsResponse(d config.Dashboard, now time.Time) SettingsResponse {
	return SettingsResponse{Dashboard: d, GeneratedAt: now.UTC().Format(time.RFC3339)}
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
