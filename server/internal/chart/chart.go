package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/launchdash/launchdash/server/internal/compute"
)

// ErrEmpty is returned when a view has nothing to draw.
var ErrEmpty = errors.New("chart: nothing to draw")

// Default image size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 480
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", fmt.Errorf("chart: unknown format %q: want png|svg", s)
	}
}

// ContentType returns the MIME type of images in f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) renderer() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Options sizes and titles a chart. Zero values take defaults.
type Options struct {
	Width  int
	Height int
	Title  string
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// SummaryTitle is the default title of the success-ratio chart.
func SummaryTitle(s compute.Summary) string {
	if s.Kind == compute.KindBySite {
		return "Successful Launches by Site"
	}
	return fmt.Sprintf("Success Ratio at %s", s.Site)
}

// ScatterTitle is the default title of the scatter chart.
func ScatterTitle(p compute.Projection) string {
	if p.Filter.Site.IsAll() {
		return "Payload vs. Outcome for All Sites"
	}
	return fmt.Sprintf("Payload vs. Outcome at %s", p.Filter.Site)
}

// Summary draws s as a pie chart. Buckets with a zero count are left out;
// ErrEmpty is returned when none remain.
func Summary(w io.Writer, s compute.Summary, f Format, opts Options) error {
	values := make([]gochart.Value, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		if b.Count == 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: float64(b.Count),
			Label: fmt.Sprintf("%s (%d)", b.Label, b.Count),
		})
	}
	if len(values) == 0 {
		return ErrEmpty
	}

	title := opts.Title
	if title == "" {
		title = SummaryTitle(s)
	}
	width, height := opts.size()
	pie := gochart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}
	if err := pie.Render(f.renderer(), w); err != nil {
		return fmt.Errorf("chart: render summary: %w", err)
	}
	return nil
}

// Scatter draws p with payload on the x axis and outcome (0 or 1) on the
// y axis, one series per color key. The x axis spans the filter range.
func Scatter(w io.Writer, p compute.Projection, f Format, opts Options) error {
	if len(p.Points) == 0 {
		return ErrEmpty
	}

	keys := p.ColorKeys()
	index := make(map[string]int, len(keys))
	series := make([]gochart.ContinuousSeries, len(keys))
	for i, k := range keys {
		index[k] = i
		series[i] = gochart.ContinuousSeries{
			Name: k,
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    5,
				DotColor:    gochart.GetDefaultColor(i),
			},
		}
	}
	for _, pt := range p.Points {
		s := &series[index[pt.ColorKey]]
		s.XValues = append(s.XValues, pt.PayloadMassKg)
		s.YValues = append(s.YValues, outcomeY(pt.Outcome))
	}

	all := make([]gochart.Series, len(series))
	for i := range series {
		all[i] = series[i]
	}

	lo, hi := xRange(p)
	title := opts.Title
	if title == "" {
		title = ScatterTitle(p)
	}
	width, height := opts.size()
	graph := gochart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  "Payload Mass (kg)",
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: gochart.YAxis{
			Name:  "class",
			Range: &gochart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []gochart.Tick{
				{Value: 0, Label: compute.LabelFailure},
				{Value: 1, Label: compute.LabelSuccess},
			},
		},
		Series: all,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(f.renderer(), w); err != nil {
		return fmt.Errorf("chart: render scatter: %w", err)
	}
	return nil
}

func outcomeY(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// xRange is the filter range widened to cover every point, padded when it
// collapses to a single value. An open (infinite) side ends at the outermost
// point instead.
func xRange(p compute.Projection) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	if r := p.Filter.Payload; !math.IsInf(r.Low, 0) {
		lo = r.Low
	}
	if r := p.Filter.Payload; !math.IsInf(r.High, 0) {
		hi = r.High
	}
	for _, pt := range p.Points {
		lo = math.Min(lo, pt.PayloadMassKg)
		hi = math.Max(hi, pt.PayloadMassKg)
	}
	if hi-lo < 1 {
		lo, hi = lo-50, hi+50
	}
	return lo, hi
}
