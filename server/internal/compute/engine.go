package compute

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/store"
)

// Query names reported to a Recorder.
const (
	QuerySummary = "summary"
	QueryScatter = "scatter"
)

// Recorder receives one observation per engine query.
type Recorder interface {
	ObserveQuery(query string, took time.Duration, cached bool, err error)
}

// Views holds both dashboard views for one filter.
type Views struct {
	Filter  types.FilterState `json:"filter"`
	Summary Summary           `json:"summary"`
	Scatter Projection        `json:"scatter"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache memoizes views per distinct filter for ttl. A non-positive ttl
// disables the cache.
func WithCache(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl <= 0 {
			return
		}
		e.summaries = store.New[types.SiteSelection, Summary]("summary", ttl)
		e.scatters = store.New[types.FilterState, Projection]("scatter", ttl)
	}
}

// WithRecorder reports every query to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.rec = r }
}

// Engine binds the pure view functions to one dataset. Cached results are
// shared between callers and must not be modified.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	ds        *dataset.Dataset
	summaries *store.Store[types.SiteSelection, Summary]
	scatters  *store.Store[types.FilterState, Projection]
	rec       Recorder
	now       func() time.Time
}

// NewEngine returns an Engine over ds.
func NewEngine(ds *dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{ds: ds, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Dataset returns the dataset the engine queries.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// DefaultFilter is ALL sites over the full payload range.
func (e *Engine) DefaultFilter() types.FilterState {
	return types.FilterState{Site: types.All, Payload: e.ds.Bounds()}
}

// Run evicts stale cache entries until ctx is cancelled. It returns
// immediately when caching is disabled.
func (e *Engine) Run(ctx context.Context) {
	if e.summaries == nil {
		return
	}
	go e.summaries.Run(ctx)
	e.scatters.Run(ctx)
}

// Summary returns SuccessSummary(ds, site), from cache when enabled.
func (e *Engine) Summary(site types.SiteSelection) (Summary, error) {
	start := e.now()
	var (
		s   Summary
		hit bool
		err error
	)
	if e.summaries != nil && ValidateSite(site) == nil {
		s, hit, err = e.summaries.GetOrCompute(site, func() (Summary, error) {
			return SuccessSummary(e.ds, site)
		})
	} else {
		s, err = SuccessSummary(e.ds, site)
	}
	e.observe(QuerySummary, start, hit, err)
	return s, err
}

// Scatter returns Scatter(ds, f.Site, f.Payload), from cache when enabled.
func (e *Engine) Scatter(f types.FilterState) (Projection, error) {
	start := e.now()
	var (
		p   Projection
		hit bool
		err error
	)
	if e.scatters != nil && Validate(f) == nil {
		p, hit, err = e.scatters.GetOrCompute(f, func() (Projection, error) {
			return Scatter(e.ds, f.Site, f.Payload)
		})
	} else {
		p, err = Scatter(e.ds, f.Site, f.Payload)
	}
	e.observe(QueryScatter, start, hit, err)
	return p, err
}

// Views computes both views for f concurrently. The two queries share only
// the immutable dataset.
func (e *Engine) Views(ctx context.Context, f types.FilterState) (Views, error) {
	if err := Validate(f); err != nil {
		return Views{}, err
	}

	v := Views{Filter: f}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		v.Summary, err = e.Summary(f.Site)
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		v.Scatter, err = e.Scatter(f)
		return err
	})
	if err := g.Wait(); err != nil {
		return Views{}, err
	}
	return v, nil
}

func (e *Engine) observe(query string, start time.Time, cached bool, err error) {
	if e.rec == nil {
		return
	}
	e.rec.ObserveQuery(query, e.now().Sub(start), cached, err)
}
