package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const namespace = "launchdash"

type queryKey struct {
	query  string
	cache  string // "hit" or "miss"
	result string // "ok" or "error"
}

type latency struct {
	count uint64
	sum   float64
}

// Registry holds every series the server exports. The zero value is not
// usable; call New.
type Registry struct {
	mu      sync.Mutex
	queries map[queryKey]uint64
	latency map[string]*latency
	reloads map[string]uint64
	filters uint64
	clients float64
	records float64
	started time.Time
	now     func() time.Time
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		queries: make(map[queryKey]uint64),
		latency: make(map[string]*latency),
		reloads: make(map[string]uint64),
		started: time.Now(),
		now:     time.Now,
	}
}

// ObserveQuery records one engine query.
func (r *Registry) ObserveQuery(query string, took time.Duration, cached bool, err error) {
	k := queryKey{query: query, cache: "miss", result: "ok"}
	if cached {
		k.cache = "hit"
	}
	if err != nil {
		k.result = "error"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[k]++
	l, ok := r.latency[query]
	if !ok {
		l = &latency{}
		r.latency[query] = l
	}
	l.count++
	l.sum += took.Seconds()
}

// SetClients sets the number of connected WebSocket clients.
func (r *Registry) SetClients(n int) {
	r.mu.Lock()
	r.clients = float64(n)
	r.mu.Unlock()
}

// IncFilters counts one filter-change message received over WebSocket.
func (r *Registry) IncFilters() {
	r.mu.Lock()
	r.filters++
	r.mu.Unlock()
}

// SetDatasetRecords sets the size of the loaded dataset.
func (r *Registry) SetDatasetRecords(n int) {
	r.mu.Lock()
	r.records = float64(n)
	r.mu.Unlock()
}

// ObserveReload records one configuration reload attempt.
func (r *Registry) ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.mu.Lock()
	r.reloads[result]++
	r.mu.Unlock()
}

// Gather snapshots every series as metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	queries := family("queries_total", "Engine queries by view, cache outcome and result.", dto.MetricType_COUNTER)
	qkeys := make([]queryKey, 0, len(r.queries))
	for k := range r.queries {
		qkeys = append(qkeys, k)
	}
	sort.Slice(qkeys, func(i, j int) bool {
		a, b := qkeys[i], qkeys[j]
		if a.query != b.query {
			return a.query < b.query
		}
		if a.cache != b.cache {
			return a.cache < b.cache
		}
		return a.result < b.result
	})
	for _, k := range qkeys {
		queries.Metric = append(queries.Metric, &dto.Metric{
			Label:   labels("query", k.query, "cache", k.cache, "result", k.result),
			Counter: &dto.Counter{Value: proto.Float64(float64(r.queries[k]))},
		})
	}

	durations := family("query_duration_seconds", "Engine query latency.", dto.MetricType_SUMMARY)
	for _, q := range sortedKeys(r.latency) {
		l := r.latency[q]
		durations.Metric = append(durations.Metric, &dto.Metric{
			Label:   labels("query", q),
			Summary: &dto.Summary{SampleCount: proto.Uint64(l.count), SampleSum: proto.Float64(l.sum)},
		})
	}

	reloads := family("config_reloads_total", "Configuration reload attempts by result.", dto.MetricType_COUNTER)
	for _, res := range sortedKeys(r.reloads) {
		reloads.Metric = append(reloads.Metric, &dto.Metric{
			Label:   labels("result", res),
			Counter: &dto.Counter{Value: proto.Float64(float64(r.reloads[res]))},
		})
	}

	out := []*dto.MetricFamily{
		queries,
		durations,
		reloads,
		gauge("ws_clients", "Connected WebSocket clients.", r.clients),
		counter("ws_filter_messages_total", "Filter changes received over WebSocket.", float64(r.filters)),
		gauge("dataset_records", "Launch records in the loaded dataset.", r.records),
		gauge("uptime_seconds", "Seconds since the registry was created.", r.now().Sub(r.started).Seconds()),
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// WriteText writes the text exposition of every non-empty family to w.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Gather() {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves the text exposition.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		if err := r.WriteText(w); err != nil {
			slog.Warn("metrics: write response", "error", err)
		}
	})
}

// --- helpers ---

func family(name, help string, typ dto.MetricType) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(namespace + "_" + name),
		Help: proto.String(help),
		Type: typ.Enum(),
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	mf := family(name, help, dto.MetricType_GAUGE)
	mf.Metric = []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}}
	return mf
}

func counter(name, help string, v float64) *dto.MetricFamily {
	mf := family(name, help, dto.MetricType_COUNTER)
	mf.Metric = []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(v)}}}
	return mf
}

// labels builds label pairs from alternating names and values.
func labels(kv ...string) []*dto.LabelPair {
	out := make([]*dto.LabelPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, &dto.LabelPair{Name: proto.String(kv[i]), Value: proto.String(kv[i+1])})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
