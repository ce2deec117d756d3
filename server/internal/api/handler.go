package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/chart"
	"github.com/launchdash/launchdash/server/internal/compute"
	"github.com/launchdash/launchdash/server/internal/config"
)

// Options wires the handler to the rest of the server. Engine and Settings
// are required.
type Options struct {
	Engine   *compute.Engine
	Settings *config.Settings

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	// Stream, when set, is served at /ws/stream.
	Stream http.Handler

	// UIDir, when set, is served at / with index.html as the fallback.
	UIDir string
}

// Handler serves the dashboard HTTP surface. Every /api/v1 endpoint
// recomputes from the engine on each request.
type Handler struct {
	eng      *compute.Engine
	settings *config.Settings
	started  time.Time
	now      func() time.Time
	router   *chi.Mux
}

// New creates a Handler and registers all routes.
func New(opts Options) *Handler {
	h := &Handler{
		eng:      opts.Engine,
		settings: opts.Settings,
		started:  time.Now(),
		now:      time.Now,
		router:   chi.NewRouter(),
	}

	r := h.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/dataset", h.dataset)
		r.Get("/summary", h.summary)
		r.Get("/scatter", h.scatter)
		r.Get("/views", h.views)
		r.Get("/charts/{file}", h.chart)
		r.Get("/settings", h.getSettings)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Stream != nil {
		r.Method(http.MethodGet, "/ws/stream", opts.Stream)
	}
	if opts.UIDir != "" {
		r.Get("/*", spa(opts.UIDir))
		slog.Info("api: serving UI static files", "dir", opts.UIDir)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	ds := h.eng.Dataset()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Records:       ds.Len(),
		Sites:         len(ds.Sites()),
		UptimeSeconds: h.now().Sub(h.started).Seconds(),
	})
}

// dataset returns GET /api/v1/dataset: bounds, sites and slider setup.
func (h *Handler) dataset(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, BuildDatasetResponse(h.eng.Dataset(), h.settings.Get()))
}

// summary returns GET /api/v1/summary?site=.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		computeErr(w, err)
		return
	}
	s, err := h.eng.Summary(f.Site)
	if err != nil {
		computeErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, s)
}

// scatter returns GET /api/v1/scatter?site=&low=&high=.
func (h *Handler) scatter(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		computeErr(w, err)
		return
	}
	p, err := h.eng.Scatter(f)
	if err != nil {
		computeErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, p)
}

// views returns GET /api/v1/views: both views for one filter.
func (h *Handler) views(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		computeErr(w, err)
		return
	}
	v, err := h.eng.Views(r.Context(), f)
	if err != nil {
		computeErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, v)
}

// chart returns GET /api/v1/charts/{summary|scatter}.{png|svg}.
// A view with nothing to draw yields 204.
func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	view, ext, ok := strings.Cut(chi.URLParam(r, "file"), ".")
	if !ok || (view != "summary" && view != "scatter") {
		jsonErr(w, http.StatusNotFound, "unknown chart")
		return
	}
	format, err := chart.ParseFormat(ext)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := h.filter(r)
	if err != nil {
		computeErr(w, err)
		return
	}

	var buf bytes.Buffer
	if view == "summary" {
		var s compute.Summary
		if s, err = h.eng.Summary(f.Site); err == nil {
			err = chart.Summary(&buf, s, format, chart.Options{})
		}
	} else {
		var p compute.Projection
		if p, err = h.eng.Scatter(f); err == nil {
			err = chart.Scatter(&buf, p, format, chart.Options{})
		}
	}
	switch {
	case errors.Is(err, chart.ErrEmpty):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		computeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// getSettings returns GET /api/v1/settings: the live dashboard settings.
func (h *Handler) getSettings(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, newSettingsResponse(h.settings.Get(), h.now()))
}

// --- helpers ----------------------------------------------------------------

// filter parses site, low and high from the query string. Missing values
// default to the configured site and the full dataset range.
func (h *Handler) filter(r *http.Request) (types.FilterState, error) {
	q := r.URL.Query()
	def := types.FilterState{
		Site:    h.settings.Get().DefaultSite,
		Payload: h.eng.Dataset().Bounds(),
	}
	return compute.ParseFilter(q.Get("site"), q.Get("low"), q.Get("high"), def)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// computeErr maps an engine error to its status: 400 for an invalid
// filter, 500 otherwise.
func computeErr(w http.ResponseWriter, err error) {
	var ife *compute.InvalidFilterError
	if errors.As(err, &ife) {
		jsonErr(w, http.StatusBadRequest, ife.Error())
		return
	}
	slog.Error("api: compute failed", "err", err)
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

// spa serves files from dir, falling back to index.html for unknown paths.
func spa(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}
}
