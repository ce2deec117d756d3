package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchdash/launchdash/server/internal/api"
	"github.com/launchdash/launchdash/server/internal/compute"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/logging"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file; defaults apply when it does not exist")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	dataPath := flag.String("data", "", "dataset file, overrides dataset.path")
	uiDir := flag.String("ui-dir", "", "serve static UI files from this directory, overrides server.ui_dir")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, watchable, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
		cfg.Dataset.DSNEnv = ""
	}
	if *uiDir != "" {
		cfg.Server.UIDir = *uiDir
	}

	logging.Init(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("launchdash-server starting", "config", *configPath)
	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"dataset", cfg.Dataset.Path,
		"cache", cfg.Cache.Enabled,
		"cache_ttl", cfg.Cache.TTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ds, err := loadDataset(ctx, cfg.Dataset)
	if err != nil {
		var le *dataset.DataLoadError
		if errors.As(err, &le) {
			slog.Error("dataset rejected", "source", le.Source, "row", le.Row, "column", le.Column, "err", le.Err)
		} else {
			slog.Error("failed to load dataset", "err", err)
		}
		os.Exit(1)
	}

	reg := metrics.New()
	reg.SetDatasetRecords(ds.Len())

	engineOpts := []compute.Option{compute.WithRecorder(reg)}
	if cfg.Cache.Enabled {
		engineOpts = append(engineOpts, compute.WithCache(cfg.Cache.TTL))
	}
	eng := compute.NewEngine(ds, engineOpts...)
	go eng.Run(ctx)

	settings := config.NewSettings(cfg.Dashboard)

	hub := ws.New(eng, settings, ws.WithPingPeriod(cfg.Hub.PingPeriod), ws.WithMetrics(reg))
	go hub.Run(ctx)

	if watchable {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config, err error) {
				reg.ObserveReload(err)
				if err != nil {
					return
				}
				settings.Set(next.Dashboard)
				hub.BroadcastSettings(next.Dashboard)
				slog.Info("dashboard settings applied",
					"title", next.Dashboard.Title,
					"default_site", next.Dashboard.DefaultSite,
				)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	handler := api.New(api.Options{
		Engine:   eng,
		Settings: settings,
		Metrics:  reg.Handler(),
		Stream:   hub,
		UIDir:    cfg.Server.UIDir,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("launchdash-server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// loadConfig reads path, falling back to defaults when the file does not
// exist. watchable reports whether there is a file to watch.
func loadConfig(path string) (cfg *config.Config, watchable bool, err error) {
	cfg, err = config.Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), false, nil
	}
	return nil, false, err
}

// loadDataset reads the configured source once. A DSN from the environment
// takes precedence over the file path.
func loadDataset(ctx context.Context, dc config.DatasetConfig) (*dataset.Dataset, error) {
	opts := dataset.Options{AllowUnknownSites: dc.AllowUnknownSites, Sheet: dc.Sheet}
	if dsn := dc.DSN(); dsn != "" {
		return dataset.LoadDSN(ctx, dc.Driver, dsn, dc.Table, opts)
	}
	if dc.DSNEnv != "" {
		return nil, fmt.Errorf("dataset: environment variable %s is empty", dc.DSNEnv)
	}
	return dataset.LoadFile(ctx, dc.Path, dc.Table, opts)
}
