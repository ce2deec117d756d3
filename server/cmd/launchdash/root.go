package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/compute"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	data         string
	sheet        string
	table        string
	allowUnknown bool
	jsonOutput   bool
	verbose      bool
}

// filterFlags are the dashboard inputs.
type filterFlags struct {
	site string
	low  string
	high string
}

func (f *filterFlags) register(cmd *cobra.Command, withRange bool) {
	cmd.Flags().StringVar(&f.site, "site", string(types.All), "Launch site, or ALL")
	if withRange {
		cmd.Flags().StringVar(&f.low, "low", "", "Lowest payload mass in kg (default: dataset minimum)")
		cmd.Flags().StringVar(&f.high, "high", "", "Highest payload mass in kg (default: dataset maximum)")
	}
}

// parse resolves the flags against the dataset bounds.
func (f *filterFlags) parse(eng *compute.Engine) (types.FilterState, error) {
	return compute.ParseFilter(f.site, f.low, f.high, eng.DefaultFilter())
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "launchdash",
		Short: "Query SpaceX launch records the way the dashboard does",
		Long: `launchdash computes the success-ratio and payload-vs-outcome views
of the launch dashboard from a dataset file, without running the server.

Environment Variables:
  LAUNCHDASH_DATA  Dataset file (default: ` + config.DefaultDatasetPath + `)`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if g.verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
		},
	}
	root.Version = version

	pf := root.PersistentFlags()
	pf.StringVar(&g.data, "data", "", "Dataset file: .csv, .xlsx, .db or .sqlite (overrides LAUNCHDASH_DATA)")
	pf.StringVar(&g.sheet, "sheet", "", "Sheet to read from an xlsx workbook (default: first sheet)")
	pf.StringVar(&g.table, "table", config.DefaultTable, "Table to read from a sqlite database")
	pf.BoolVar(&g.allowUnknown, "allow-unknown-sites", false, "Accept launch sites outside the known four")
	pf.BoolVar(&g.jsonOutput, "json", false, "Output JSON instead of tables")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log loader activity to stderr")

	root.AddCommand(newSummaryCmd(g))
	root.AddCommand(newScatterCmd(g))
	root.AddCommand(newInspectCmd(g))
	root.AddCommand(newChartCmd(g))
	return root
}

// dataPath returns the dataset path from flag, env, or default (in priority order).
func (g *globalFlags) dataPath() string {
	if g.data != "" {
		return g.data
	}
	if env := os.Getenv("LAUNCHDASH_DATA"); env != "" {
		return env
	}
	return config.DefaultDatasetPath
}

// engine loads the dataset and wraps it in an uncached engine.
func (g *globalFlags) engine(ctx context.Context) (*compute.Engine, error) {
	ds, err := dataset.LoadFile(ctx, g.dataPath(), g.table, dataset.Options{
		AllowUnknownSites: g.allowUnknown,
		Sheet:             g.sheet,
	})
	if err != nil {
		return nil, err
	}
	return compute.NewEngine(ds), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
