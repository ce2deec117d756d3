package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/server/internal/chart"
	"github.com/launchdash/launchdash/server/internal/compute"
)

func newSummaryCmd(g *globalFlags) *cobra.Command {
	f := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show successful launches per site, or the outcome split of one site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := g.engine(cmd.Context())
			if err != nil {
				return err
			}
			filter, err := f.parse(eng)
			if err != nil {
				return err
			}
			s, err := eng.Summary(filter.Site)
			if err != nil {
				return err
			}
			if g.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return writeSummary(cmd.OutOrStdout(), s)
		},
	}
	f.register(cmd, false)
	return cmd
}

func writeSummary(w io.Writer, s compute.Summary) error {
	label := "Outcome"
	if s.Kind == compute.KindBySite {
		label = "Launch Site"
	}
	total := s.Total()

	t := newTable(table.Row{label, "Count", "Share"}, 2, 3)
	t.SetTitle(chart.SummaryTitle(s))
	for _, b := range s.Buckets {
		share := 0.0
		if total > 0 {
			share = float64(b.Count) / float64(total)
		}
		t.AppendRow(table.Row{b.Label, b.Count, pct(share)})
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	return render(w, t)
}
