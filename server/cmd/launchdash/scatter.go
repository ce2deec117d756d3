package main

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/server/internal/compute"
)

func newScatterCmd(g *globalFlags) *cobra.Command {
	f := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "List launches in a payload range with their outcome",
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
			p, err := eng.Scatter(filter)
			if err != nil {
				return err
			}
			if g.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			return writeScatter(cmd.OutOrStdout(), p)
		},
	}
	f.register(cmd, true)
	return cmd
}

func writeScatter(w io.Writer, p compute.Projection) error {
	colorHeader := "Booster Version Category"
	if p.ColorBy == compute.ColorBySite {
		colorHeader = "Launch Site"
	}

	t := newTable(table.Row{"Flight", "Payload Mass (kg)", "Class", "Outcome", colorHeader}, 1, 2, 3)
	t.SetTitle("Payload vs. Outcome " + p.Filter.Payload.String())
	var successes int
	for _, pt := range p.Points {
		outcome, class := compute.LabelFailure, 0
		if pt.Outcome {
			outcome, class = compute.LabelSuccess, 1
			successes++
		}
		flight := ""
		if pt.FlightNumber > 0 {
			flight = strconv.Itoa(pt.FlightNumber)
		}
		t.AppendRow(table.Row{flight, kg(pt.PayloadMassKg), class, outcome, pt.ColorKey})
	}
	t.AppendFooter(table.Row{"", strconv.Itoa(len(p.Points)) + " launches", successes, "", ""})
	return render(w, t)
}
