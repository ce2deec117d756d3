package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/server/internal/dataset"
)

// inspectReport is the --json output of inspect.
type inspectReport struct {
	Source  string          `json:"source"`
	Bounds  [2]float64      `json:"bounds"`
	Marks   []dataset.Mark  `json:"marks"`
	Profile dataset.Profile `json:"profile"`
}

func newInspectCmd(g *globalFlags) *cobra.Command {
	var markInterval int
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the dataset: payload distribution and per-site success rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := g.engine(cmd.Context())
			if err != nil {
				return err
			}
			ds := eng.Dataset()
			r := inspectReport{
				Source:  ds.Source(),
				Bounds:  [2]float64{ds.MinPayload(), ds.MaxPayload()},
				Marks:   ds.SliderMarks(markInterval),
				Profile: ds.Profile(),
			}
			if g.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			return writeInspect(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().IntVar(&markInterval, "mark-interval", 1000, "Spacing of payload slider marks in kg")
	return cmd
}

func writeInspect(w io.Writer, r inspectReport) error {
	p := r.Profile
	if _, err := fmt.Fprintf(w, "Source:   %s\nRecords:  %d (%d successful, %s)\n\n",
		r.Source, p.Records, p.Successes, pct(p.SuccessRate)); err != nil {
		return err
	}

	ps := p.Payload
	pt := newTable(table.Row{"Min", "P25", "Median", "Mean", "P75", "Max", "Std Dev"}, 1, 2, 3, 4, 5, 6, 7)
	pt.SetTitle("Payload Mass (kg)")
	pt.AppendRow(table.Row{kg(ps.Min), kg(ps.P25), kg(ps.Median), kg(ps.Mean), kg(ps.P75), kg(ps.Max), kg(ps.StdDev)})
	if err := render(w, pt); err != nil {
		return err
	}

	st := newTable(table.Row{"Launch Site", "Launches", "Successes", "Success Rate", "95% CI"}, 2, 3, 4, 5)
	st.SetTitle("Launch Sites")
	for _, s := range p.Sites {
		st.AppendRow(table.Row{s.Site, s.Launches, s.Successes, pct(s.SuccessRate),
			fmt.Sprintf("%s - %s", pct(s.WilsonLow), pct(s.WilsonHigh))})
	}
	if err := render(w, st); err != nil {
		return err
	}

	mt := newTable(table.Row{"Slider Mark (kg)", "Label"}, 1)
	for _, m := range r.Marks {
		mt.AppendRow(table.Row{m.Value, m.Label})
	}
	return render(w, mt)
}
