package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/server/internal/chart"
	"github.com/launchdash/launchdash/server/internal/compute"
)

func newChartCmd(g *globalFlags) *cobra.Command {
	f := &filterFlags{}
	var (
		out    string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:       "chart summary|scatter",
		Short:     "Render a dashboard view to a PNG or SVG file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"summary", "scatter"},
		RunE: func(cmd *cobra.Command, args []string) error {
			view := args[0]
			if view != "summary" && view != "scatter" {
				return fmt.Errorf("unknown view %q: want summary|scatter", view)
			}
			if out == "" {
				return errors.New("--out is required")
			}
			format, err := chart.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil {
				return err
			}

			eng, err := g.engine(cmd.Context())
			if err != nil {
				return err
			}
			filter, err := f.parse(eng)
			if err != nil {
				return err
			}

			opts := chart.Options{Width: width, Height: height}
			var buf bytes.Buffer
			if view == "summary" {
				var s compute.Summary
				if s, err = eng.Summary(filter.Site); err == nil {
					err = chart.Summary(&buf, s, format, opts)
				}
			} else {
				var p compute.Projection
				if p, err = eng.Scatter(filter); err == nil {
					err = chart.Scatter(&buf, p, format, opts)
				}
			}
			if errors.Is(err, chart.ErrEmpty) {
				fmt.Fprintf(cmd.ErrOrStderr(), "nothing to draw for %s %s; %s not written\n", filter.Site, filter.Payload, out)
				return nil
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; the extension (.png or .svg) selects the format")
	cmd.Flags().IntVar(&width, "width", chart.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", chart.DefaultHeight, "Image height in pixels")
	return cmd
}
