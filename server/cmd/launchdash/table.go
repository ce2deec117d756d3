package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// newTable returns a light-style table writer with the given header.
// Columns listed in right are right-aligned (1-based).
func newTable(header table.Row, right ...int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	cfgs := make([]table.ColumnConfig, 0, len(right))
	for _, n := range right {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
	return t
}

func render(w io.Writer, t table.Writer) error {
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func kg(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
