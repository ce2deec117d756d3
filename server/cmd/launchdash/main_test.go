package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/launchdash/server/internal/compute"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

const testCSV = `,Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
0,1,CCAFS LC-40,0,0.0,F9 v1.0  B0003,v1.0
1,2,CCAFS LC-40,1,677.0,F9 v1.1  B1010,v1.1
2,3,KSC LC-39A,1,500.0,F9 FT B1031.1,FT
3,4,KSC LC-39A,0,1500.0,F9 FT B1030,FT
4,5,KSC LC-39A,1,2500.0,F9 B5 B1048.3,B5
5,6,VAFB SLC-4E,1,9600.0,F9 B5 B1049.1,B5
`

func TestSummaryAllTable(t *testing.T) {
	out, _, err := run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Successful Launches by Site")
	for _, site := range []string{"CCAFS LC-40", "KSC LC-39A", "VAFB SLC-4E"} {
		assert.Contains(t, out, site)
	}
	assert.NotContains(t, out, "CCAFS SLC-40")
}

func TestSummarySiteJSON(t *testing.T) {
	out, _, err := run(t, "summary", "--site", "KSC LC-39A", "--json")
	require.NoError(t, err)

	var s compute.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, compute.KindOutcomeSplit, s.Kind)
	assert.Equal(t, []compute.Bucket{
		{Label: compute.LabelFailure, Count: 1},
		{Label: compute.LabelSuccess, Count: 2},
	}, s.Buckets)
}

func TestScatterRangeJSON(t *testing.T) {
	out, _, err := run(t, "scatter", "--low", "500", "--high", "2500", "--json")
	require.NoError(t, err)

	var p compute.Projection
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, compute.ColorBySite, p.ColorBy)
	require.Len(t, p.Points, 4)
	got := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		got[i] = pt.PayloadMassKg
	}
	assert.Equal(t, []float64{677, 500, 1500, 2500}, got)
}

func TestScatterTableDefaultsToFullRange(t *testing.T) {
	out, _, err := run(t, "scatter", "--site", "KSC LC-39A")
	require.NoError(t, err)
	assert.Contains(t, out, "BOOSTER VERSION CATEGORY")
	assert.Contains(t, out, "3 LAUNCHES") // footers are upper-cased by the table style
	assert.Contains(t, out, "[0, 9600]")
}

func TestScatterOpenUpperBound(t *testing.T) {
	out, _, err := run(t, "scatter", "--low", "600", "--high", "inf", "--json")
	require.NoError(t, err)

	var p compute.Projection
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Len(t, p.Points, 4)
	assert.True(t, math.IsInf(p.Filter.Payload.High, 1))
}

func TestScatterInvalidBound(t *testing.T) {
	_, _, err := run(t, "scatter", "--low", "heavy")
	var ife *compute.InvalidFilterError
	require.True(t, errors.As(err, &ife), "err = %v", err)
	assert.Equal(t, "low", ife.Field)
}

func TestInspectJSON(t *testing.T) {
	out, _, err := run(t, "inspect", "--json")
	require.NoError(t, err)

	var r inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 6, r.Profile.Records)
	assert.Equal(t, 4, r.Profile.Successes)
	assert.Equal(t, [2]float64{0, 9600}, r.Bounds)
	require.NotEmpty(t, r.Marks)
	assert.Equal(t, dataset.Mark{Value: 9600, Label: "9600.0"}, r.Marks[len(r.Marks)-1])
}

func TestInspectTable(t *testing.T) {
	out, _, err := run(t, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "Payload Mass (kg)")
	assert.Contains(t, out, "Launch Sites")
	assert.Contains(t, out, "KSC LC-39A")
}

func TestChartWritesPNG(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "summary.png")
	out, _, err := run(t, "chart", "summary", "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestChartWritesSVG(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "scatter.svg")
	_, _, err := run(t, "chart", "scatter", "--site", "KSC LC-39A", "-o", dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestChartNothingToDraw(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "empty.png")
	_, errOut, err := run(t, "chart", "summary", "--site", "CCAFS SLC-40", "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, errOut, "nothing to draw")
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestChartRejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]string{
		"unknown view":   {"chart", "pie", "-o", filepath.Join(dir, "x.png")},
		"missing out":    {"chart", "summary"},
		"unknown format": {"chart", "summary", "-o", filepath.Join(dir, "x.gif")},
		"no view":        {"chart", "-o", filepath.Join(dir, "x.png")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestMissingDataFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"summary", "--data", filepath.Join(t.TempDir(), "nope.csv")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestDataFromEnv(t *testing.T) {
	t.Setenv("LAUNCHDASH_DATA", writeCSV(t))

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"summary", "--json"})
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	require.NoError(t, root.Execute())
	assert.True(t, strings.Contains(stdout.String(), `"by_site"`))
}

// --- helpers ---

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launches.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return path
}

// run executes the CLI against a fresh copy of testCSV.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--data", writeCSV(t)}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
