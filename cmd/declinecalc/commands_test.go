package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/declinecurve/errs"
	"github.com/arloliu/declinecurve/internal/hash"
	"github.com/arloliu/declinecurve/series"
)

const wellDoc = "testdata/well.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cumCmd.ResetFlags()
	bindCumFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "disabled"))
	err := rootCmd.Execute()

	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	out, err := execute(t, "predict", "-f", wellDoc, "--from", "40501", "--to", "40503", "--step", "1", "--fill", "-1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "40501\t2010-11-21\t-1", lines[0])
	require.Equal(t, "40502\t2010-11-22\t1105.42", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "40503\t2010-11-23\t110"), lines[2])

	_, err = execute(t, "predict", "-f", wellDoc, "--from", "40503", "--to", "40501")
	require.Error(t, err)
}

func TestEurCommand(t *testing.T) {
	out, err := execute(t, "eur", "-f", wellDoc, "--well-life", "0")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "history=2350 forecast="), out)

	short, err := execute(t, "eur", "-f", wellDoc, "--well-life", "40502")
	require.NoError(t, err)
	require.Equal(t, "history=2350 forecast=1105.42 eur=3455.42\n", short)
}

func TestEurMatchesCumOnMonthlyHistory(t *testing.T) {
	// November 2010 at 10 per day is covered through day 40510
	doc := filepath.Join(t.TempDir(), "monthly.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(`
segments:
  - {name: flat, start_idx: 40511, end_idx: 40600, c: 5}
history:
  frequency: monthly
  index: [40500]
  rate: [10]
`), 0o600))

	out, err := execute(t, "eur", "-f", doc, "--well-life", "40550")
	require.NoError(t, err)
	require.Equal(t, "history=300 forecast=200 eur=500\n", out)

	out, err = execute(t, "cum", "-f", doc, "--at", "40500,40550")
	require.NoError(t, err)
	require.Equal(t, "40500\t200\n40550\t500\n", out)
}

func TestCumCommand(t *testing.T) {
	out, err := execute(t, "cum", "-f", wellDoc, "--at", "40499,40501,40502,42400")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "40499\t0", lines[0])
	require.Equal(t, "40501\t2350", lines[1])
	require.Equal(t, "40502\t3455.42", lines[2])
}

func TestRangeCommand(t *testing.T) {
	out, err := execute(t, "range", "-f", wellDoc, "--segment", "0", "--field", "b")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "arps b ["), out)

	_, err = execute(t, "range", "-f", wellDoc, "--segment", "1", "--field", "b")
	require.ErrorIs(t, err, errs.ErrInvalidField)

	_, err = execute(t, "range", "-f", wellDoc, "--segment", "5", "--field", "q_end")
	require.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "well.dcs")
	out, err := execute(t, "export", "-f", wellDoc, "--well", "WELL-7", "--compression", "s2", "--out", path,
		"--from", "0", "--to", "0")
	require.NoError(t, err)
	require.Contains(t, out, "wrote 1999 days")

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	s, err := series.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, hash.WellID("WELL-7"), s.WellID)
	require.Len(t, s.Index, 1999)
	require.Equal(t, 40502.0, s.Index[0])
	require.Equal(t, 100.0, s.Rate[len(s.Rate)-1])

	_, err = execute(t, "export", "-f", wellDoc, "--well", "WELL-7", "--compression", "gzip", "--out", path)
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestDocumentErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	_, err := execute(t, "eur", "-f", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	_, err = execute(t, "eur", "-f", write("kind.yaml", "segments:\n  - name: cubic\n"))
	require.ErrorIs(t, err, errs.ErrInvalidKind)

	_, err = execute(t, "eur", "-f", write("overlap.yaml", `
segments:
  - {name: flat, start_idx: 0, end_idx: 100, c: 5}
  - {name: flat, start_idx: 50, end_idx: 150, c: 5}
`))
	require.ErrorIs(t, err, errs.ErrOverlappingSegments)

	_, err = execute(t, "eur", "-f", write("domain.yaml", "domain:\n  min_b: 20\n"))
	require.Error(t, err)

	_, err = execute(t, "eur", "-f", write("history.yaml", "history:\n  frequency: weekly\n"))
	require.ErrorIs(t, err, errs.ErrInvalidFrequency)
}

func TestSteps(t *testing.T) {
	got, err := steps(0, 10, 5)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 5, 10}, got)

	_, err = steps(0, 10, 0)
	require.Error(t, err)
}
