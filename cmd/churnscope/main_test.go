package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/churnscope/pkg/config"
	"github.com/ezoic/churnscope/report"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCSV(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	var b strings.Builder
	b.WriteString("customerID,gender,tenure,Contract,MonthlyCharges,TotalCharges,Churn\n")
	for i := 0; i < n; i++ {
		tenure := 1 + rng.Intn(72)
		contract := []string{"Month-to-month", "One year", "Two year"}[rng.Intn(3)]
		monthly := 20 + rng.Float64()*90
		churn := "No"
		if tenure < 12 || rng.Float64() < 0.1 {
			churn = "Yes"
		}
		total := fmt.Sprintf("%.2f", float64(tenure)*monthly)
		if i == 5 {
			total = " "
		}
		fmt.Fprintf(&b, "c%04d,%s,%d,%s,%.2f,%s,%s\n",
			i, []string{"Female", "Male"}[rng.Intn(2)], tenure, contract, monthly, total, churn)
	}
	path := filepath.Join(t.TempDir(), "churn.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunWritesFullReport(t *testing.T) {
	csv := writeCSV(t, 200)
	charts := filepath.Join(t.TempDir(), "charts")

	out, logs, err := execute(t, "run", csv, "--seed", "3", "--charts-dir", charts, "--top-n", "4")
	require.NoError(t, err)
	for _, s := range report.Sections {
		assert.Contains(t, out, "== "+s+" ==")
	}
	assert.Contains(t, logs, `"run.id"`)

	for _, name := range []string{report.CorrelationChart, report.ImportanceChart} {
		_, err := os.Stat(filepath.Join(charts, name))
		assert.NoError(t, err, name)
	}
}

func TestRunSeedChangesSplitOnly(t *testing.T) {
	csv := writeCSV(t, 150)
	a, _, err := execute(t, "run", csv, "--seed", "1")
	require.NoError(t, err)
	b, _, err := execute(t, "run", csv, "--seed", "1")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	head := func(s string) string { return s[:strings.Index(s, "== "+report.SectionSplit)] }
	c, _, err := execute(t, "run", csv, "--seed", "2")
	require.NoError(t, err)
	assert.Equal(t, head(a), head(c))
}

func TestInspectStopsAfterImportance(t *testing.T) {
	out, _, err := execute(t, "inspect", writeCSV(t, 120), "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "== "+report.SectionImportance+" ==")
	assert.NotContains(t, out, "== "+report.SectionEvaluation+" ==")
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"run", filepath.Join(t.TempDir(), "absent.csv")}},
		{"test size", []string{"run", writeCSV(t, 50), "--test-size", "1.5"}},
		{"no argument", []string{"run"}},
		{"missing config", []string{"run", writeCSV(t, 50), "--config", filepath.Join(t.TempDir(), "x.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Fatalf("expected %s to fail", tt.name)
			}
		})
	}
}

func TestConfigInitAndUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "churnscope.yaml")
	out, _, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, _, err = execute(t, "config", "init", path)
	require.Error(t, err, "existing file must not be overwritten")
	_, _, err = execute(t, "config", "init", path, "--force")
	require.NoError(t, err)

	c, err := config.Load(path)
	require.NoError(t, err)
	c.Split.TestSize = 0.3
	require.NoError(t, config.Save(c, path))

	shown, _, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, shown, "test_size: 0.3")
}
