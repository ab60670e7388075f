package report

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/churnscope/analysis"
)

func syntheticCSV(n int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.WriteString("customerID,gender,tenure,Contract,MonthlyCharges,TotalCharges,Churn\n")
	contracts := []string{"Month-to-month", "One year", "Two year"}
	for i := 0; i < n; i++ {
		tenure := 1 + rng.Intn(72)
		contract := contracts[rng.Intn(3)]
		monthly := 20 + rng.Float64()*90
		churn := "No"
		if contract == "Month-to-month" && rng.Float64() < 0.5 || rng.Float64() < 0.1 {
			churn = "Yes"
		}
		gender := []string{"Female", "Male"}[rng.Intn(2)]
		total := fmt.Sprintf("%.2f", float64(tenure)*monthly)
		if i == 3 {
			total = " "
		}
		fmt.Fprintf(&b, "c%04d,%s,%d,%s,%.2f,%s,%s\n", i, gender, tenure, contract, monthly, total, churn)
	}
	return b.String()
}

func run(t *testing.T, csv string) *analysis.Result {
	t.Helper()
	res, err := analysis.Run(strings.NewReader(csv), analysis.DefaultOptions())
	require.NoError(t, err)
	return res
}

func TestWriteHasEverySectionInOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, run(t, syntheticCSV(300, 1))))
	out := buf.String()

	last := -1
	for _, s := range Sections {
		idx := strings.Index(out, "== "+s+" ==")
		if idx < 0 {
			t.Fatalf("section %q missing from report", s)
		}
		if idx < last {
			t.Fatalf("section %q out of order", s)
		}
		last = idx
	}
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "Accuracy Score:")
	assert.Contains(t, out, "Columns in Training Data after drop:")
	assert.Contains(t, out, "(none)")
}

func TestWriteIsByteIdentical(t *testing.T) {
	csv := syntheticCSV(250, 7)
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, run(t, csv)))
	require.NoError(t, Write(&b, run(t, csv)))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteInspectOmitsLaterSections(t *testing.T) {
	res, err := analysis.Inspect(strings.NewReader(syntheticCSV(120, 2)), analysis.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	out := buf.String()
	for _, s := range Sections[:6] {
		assert.Contains(t, out, "== "+s+" ==")
	}
	for _, s := range Sections[6:] {
		assert.NotContains(t, out, "== "+s+" ==")
	}
}

func TestWriteReportsSkippedFeature(t *testing.T) {
	opts := analysis.DefaultOptions()
	opts.Schema.OutlierFeatures = []string{"Tenure", "MonthlyCharges"}
	res, err := analysis.Inspect(strings.NewReader(syntheticCSV(120, 4)), opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	assert.Contains(t, buf.String(), "Feature 'Tenure' not found in the dataset.")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesWriterError(t *testing.T) {
	err := Write(failingWriter{}, run(t, syntheticCSV(120, 5)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRenderCharts(t *testing.T) {
	res := run(t, syntheticCSV(200, 3))
	dir := filepath.Join(t.TempDir(), "charts")

	paths, err := RenderCharts(dir, res.Analyze, 5)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, filepath.Join(dir, CorrelationChart), paths[0])
	assert.Equal(t, filepath.Join(dir, ImportanceChart), paths[1])
}

func TestChartBuildersRejectEmptyInput(t *testing.T) {
	_, err := ImportanceBars(nil)
	assert.Error(t, err)
}
