package preprocessing

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/churnscope/core/table"
	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// CoerceNumeric converts the named column to Numeric. Values that do not
// parse after trimming become missing; the number of such values is
// returned and reported as a DataConversionWarning. A column that is already
// numeric is returned unchanged.
func CoerceNumeric(t *table.Table, name string) (*table.Table, int, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, 0, scigoErrors.NewColumnError("clean", name, "column to coerce not found")
	}
	if col.Kind().IsFloat() {
		return t, 0, nil
	}
	if col.Kind() == table.Identifier {
		return nil, 0, scigoErrors.NewColumnError("clean", name, "identifier column cannot be coerced")
	}

	values := make([]float64, col.Len())
	coerced := 0
	for i := range values {
		if col.IsMissing(i) {
			values[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(col.Str(i)), 64)
		if err != nil {
			values[i] = math.NaN()
			coerced++
			continue
		}
		values[i] = f
	}

	if coerced > 0 {
		scigoErrors.Warn(scigoErrors.NewDataConversionWarning("text", "float64",
			strconv.Itoa(coerced)+" unparseable values in "+name+" set to missing"))
	}

	out, err := t.WithColumn(table.NewNumericColumn(name, values))
	if err != nil {
		return nil, 0, err
	}
	return out, coerced, nil
}

// DropMissing removes every row with a missing value in any of the named
// columns and returns the number of rows removed.
func DropMissing(t *table.Table, names ...string) (*table.Table, int, error) {
	cols := make([]*table.Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, 0, scigoErrors.NewColumnError("clean", n, "column not found")
		}
		cols = append(cols, c)
	}

	out := t.Filter(func(i int) bool {
		for _, c := range cols {
			if c.IsMissing(i) {
				return false
			}
		}
		return true
	})
	return out, t.NumRows() - out.NumRows(), nil
}

// ZScoreStep records one feature's pass through the outlier filter.
type ZScoreStep struct {
	Feature string
	Mean    float64
	// Std is the sample standard deviation (ddof=1) at this step.
	Std     float64
	Dropped int
	// Constant is set when Std was zero or undefined and every row was kept.
	Constant bool
}

// ZScoreReport summarises ZScoreFilter.
type ZScoreReport struct {
	Steps   []ZScoreStep
	Skipped []string
}

// Dropped returns the total number of rows removed.
func (r ZScoreReport) Dropped() int {
	n := 0
	for _, s := range r.Steps {
		n += s.Dropped
	}
	return n
}

// ZScoreFilter removes outlier rows feature by feature, in the given order.
//
// For each feature present in t, the mean and sample standard deviation are
// computed over the rows that survived the previous features, and rows with
// |x - mean| / std >= threshold are removed. Rows missing the feature are
// removed too. Each feature is filtered exactly once.
//
// A feature absent from t is skipped and recorded; it is never an error. A
// feature with zero or undefined deviation keeps every row. A feature that
// is present but not numeric, or holds an infinite value, is an error.
func ZScoreFilter(t *table.Table, features []string, threshold float64) (*table.Table, ZScoreReport, error) {
	logger := log.GetLoggerWithName("preprocessing.zscore")
	var report ZScoreReport

	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if seen[f] {
			continue
		}
		seen[f] = true

		col, ok := t.Column(f)
		if !ok {
			report.Skipped = append(report.Skipped, f)
			logger.Warn("Outlier feature not in table, skipped", log.ColumnKey, f)
			continue
		}
		if !col.Kind().IsFloat() {
			return nil, report, scigoErrors.NewColumnError("clean", f,
				"outlier feature is "+col.Kind().String()+", not numeric")
		}

		observed := make([]float64, 0, col.Len())
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				continue
			}
			v := col.Float(i)
			if math.IsInf(v, 0) {
				return nil, report, scigoErrors.NewColumnError("clean", f, "non-finite values")
			}
			observed = append(observed, v)
		}
		mean, std := stat.MeanStdDev(observed, nil)
		step := ZScoreStep{Feature: f, Mean: mean, Std: std}

		if !(std > 0) {
			step.Constant = true
			report.Steps = append(report.Steps, step)
			logger.Warn("Outlier feature has zero deviation, all rows kept", log.ColumnKey, f)
			continue
		}

		before := t.NumRows()
		t = t.Filter(func(i int) bool {
			v := col.Float(i)
			if math.IsNaN(v) {
				return false
			}
			return math.Abs((v-mean)/std) < threshold
		})
		step.Dropped = before - t.NumRows()
		report.Steps = append(report.Steps, step)

		logger.Debug("Outlier filter applied",
			log.ColumnKey, f,
			log.DroppedKey, step.Dropped,
			log.SamplesKey, t.NumRows(),
		)
	}

	return t, report, nil
}
