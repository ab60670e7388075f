package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/churnscope/core/table"
	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
)

// Correlation is a labelled Pearson correlation matrix.
type Correlation struct {
	Names  []string
	Matrix *mat.SymDense
}

// At returns the correlation between columns i and j.
func (c *Correlation) At(i, j int) float64 {
	return c.Matrix.At(i, j)
}

// CorrelationMatrix computes Pearson correlations between the Numeric
// columns of t. Indicator, categorical and identifier columns are excluded.
// Missing values are handled pairwise. A column with zero variance produces
// NaN entries.
func CorrelationMatrix(t *table.Table) (*Correlation, error) {
	names := t.NamesOfKind(table.Numeric)
	if len(names) == 0 || t.NumRows() == 0 {
		return nil, scigoErrors.Wrap(scigoErrors.ErrEmptyData, "correlation matrix needs at least one numeric column")
	}
	X, err := t.Matrix(names...)
	if err != nil {
		return nil, err
	}

	k := len(names)
	corr := mat.NewSymDense(k, nil)
	if !floats.HasNaN(X.RawMatrix().Data) {
		stat.CorrelationMatrix(corr, X, nil)
		// gonum pins the diagonal to 1; a constant column has no correlation
		for j := 0; j < k; j++ {
			if stat.Variance(mat.Col(nil, j, X), nil) == 0 {
				corr.SetSym(j, j, math.NaN())
			}
		}
		return &Correlation{Names: names, Matrix: corr}, nil
	}

	cols := make([][]float64, k)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			corr.SetSym(i, j, pairwise(cols[i], cols[j]))
		}
	}
	return &Correlation{Names: names, Matrix: corr}, nil
}

// pairwise is the Pearson correlation over rows where both x and y are present.
func pairwise(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
