package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/churnscope/core/model"
	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// Imputation strategies.
const (
	StrategyMean   = "mean"
	StrategyMedian = "median"
)

// SimpleImputer replaces NaN with a per-column statistic learned at fit time.
type SimpleImputer struct {
	model.BaseEstimator

	// Strategy is "mean" (default) or "median".
	Strategy string

	// Statistics holds the fill value of each column.
	Statistics []float64

	// NFeatures is the number of columns seen at fit time.
	NFeatures int

	// FeatureNames optionally names the columns for error messages.
	FeatureNames []string
}

// NewSimpleImputer creates an imputer with the given strategy.
func NewSimpleImputer(strategy string) *SimpleImputer {
	if strategy == "" {
		strategy = StrategyMean
	}
	return &SimpleImputer{
		BaseEstimator: model.BaseEstimator{ModelType: "SimpleImputer"},
		Strategy:      strategy,
	}
}

// Fit learns the fill value of each column from the non-missing entries of X.
// A column with no observed value is an error naming the column.
func (im *SimpleImputer) Fit(X mat.Matrix) (err error) {
	defer scigoErrors.Recover(&err, "SimpleImputer.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return scigoErrors.NewModelError("SimpleImputer.Fit", "empty data", scigoErrors.ErrEmptyData)
	}
	if im.Strategy != StrategyMean && im.Strategy != StrategyMedian {
		return scigoErrors.NewValidationError("strategy", "must be mean or median", im.Strategy)
	}

	im.NFeatures = c
	im.Statistics = make([]float64, c)

	col := make([]float64, r)
	observed := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		observed = observed[:0]
		for _, v := range col {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return scigoErrors.NewValueError("SimpleImputer.Fit",
				fmt.Sprintf("column %s has no observed values", im.featureName(j)))
		}

		switch im.Strategy {
		case StrategyMedian:
			sort.Float64s(observed)
			n := len(observed)
			if n%2 == 1 {
				im.Statistics[j] = observed[n/2]
			} else {
				im.Statistics[j] = (observed[n/2-1] + observed[n/2]) / 2
			}
		default:
			im.Statistics[j] = stat.Mean(observed, nil)
		}
	}

	im.SetFitted()
	return nil
}

// Transform returns a copy of X with NaN replaced by the fitted statistics.
func (im *SimpleImputer) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "SimpleImputer.Transform")
	if !im.IsFitted() {
		return nil, scigoErrors.NewNotFittedError("SimpleImputer", "Transform")
	}

	r, c := X.Dims()
	if c != im.NFeatures {
		return nil, scigoErrors.NewDimensionError("SimpleImputer.Transform", im.NFeatures, c, 1)
	}

	result := mat.DenseCopyOf(X)
	filled := 0
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		if !floats.HasNaN(row) {
			continue
		}
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = im.Statistics[j]
				filled++
			}
		}
	}

	if filled > 0 {
		im.LogDebug("Imputed missing values",
			log.OperationKey, log.OperationTransform,
			"imputer.filled", filled,
		)
	}
	return result, nil
}

// FitTransform fits on X and imputes it.
func (im *SimpleImputer) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "SimpleImputer.FitTransform")
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

func (im *SimpleImputer) featureName(j int) string {
	if j < len(im.FeatureNames) {
		return im.FeatureNames[j]
	}
	return fmt.Sprintf("x%d", j)
}
