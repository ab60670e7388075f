package analysis

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/core/table"
	"github.com/ezoic/churnscope/metrics"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
	"github.com/ezoic/churnscope/preprocessing"
)

// FeatureWeight is one coefficient of the importance model.
type FeatureWeight struct {
	Feature     string
	Coefficient float64
}

// AnalyzeResult is the output of the Feature Analyzer stage.
type AnalyzeResult struct {
	Correlation *metrics.Correlation
	// Importance is sorted by signed coefficient, descending.
	Importance []FeatureWeight
	Intercept  float64
	Iterations int
	Converged  bool
}

// Top returns the first n importance entries.
func (r *AnalyzeResult) Top(n int) []FeatureWeight {
	if n < 0 || n > len(r.Importance) {
		n = len(r.Importance)
	}
	return r.Importance[:n]
}

// predictorNames returns the float columns of t other than target.
func predictorNames(t *table.Table, target string) []string {
	var names []string
	for _, n := range t.NamesOfKind(table.Numeric, table.Indicator) {
		if n != target {
			names = append(names, n)
		}
	}
	return names
}

// labels returns the named indicator column as an n x 1 matrix.
func labels(t *table.Table, stage, target string) (*mat.Dense, error) {
	col, ok := t.Column(target)
	if !ok {
		return nil, errors.NewColumnError(stage, target, "target column not found")
	}
	if col.Kind() != table.Indicator {
		return nil, errors.NewColumnError(stage, target, "target column is "+col.Kind().String()+", not an indicator")
	}
	return mat.NewDense(col.Len(), 1, col.Floats()), nil
}

// Analyze computes the correlation matrix of the numeric columns and ranks
// predictors by the coefficients of a logistic regression fitted on every
// row. Remaining missing predictor values are filled with column means.
func Analyze(t *table.Table, opts Options) (*AnalyzeResult, error) {
	logger := opts.logger("analyze")
	target := opts.Schema.TargetIndicator()

	corr, err := metrics.CorrelationMatrix(t)
	if err != nil {
		return nil, errors.Wrap(err, "analyze: correlation")
	}

	names := predictorNames(t, target)
	X, err := t.Matrix(names...)
	if err != nil {
		return nil, errors.Wrap(err, "analyze: predictors")
	}
	y, err := labels(t, "analyze", target)
	if err != nil {
		return nil, err
	}

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	imputer.SetLogger(logger)
	Xf, err := imputer.FitTransform(X)
	if err != nil {
		return nil, errors.Wrap(err, "analyze: impute")
	}

	lr := opts.Analyzer.newModel(logger)
	if err := lr.Fit(Xf, y); err != nil {
		return nil, errors.Wrap(err, "analyze: fit importance model")
	}

	coef := lr.Coef()
	imp := make([]FeatureWeight, len(names))
	for j, n := range names {
		imp[j] = FeatureWeight{Feature: n, Coefficient: coef[j]}
	}
	sort.SliceStable(imp, func(a, b int) bool {
		if imp[a].Coefficient != imp[b].Coefficient {
			return imp[a].Coefficient > imp[b].Coefficient
		}
		return imp[a].Feature < imp[b].Feature
	})

	logger.Info("Feature importance ranked",
		log.FeaturesKey, len(names),
		log.IterationsKey, lr.NIter(),
		log.LossKey, lr.Loss(),
	)
	return &AnalyzeResult{
		Correlation: corr,
		Importance:  imp,
		Intercept:   lr.Intercept(),
		Iterations:  lr.NIter(),
		Converged:   lr.Converged(),
	}, nil
}
