package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/churnscope/core/table"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
	"github.com/ezoic/churnscope/preprocessing"
	"github.com/ezoic/churnscope/sklearn/model_selection"
	"github.com/ezoic/churnscope/sklearn/pipeline"
)

// ColumnSummary holds describe-style statistics of one predictor over the
// observed (non-NaN) training values, before imputation.
type ColumnSummary struct {
	Name  string
	Count int
	NaN   int
	Inf   int
	Mean  float64
	Std   float64 // sample standard deviation
	Min   float64
	Max   float64
}

// SplitResult is the output of the Splitter/Normalizer stage.
type SplitResult struct {
	Split model_selection.Split

	// Column listings of the normalized partitions, before and after the
	// identifier drop.
	TrainColumns        []string
	TestColumns         []string
	TrainColumnsDropped []string
	TestColumnsDropped  []string
	IdentifierDropped   bool

	Target   string
	Features []string

	// Summary describes X_train before imputation and scaling.
	Summary []ColumnSummary

	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.VecDense

	// ZeroVariance lists the predictors the scaler only centered.
	ZeroVariance []string
	// Means are the imputation values learned on Train.
	Means []float64
}

// LabelCounts returns the number of negative and positive Train labels.
func (r *SplitResult) LabelCounts() [2]int {
	var c [2]int
	for i := 0; i < r.YTrain.Len(); i++ {
		c[int(r.YTrain.AtVec(i))]++
	}
	return c
}

// Split partitions the cleaned table, normalizes names, separates the
// target, then mean-imputes and standardizes with statistics learned on
// Train only.
func Split(t *table.Table, opts Options) (*SplitResult, error) {
	logger := opts.logger("split")

	idx, err := model_selection.TrainTestSplit(t.NumRows(), opts.TestSize, opts.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "split")
	}
	train, err := t.Take(idx.Train).Rename(table.NormalizeName)
	if err != nil {
		return nil, errors.Wrap(err, "split: normalize train names")
	}
	test, err := t.Take(idx.Test).Rename(table.NormalizeName)
	if err != nil {
		return nil, errors.Wrap(err, "split: normalize test names")
	}

	res := &SplitResult{
		Split:        idx,
		TrainColumns: train.Names(),
		TestColumns:  test.Names(),
		Target:       table.NormalizeName(opts.Schema.TargetIndicator()),
	}

	if id := table.NormalizeName(opts.Schema.ID); id != "" && train.Has(id) {
		train, test = train.Drop(id), test.Drop(id)
		res.IdentifierDropped = true
	} else {
		logger.Debug("Identifier column not present, nothing dropped", log.ColumnKey, id)
	}
	res.TrainColumnsDropped = train.Names()
	res.TestColumnsDropped = test.Names()

	yTrain, err := labels(train, "split", res.Target)
	if err != nil {
		return nil, err
	}
	yTest, err := labels(test, "split", res.Target)
	if err != nil {
		return nil, err
	}
	res.YTrain = mat.NewVecDense(train.NumRows(), yTrain.RawMatrix().Data)
	res.YTest = mat.NewVecDense(test.NumRows(), yTest.RawMatrix().Data)

	res.Features = predictorNames(train, res.Target)
	xTrain, err := train.Matrix(res.Features...)
	if err != nil {
		return nil, errors.Wrap(err, "split: train predictors")
	}
	xTest, err := test.Matrix(res.Features...)
	if err != nil {
		return nil, errors.Wrap(err, "split: test predictors")
	}
	res.Summary = summarize(res.Features, xTrain)

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	imputer.FeatureNames = res.Features
	imputer.SetLogger(logger)
	scaler := preprocessing.NewStandardScalerDefault()
	scaler.FeatureNames = res.Features
	scaler.SetLogger(logger)
	p := pipeline.New(
		pipeline.Step{Name: "impute", Estimator: imputer},
		pipeline.Step{Name: "scale", Estimator: scaler},
	)

	trainT, err := p.FitTransform(xTrain)
	if err != nil {
		return nil, errors.Wrap(err, "split: fit normalizer")
	}
	testT, err := p.Transform(xTest)
	if err != nil {
		return nil, errors.Wrap(err, "split: apply normalizer")
	}
	res.XTrain = mat.DenseCopyOf(trainT)
	res.XTest = mat.DenseCopyOf(testT)
	res.ZeroVariance = scaler.ZeroVarianceFeatures()
	res.Means = append([]float64(nil), imputer.Statistics...)

	for _, m := range []struct {
		name string
		x    *mat.Dense
	}{{"split: X_train", res.XTrain}, {"split: X_test", res.XTest}} {
		r, c := m.x.Dims()
		if err := errors.CheckMatrix(m.name, m.x, r, c, 0); err != nil {
			return nil, err
		}
	}

	logger.Info("Partitions normalized",
		log.SamplesKey, len(idx.Train)+len(idx.Test),
		log.FeaturesKey, len(res.Features),
		"split.train", len(idx.Train),
		"split.test", len(idx.Test),
	)
	return res, nil
}

func summarize(names []string, X *mat.Dense) []ColumnSummary {
	out := make([]ColumnSummary, len(names))
	for j, n := range names {
		col := mat.Col(nil, j, X)
		s := ColumnSummary{Name: n, Mean: math.NaN(), Std: math.NaN(), Min: math.NaN(), Max: math.NaN()}
		finite := make([]float64, 0, len(col))
		for _, v := range col {
			switch {
			case math.IsNaN(v):
				s.NaN++
			case math.IsInf(v, 0):
				s.Inf++
			default:
				finite = append(finite, v)
			}
		}
		s.Count = len(finite)
		if s.Count > 0 {
			s.Mean = stat.Mean(finite, nil)
			s.Min, s.Max = floats.Min(finite), floats.Max(finite)
		}
		if s.Count > 1 {
			s.Std = stat.StdDev(finite, nil)
		}
		out[j] = s
	}
	return out
}
