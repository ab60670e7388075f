package analysis

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/metrics"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// EvalResult is the output of the Classifier Evaluator stage.
type EvalResult struct {
	Report    *metrics.Report
	Confusion *mat.Dense
	Accuracy  float64
	AUC       float64
	LogLoss   float64

	Predictions *mat.VecDense
	// Probabilities holds P(positive) per test row.
	Probabilities *mat.VecDense

	ClassWeights [2]float64
	Iterations   int
	Converged    bool
}

// Evaluate fits the evaluation model on the standardized Train partition and
// scores its predictions on Test.
func Evaluate(s *SplitResult, opts Options) (*EvalResult, error) {
	logger := opts.logger("evaluate")

	lr := opts.Evaluator.newModel(logger)
	if err := lr.Fit(s.XTrain, s.YTrain); err != nil {
		return nil, errors.Wrap(err, "evaluate: fit")
	}

	pred, err := lr.Predict(s.XTest)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate: predict")
	}
	proba, err := lr.PredictProba(s.XTest)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate: predict proba")
	}

	res := &EvalResult{
		Predictions:   metrics.Column(pred, 0),
		Probabilities: metrics.Column(proba, 1),
		Iterations:    lr.NIter(),
		Converged:     lr.Converged(),
	}
	w := lr.ClassWeights()
	res.ClassWeights = [2]float64{w[0], w[1]}

	if res.Report, err = metrics.ClassificationReport(s.YTest, res.Predictions, nil); err != nil {
		return nil, errors.Wrap(err, "evaluate: report")
	}
	res.Accuracy = res.Report.Accuracy
	if res.Confusion, err = metrics.ConfusionMatrix(s.YTest, res.Predictions); err != nil {
		return nil, errors.Wrap(err, "evaluate: confusion matrix")
	}
	if res.AUC, err = metrics.AUC(s.YTest, res.Probabilities); err != nil {
		return nil, errors.Wrap(err, "evaluate: auc")
	}
	if res.LogLoss, err = metrics.BinaryLogLoss(s.YTest, res.Probabilities); err != nil {
		return nil, errors.Wrap(err, "evaluate: log loss")
	}

	logger.Info("Classifier evaluated",
		log.ModelNameKey, "LogisticRegression",
		log.SamplesKey, s.YTest.Len(),
		log.AccuracyKey, res.Accuracy,
		log.IterationsKey, res.Iterations,
	)
	return res, nil
}
